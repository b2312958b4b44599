package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
)

// Publisher is the subset of *nats.Conn used by NATSSink.
type Publisher interface {
	Publish(subj string, data []byte) error
}

// TurnBatch is the message published per chat exchange.
type TurnBatch struct {
	SessionID string        `json:"sessionId"`
	Turns     []models.Turn `json:"turns"`
}

// NATSSink publishes turn batches as JSON to a subject.
type NATSSink struct {
	pub     Publisher
	subject string
}

func NewNATSSink(pub Publisher, subject string) *NATSSink {
	return &NATSSink{pub: pub, subject: subject}
}

// ConnectNATS dials the server at url with reconnects enabled.
func ConnectNATS(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("agentd"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

// NATS Publish is fire-and-forget and takes no context; ctx is only checked
// before sending.
func (s *NATSSink) Submit(ctx context.Context, sessionID string, turns []models.Turn) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}

	data, err := json.Marshal(TurnBatch{SessionID: sessionID, Turns: turns})
	if err != nil {
		return fmt.Errorf("marshal turn batch: %w", err)
	}
	if err := s.pub.Publish(s.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", s.subject, err)
	}
	return nil
}
