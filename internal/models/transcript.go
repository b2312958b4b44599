package models

import "time"

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message of a chat transcript handed to the ingestion sink.
type Turn struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"ts"`
	RequestID string    `json:"requestId,omitempty"`
}

// ChatSession is the transcript-side view of a conversation thread.
type ChatSession struct {
	ID        string `json:"id"`
	StartedAt int64  `json:"startedAt"`
	UpdatedAt int64  `json:"updatedAt"`
	TurnCount int    `json:"turnCount"`
}

// StoredTurn is a Turn as persisted by the transcript store.
type StoredTurn struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
	Role      string `json:"role"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
	Sequence  int    `json:"sequence"`
	RequestID string `json:"requestId,omitempty"`
}

// EmbeddingCacheEntry stores a cached embedding keyed by content hash.
type EmbeddingCacheEntry struct {
	ContentHash string `json:"contentHash"`
	Embedding   []byte `json:"embedding"`
	Dimension   int    `json:"dimension"`
	Model       string `json:"model"`
	UpdatedAt   int64  `json:"updatedAt"`
}
