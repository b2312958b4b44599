// Package actions is the system of record for proposed actions and their
// human approval decisions.
package actions

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/apperr"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
)

// Registry stores action records partitioned by session.
type Registry interface {
	Propose(sessionID string, titles []models.ProposedTitle) []models.ActionRecord
	Get(sessionID, proposalID string) (models.ActionRecord, error)
	ListBySession(sessionID string) []models.ActionRecord
	SetStatus(sessionID, proposalID string, status models.ActionStatus) (models.ActionRecord, error)
	Sessions() int
}

// partition holds one session's records in insertion order.
type partition struct {
	mu      sync.RWMutex
	order   []string
	records map[string]*models.ActionRecord
}

// MemoryRegistry is an in-process Registry. The registry lock only guards the
// session map; record reads and writes lock the owning partition, so distinct
// sessions never contend. Partitions live for the life of the process.
type MemoryRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*partition
	now      func() time.Time
	newID    func() string
}

var _ Registry = (*MemoryRegistry)(nil)

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		sessions: make(map[string]*partition),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// lookup returns the partition for sessionID, or nil.
func (r *MemoryRegistry) lookup(sessionID string) *partition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[sessionID]
}

// ensure returns the partition for sessionID, creating it on first use.
func (r *MemoryRegistry) ensure(sessionID string) *partition {
	if p := r.lookup(sessionID); p != nil {
		return p
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if p, ok := r.sessions[sessionID]; ok {
		return p
	}
	p := &partition{records: make(map[string]*models.ActionRecord)}
	r.sessions[sessionID] = p
	return p
}

// Propose creates one proposed record per title and returns copies in input order.
func (r *MemoryRegistry) Propose(sessionID string, titles []models.ProposedTitle) []models.ActionRecord {
	out := make([]models.ActionRecord, 0, len(titles))
	if len(titles) == 0 {
		return out
	}

	p := r.ensure(sessionID)
	now := r.now().UTC()

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, t := range titles {
		rec := &models.ActionRecord{
			ID:          r.newID(),
			SessionID:   sessionID,
			Title:       t.Title,
			Description: t.Description,
			Status:      models.ActionStatusProposed,
			CreatedAt:   now,
		}
		p.records[rec.ID] = rec
		p.order = append(p.order, rec.ID)
		out = append(out, *rec)
	}
	return out
}

// Get returns a copy of one record.
func (r *MemoryRegistry) Get(sessionID, proposalID string) (models.ActionRecord, error) {
	p := r.lookup(sessionID)
	if p == nil {
		return models.ActionRecord{}, fmt.Errorf("session %q: %w", sessionID, apperr.ErrNotFound)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	rec, ok := p.records[proposalID]
	if !ok {
		return models.ActionRecord{}, fmt.Errorf("proposal %q: %w", proposalID, apperr.ErrNotFound)
	}
	return *rec, nil
}

// ListBySession returns copies of all records for a session in insertion
// order. An unknown session yields an empty slice.
func (r *MemoryRegistry) ListBySession(sessionID string) []models.ActionRecord {
	p := r.lookup(sessionID)
	if p == nil {
		return []models.ActionRecord{}
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]models.ActionRecord, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, *p.records[id])
	}
	return out
}

// SetStatus applies a decision to a proposed record. Terminal records are
// left untouched and yield apperr.ErrInvalidTransition.
func (r *MemoryRegistry) SetStatus(sessionID, proposalID string, status models.ActionStatus) (models.ActionRecord, error) {
	p := r.lookup(sessionID)
	if p == nil {
		return models.ActionRecord{}, fmt.Errorf("session %q: %w", sessionID, apperr.ErrNotFound)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	rec, ok := p.records[proposalID]
	if !ok {
		return models.ActionRecord{}, fmt.Errorf("proposal %q: %w", proposalID, apperr.ErrNotFound)
	}
	if err := Transition(rec.Status, status); err != nil {
		return *rec, err
	}

	decided := r.now().UTC()
	rec.Status = status
	rec.DecidedAt = &decided
	return *rec, nil
}

// Sessions returns the number of sessions with at least one proposal.
func (r *MemoryRegistry) Sessions() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
