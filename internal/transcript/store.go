// Package transcript persists chat turns to SQLite.
package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/store"
)

// Store handles chat session and turn persistence.
type Store struct {
	db *store.DB
}

func NewStore(db *store.DB) *Store {
	return &Store{db: db}
}

// Submit records turns for a session. It satisfies ingest.Sink.
func (s *Store) Submit(ctx context.Context, sessionID string, turns []models.Turn) error {
	_, err := s.AppendTurns(ctx, sessionID, turns)
	return err
}

// AppendTurns stores turns after the session's current last sequence number,
// creating the session on first use.
func (s *Store) AppendTurns(ctx context.Context, sessionID string, turns []models.Turn) ([]*models.StoredTurn, error) {
	if len(turns) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO chat_sessions (id, started_at, updated_at, turn_count)
		VALUES (?, ?, ?, 0)
		ON CONFLICT(id) DO NOTHING
	`, sessionID, now, now)
	if err != nil {
		return nil, fmt.Errorf("ensure session: %w", err)
	}

	var seq int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(sequence), 0) FROM chat_turns WHERE session_id = ?`, sessionID).Scan(&seq)
	if err != nil {
		return nil, fmt.Errorf("get sequence: %w", err)
	}

	stored := make([]*models.StoredTurn, 0, len(turns))
	for _, t := range turns {
		seq++
		created := t.Timestamp.Unix()
		if t.Timestamp.IsZero() {
			created = now
		}
		st := &models.StoredTurn{
			ID:        uuid.New().String(),
			SessionID: sessionID,
			Role:      t.Role,
			Text:      t.Text,
			CreatedAt: created,
			Sequence:  seq,
			RequestID: t.RequestID,
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO chat_turns (id, session_id, role, text, created_at, sequence, request_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, st.ID, st.SessionID, st.Role, st.Text, st.CreatedAt, st.Sequence, nullString(st.RequestID))
		if err != nil {
			return nil, fmt.Errorf("insert turn: %w", err)
		}
		stored = append(stored, st)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE chat_sessions SET turn_count = turn_count + ?, updated_at = ? WHERE id = ?
	`, len(turns), now, sessionID)
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit turns: %w", err)
	}
	return stored, nil
}

// GetSession fetches a session by ID. Returns nil when it doesn't exist.
func (s *Store) GetSession(ctx context.Context, id string) (*models.ChatSession, error) {
	var sess models.ChatSession
	err := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, updated_at, turn_count
		FROM chat_sessions WHERE id = ?
	`, id).Scan(&sess.ID, &sess.StartedAt, &sess.UpdatedAt, &sess.TurnCount)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

// ListSessions returns recently active sessions, newest first.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]*models.ChatSession, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, updated_at, turn_count
		FROM chat_sessions
		ORDER BY updated_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.ChatSession
	for rows.Next() {
		var sess models.ChatSession
		if err := rows.Scan(&sess.ID, &sess.StartedAt, &sess.UpdatedAt, &sess.TurnCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, &sess)
	}
	return sessions, rows.Err()
}

// ListTurns returns a session's turns ordered by sequence.
func (s *Store) ListTurns(ctx context.Context, sessionID string, limit int) ([]*models.StoredTurn, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, role, text, created_at, sequence, request_id
		FROM chat_turns
		WHERE session_id = ?
		ORDER BY sequence ASC
		LIMIT ?
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	turns := []*models.StoredTurn{}
	for rows.Next() {
		var t models.StoredTurn
		var requestID sql.NullString
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Role, &t.Text, &t.CreatedAt, &t.Sequence, &requestID); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		if requestID.Valid {
			t.RequestID = requestID.String
		}
		turns = append(turns, &t)
	}
	return turns, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
