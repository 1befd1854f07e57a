package booking

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skylarktravel/skylark/internal/model"
)

// DraftStore persists booking drafts between the booking form and the
// checkout page, scoped to a browser session.
type DraftStore struct {
	db  *sql.DB
	ttl time.Duration
}

func NewDraftStore(db *sql.DB, ttl time.Duration) *DraftStore {
	return &DraftStore{db: db, ttl: ttl}
}

// Save stores a draft for the session, replacing any pending one. A session
// has at most one draft: starting a new booking abandons the old checkout.
func (s *DraftStore) Save(sessionID string, draft *model.BookingDraft) (*model.BookingDraft, error) {
	if _, err := s.db.Exec(`DELETE FROM booking_drafts WHERE session_id = ?`, sessionID); err != nil {
		return nil, fmt.Errorf("discard previous draft: %w", err)
	}

	draft.ID = uuid.NewString()
	draft.SessionID = sessionID
	draft.CreatedAt = time.Now().UTC()
	draft.ExpiresAt = draft.CreatedAt.Add(s.ttl)

	ref, err := NewReference(draft.CreatedAt)
	if err != nil {
		return nil, err
	}
	draft.Reference = ref

	payload, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("marshal draft: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO booking_drafts (id, session_id, payload, expires_at) VALUES (?, ?, ?, ?)`,
		draft.ID, sessionID, string(payload), draft.ExpiresAt.Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return nil, fmt.Errorf("insert draft: %w", err)
	}
	return draft, nil
}

// Pending returns the session's current draft, or nil if none exists or it
// has expired.
func (s *DraftStore) Pending(sessionID string) (*model.BookingDraft, error) {
	var payload string
	err := s.db.QueryRow(
		`SELECT payload FROM booking_drafts WHERE session_id = ? AND expires_at > datetime('now') ORDER BY created_at DESC LIMIT 1`,
		sessionID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending draft: %w", err)
	}
	var draft model.BookingDraft
	if err := json.Unmarshal([]byte(payload), &draft); err != nil {
		return nil, fmt.Errorf("unmarshal draft: %w", err)
	}
	draft.SessionID = sessionID
	return &draft, nil
}

// Delete removes a draft, typically after the booking is submitted.
func (s *DraftStore) Delete(id string) error {
	if _, err := s.db.Exec(`DELETE FROM booking_drafts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// DeleteExpired removes drafts past their TTL.
func (s *DraftStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM booking_drafts WHERE expires_at <= datetime('now')`)
	if err != nil {
		return 0, fmt.Errorf("delete expired drafts: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
