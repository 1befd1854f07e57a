// Package session owns "who is logged in" for each browser, durable across
// page loads. State lives in sqlite keyed by an opaque cookie value; the
// user record itself always comes from the backend API.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/skylarktravel/skylark/internal/model"
)

// TokenVerifier exchanges a remember token for a user record. Implemented by
// the backend client.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*model.User, error)
}

// Store persists per-browser session state.
type Store struct {
	db       *sql.DB
	secret   string
	ttl      time.Duration
	verifier TokenVerifier
	logger   *slog.Logger
}

// NewStore creates a Store. secret encrypts remember tokens at rest; ttl
// bounds how long an idle browser session row survives.
func NewStore(db *sql.DB, secret string, ttl time.Duration, verifier TokenVerifier, logger *slog.Logger) *Store {
	return &Store{db: db, secret: secret, ttl: ttl, verifier: verifier, logger: logger}
}

// NewID returns a fresh opaque session ID for the browser cookie.
func NewID() string {
	return uuid.NewString()
}

// ensure creates the session row if it does not exist and refreshes its
// expiry.
func (s *Store) ensure(sid string) error {
	// Stored in sqlite's own text format so expires_at compares against
	// datetime('now').
	expires := time.Now().UTC().Add(s.ttl).Format("2006-01-02 15:04:05")
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, expires_at) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET expires_at = excluded.expires_at, updated_at = datetime('now')`,
		sid, expires,
	)
	if err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}
	return nil
}

// SetUser persists the authenticated user for the session, overwriting any
// prior value.
func (s *Store) SetUser(sid string, user *model.User) error {
	if user == nil {
		return fmt.Errorf("set user: nil user")
	}
	if err := s.ensure(sid); err != nil {
		return err
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = s.db.Exec(
		`UPDATE sessions SET user_json = ?, updated_at = datetime('now') WHERE id = ?`,
		string(data), sid,
	)
	if err != nil {
		return fmt.Errorf("set user: %w", err)
	}
	return nil
}

// GetUser returns the cached user for the session, or nil if the session is
// unknown, expired, or logged out. It never fails on an absent row.
func (s *Store) GetUser(sid string) (*model.User, error) {
	var userJSON sql.NullString
	err := s.db.QueryRow(
		`SELECT user_json FROM sessions WHERE id = ? AND expires_at > datetime('now')`,
		sid,
	).Scan(&userJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !userJSON.Valid || userJSON.String == "" {
		return nil, nil
	}
	var user model.User
	if err := json.Unmarshal([]byte(userJSON.String), &user); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &user, nil
}

// ClearUser removes both the user record and the remember token. Used on
// logout.
func (s *Store) ClearUser(sid string) error {
	_, err := s.db.Exec(
		`UPDATE sessions SET user_json = NULL, remember_token = NULL, updated_at = datetime('now') WHERE id = ?`,
		sid,
	)
	if err != nil {
		return fmt.Errorf("clear user: %w", err)
	}
	return nil
}

// SetRememberToken stores the long-lived credential, encrypted at rest.
func (s *Store) SetRememberToken(sid, token string) error {
	if err := s.ensure(sid); err != nil {
		return err
	}
	blob, err := sealToken(s.secret, token)
	if err != nil {
		return fmt.Errorf("seal remember token: %w", err)
	}
	_, err = s.db.Exec(
		`UPDATE sessions SET remember_token = ?, updated_at = datetime('now') WHERE id = ?`,
		blob, sid,
	)
	if err != nil {
		return fmt.Errorf("set remember token: %w", err)
	}
	return nil
}

// RememberToken returns the stored token, or "" if none exists or it cannot
// be decrypted (e.g. the session secret changed).
func (s *Store) RememberToken(sid string) (string, error) {
	var blob []byte
	err := s.db.QueryRow(
		`SELECT remember_token FROM sessions WHERE id = ? AND expires_at > datetime('now')`,
		sid,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get remember token: %w", err)
	}
	if len(blob) == 0 {
		return "", nil
	}
	token, err := openToken(s.secret, blob)
	if err != nil {
		s.logger.Warn("undecryptable remember token, discarding", "error", err)
		s.clearRememberToken(sid)
		return "", nil
	}
	return token, nil
}

func (s *Store) clearRememberToken(sid string) {
	if _, err := s.db.Exec(`UPDATE sessions SET remember_token = NULL WHERE id = ?`, sid); err != nil {
		s.logger.Error("clear remember token", "error", err)
	}
}

// IsAuthenticated reports whether the session holds a user record.
func (s *Store) IsAuthenticated(sid string) bool {
	user, err := s.GetUser(sid)
	return err == nil && user != nil
}

// TryRestoreSession repopulates the user from the remember token when no
// user is cached. A rejected or expired token is an expected, silent
// outcome: the token is cleared and (nil, nil) returned. Only local storage
// failures surface as errors.
func (s *Store) TryRestoreSession(ctx context.Context, sid string) (*model.User, error) {
	user, err := s.GetUser(sid)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	token, err := s.RememberToken(sid)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	restored, err := s.verifier.VerifyToken(ctx, token)
	if err != nil || restored == nil {
		s.logger.Debug("remember token exchange failed", "error", err)
		s.clearRememberToken(sid)
		return nil, nil
	}

	if err := s.SetUser(sid, restored); err != nil {
		return nil, err
	}
	return restored, nil
}

// DeleteExpired removes session rows past their TTL.
func (s *Store) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at <= datetime('now')`)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
