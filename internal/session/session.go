package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a token does not resolve to a live
	// session - unknown, expired and destroyed tokens are indistinguishable.
	ErrNotFound = errors.New("session not found")
)

// Session binds an opaque token to an authenticated user. Role is a snapshot
// taken at login time; a later role change on the user record does not
// propagate to live sessions.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// New creates a session with a fresh random token and the given TTL.
func New(userID int64, username, email, role string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		Username:  username,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

func (s *Session) IsAdmin() bool {
	return s.Role == "admin"
}

// Store is the server-side session store keyed by opaque token.
type Store interface {
	// Save persists the session until its ExpiresAt.
	Save(ctx context.Context, s *Session) error

	// Get returns the session for token, or ErrNotFound when the token is
	// unknown or the session has expired.
	Get(ctx context.Context, token string) (*Session, error)

	// Delete destroys the session. Deleting an absent token is not an
	// error, so logout stays idempotent.
	Delete(ctx context.Context, token string) error

	Close() error
}
