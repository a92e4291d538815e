package domain

import (
	"errors"
	"time"
)

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrSessionNotFound = errors.New("session not found")
	ErrPersistence     = errors.New("persistence failure")
	ErrInvalidInput    = errors.New("invalid input")
)

// Session binds an issued token to the user that logged in.
//
// IsAdmin is a snapshot taken at login. Promoting or demoting the user
// afterwards does not change an existing session; the new role applies
// from the next login.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewSession returns a session for user valid for ttl starting at now.
func NewSession(id string, user *User, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:        id,
		Username:  user.Username,
		IsAdmin:   user.IsAdmin,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the session is no longer valid at t.
func (s *Session) IsExpired(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}
