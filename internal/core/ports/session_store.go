package ports

import (
	"context"

	"github.com/geoclick/clicktracker/internal/core/domain"
)

// SessionStore keeps issued sessions keyed by session id.
// Implementations must be safe for concurrent use.
type SessionStore interface {
	Create(ctx context.Context, session *domain.Session) error
	// Get returns domain.ErrSessionNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (*domain.Session, error)
	// Delete returns domain.ErrSessionNotFound when nothing was removed.
	Delete(ctx context.Context, id string) error
}

// PasswordHasher is a one-way salted hash.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify never fails loudly: a malformed digest simply does not match.
	Verify(plaintext, digest string) bool
}
