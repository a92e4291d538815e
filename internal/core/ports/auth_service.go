package ports

import (
	"context"

	"github.com/geoclick/clicktracker/internal/core/domain"
)

// AuthService issues, resolves and destroys sessions.
type AuthService interface {
	// Login verifies credentials and returns a signed token for a new session.
	// previousToken, when set, is revoked so a login always yields a fresh id.
	Login(ctx context.Context, username, password, previousToken string) (string, *domain.Session, error)
	Resolve(ctx context.Context, token string) (*domain.Session, error)
	Logout(ctx context.Context, token string) error
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Username string
	Password string
	IsAdmin  bool
}

// UserService manages accounts and scoped user listings.
type UserService interface {
	// Register creates an account on behalf of caller (nil when anonymous).
	// Only admins may create admin accounts.
	Register(ctx context.Context, caller *domain.Session, input RegisterInput) (*domain.User, error)
	List(ctx context.Context, caller *domain.Session, username string) ([]*domain.User, error)
}
