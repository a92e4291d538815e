package ports

import (
	"context"

	"github.com/geoclick/clicktracker/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// Create inserts a new user. It returns domain.ErrUserExists when the
	// username is already taken; the check must be atomic in the store.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	ListAll(ctx context.Context) ([]*domain.User, error)
	// ListForUser returns the single matching user, or an empty slice.
	ListForUser(ctx context.Context, username string) ([]*domain.User, error)
}
