package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/geoclick/clicktracker/internal/core/domain"
	"github.com/geoclick/clicktracker/internal/core/ports"
)

// UserService implements account creation, the admin bootstrap and the
// scoped user listing.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
	now    func() time.Time
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, log: log, now: time.Now}
}

// CreateUser hashes password and stores a new account.
func (s *UserService) CreateUser(ctx context.Context, username, password string, isAdmin bool) (*domain.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, fmt.Errorf("create user: %w", domain.ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", username).Bool("is_admin", isAdmin).Msg("user created")
	return created, nil
}

func (s *UserService) Register(ctx context.Context, caller *domain.Session, input ports.RegisterInput) (*domain.User, error) {
	if input.IsAdmin && (caller == nil || !caller.IsAdmin) {
		return nil, domain.ErrForbidden
	}
	return s.CreateUser(ctx, input.Username, input.Password, input.IsAdmin)
}

func (s *UserService) List(ctx context.Context, caller *domain.Session, username string) ([]*domain.User, error) {
	filter, err := domain.Scope(caller, username)
	if err != nil {
		return nil, err
	}
	if filter.All {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListForUser(ctx, filter.Username)
}

// EnsureAdmin creates the bootstrap admin account when no user with that
// username exists. It reports whether an account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}

	if _, err := s.CreateUser(ctx, username, password, true); err != nil {
		// Another instance won the race.
		if errors.Is(err, domain.ErrUserExists) {
			return false, nil
		}
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	return true, nil
}
