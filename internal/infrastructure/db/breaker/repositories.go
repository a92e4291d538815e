package breaker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/geoclick/clicktracker/internal/core/domain"
	"github.com/geoclick/clicktracker/internal/core/ports"
)

// UserRepository guards a ports.UserRepository with a circuit breaker.
type UserRepository struct {
	next ports.UserRepository
	cb   *gobreaker.CircuitBreaker[any]
}

func NewUserRepository(next ports.UserRepository, cfg Config, log zerolog.Logger) *UserRepository {
	return &UserRepository{next: next, cb: newCircuitBreaker("users", cfg, log)}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	return execute(r.cb, func() (*domain.User, error) { return r.next.Create(ctx, user) })
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return execute(r.cb, func() (*domain.User, error) { return r.next.FindByUsername(ctx, username) })
}

func (r *UserRepository) ListAll(ctx context.Context) ([]*domain.User, error) {
	return execute(r.cb, func() ([]*domain.User, error) { return r.next.ListAll(ctx) })
}

func (r *UserRepository) ListForUser(ctx context.Context, username string) ([]*domain.User, error) {
	return execute(r.cb, func() ([]*domain.User, error) { return r.next.ListForUser(ctx, username) })
}

// ClickRepository guards a ports.ClickRepository with a circuit breaker.
type ClickRepository struct {
	next ports.ClickRepository
	cb   *gobreaker.CircuitBreaker[any]
}

func NewClickRepository(next ports.ClickRepository, cfg Config, log zerolog.Logger) *ClickRepository {
	return &ClickRepository{next: next, cb: newCircuitBreaker("clicks", cfg, log)}
}

func (r *ClickRepository) Create(ctx context.Context, click *domain.ClickEvent) (*domain.ClickEvent, error) {
	return execute(r.cb, func() (*domain.ClickEvent, error) { return r.next.Create(ctx, click) })
}

func (r *ClickRepository) ListAll(ctx context.Context) ([]*domain.ClickEvent, error) {
	return execute(r.cb, func() ([]*domain.ClickEvent, error) { return r.next.ListAll(ctx) })
}

func (r *ClickRepository) ListForOwner(ctx context.Context, owner string) ([]*domain.ClickEvent, error) {
	return execute(r.cb, func() ([]*domain.ClickEvent, error) { return r.next.ListForOwner(ctx, owner) })
}

func (r *ClickRepository) ListInRange(ctx context.Context, owner string, start, end time.Time) ([]*domain.ClickEvent, error) {
	return execute(r.cb, func() ([]*domain.ClickEvent, error) { return r.next.ListInRange(ctx, owner, start, end) })
}

// SessionStore guards a ports.SessionStore with a circuit breaker.
type SessionStore struct {
	next ports.SessionStore
	cb   *gobreaker.CircuitBreaker[any]
}

func NewSessionStore(next ports.SessionStore, cfg Config, log zerolog.Logger) *SessionStore {
	return &SessionStore{next: next, cb: newCircuitBreaker("sessions", cfg, log)}
}

func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	return executeErr(s.cb, func() error { return s.next.Create(ctx, session) })
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	return execute(s.cb, func() (*domain.Session, error) { return s.next.Get(ctx, id) })
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return executeErr(s.cb, func() error { return s.next.Delete(ctx, id) })
}
