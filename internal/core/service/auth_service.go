package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/geoclick/clicktracker/internal/core/domain"
	"github.com/geoclick/clicktracker/internal/core/ports"
)

const defaultSessionTTL = 24 * time.Hour

// AuthService implements login, session resolution and logout.
type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionStore
	hasher   ports.PasswordHasher
	signer   *TokenSigner
	ttl      time.Duration
	log      zerolog.Logger
	now      func() time.Time

	// decoy is verified against when the username is unknown so both
	// failure paths cost one bcrypt comparison.
	decoy string
}

func NewAuthService(
	users ports.UserRepository,
	sessions ports.SessionStore,
	hasher ports.PasswordHasher,
	signer *TokenSigner,
	ttl time.Duration,
	log zerolog.Logger,
) *AuthService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	decoy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		log.Warn().Err(err).Msg("failed to prepare decoy password hash")
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		signer:   signer,
		ttl:      ttl,
		log:      log,
		now:      time.Now,
		decoy:    decoy,
	}
}

func (s *AuthService) Login(ctx context.Context, username, password, previousToken string) (string, *domain.Session, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(password, s.decoy)
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("login: %w", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", nil, domain.ErrInvalidCredentials
	}

	if previousToken != "" {
		s.revoke(ctx, previousToken)
	}

	session := domain.NewSession(uuid.NewString(), user, s.now().UTC(), s.ttl)
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", nil, fmt.Errorf("login: store session: %w", err)
	}

	token, err := s.signer.Sign(session)
	if err != nil {
		_ = s.sessions.Delete(ctx, session.ID)
		return "", nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().
		Str("username", user.Username).
		Bool("is_admin", user.IsAdmin).
		Msg("session created")

	return token, session, nil
}

// Resolve maps a token to its live session. It never modifies the store.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	id, err := s.signer.Parse(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if session.IsExpired(s.now()) {
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

// Logout destroys the session named by token. A token whose session is
// already gone yields domain.ErrSessionNotFound rather than a second success.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrSessionNotFound
	}
	id, err := s.signer.Parse(token)
	if err != nil {
		return domain.ErrSessionNotFound
	}

	if err := s.sessions.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return err
		}
		return fmt.Errorf("logout: %w", err)
	}

	s.log.Info().Str("session_id", id).Msg("session destroyed")
	return nil
}

func (s *AuthService) revoke(ctx context.Context, token string) {
	id, err := s.signer.Parse(token)
	if err != nil {
		return
	}
	if err := s.sessions.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		s.log.Warn().Err(err).Msg("failed to revoke previous session")
	}
}
