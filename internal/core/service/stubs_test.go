package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/geoclick/clicktracker/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stubs mirroring the Mongo / session store behaviour.
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	findErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	stored := cloneUser(user)
	stored.ID = "id-" + user.Username
	r.users[user.Username] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) ListAll(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *stubUserRepo) ListForUser(_ context.Context, username string) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[username]; ok {
		return []*domain.User{cloneUser(u)}, nil
	}
	return []*domain.User{}, nil
}

type stubSessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*domain.Session
	createErr error
	deleteErr error
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]*domain.Session)}
}

func (s *stubSessionStore) Create(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	clone := *session
	s.sessions[session.ID] = &clone
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *sess
	return &clone, nil
}

func (s *stubSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *stubSessionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

type stubClickRepo struct {
	mu        sync.Mutex
	clicks    []*domain.ClickEvent
	createErr error
	calls     int
}

func (r *stubClickRepo) Create(_ context.Context, c *domain.ClickEvent) (*domain.ClickEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.createErr != nil {
		return nil, r.createErr
	}
	clone := *c
	clone.ID = strconv.Itoa(len(r.clicks) + 1)
	r.clicks = append(r.clicks, &clone)
	out := clone
	return &out, nil
}

func (r *stubClickRepo) ListAll(ctx context.Context) ([]*domain.ClickEvent, error) {
	return r.ListInRange(ctx, "", time.Time{}, time.Unix(1<<40, 0))
}

func (r *stubClickRepo) ListForOwner(ctx context.Context, owner string) ([]*domain.ClickEvent, error) {
	return r.ListInRange(ctx, owner, time.Time{}, time.Unix(1<<40, 0))
}

func (r *stubClickRepo) ListInRange(_ context.Context, owner string, start, end time.Time) ([]*domain.ClickEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	out := []*domain.ClickEvent{}
	for _, c := range r.clicks {
		if owner != "" && c.Owner != owner {
			continue
		}
		if c.Timestamp.Before(start) || c.Timestamp.After(end) {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}
