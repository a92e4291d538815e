package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/geoclick/clicktracker/internal/core/domain"
	"github.com/geoclick/clicktracker/internal/core/ports"
)

type ClickService struct {
	repo ports.ClickRepository
	log  zerolog.Logger
	now  func() time.Time
}

func NewClickService(repo ports.ClickRepository, log zerolog.Logger) *ClickService {
	return &ClickService{repo: repo, log: log, now: time.Now}
}

// Record stores a click owned by caller. The owner and timestamp are always
// assigned here, never taken from the request.
func (s *ClickService) Record(ctx context.Context, caller *domain.Session, lat, lon float64) (*domain.ClickEvent, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	if !domain.ValidCoordinates(lat, lon) {
		return nil, domain.ErrInvalidCoordinates
	}

	click := &domain.ClickEvent{
		Lat:       lat,
		Lon:       lon,
		Owner:     caller.Username,
		Timestamp: s.now().UTC().Truncate(time.Millisecond),
	}
	created, err := s.repo.Create(ctx, click)
	if err != nil {
		s.log.Error().Err(err).Str("username", caller.Username).Msg("failed to record click")
		return nil, fmt.Errorf("record click: %w", err)
	}

	s.log.Debug().
		Str("username", caller.Username).
		Float64("lat", lat).
		Float64("lon", lon).
		Msg("click recorded")
	return created, nil
}

func (s *ClickService) List(ctx context.Context, caller *domain.Session, username string) ([]*domain.ClickEvent, error) {
	filter, err := domain.Scope(caller, username)
	if err != nil {
		return nil, err
	}
	if filter.All {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListForOwner(ctx, filter.Username)
}

// Report returns the clicks inside [Start, End]. An inverted window is not an
// error; it simply matches nothing.
func (s *ClickService) Report(ctx context.Context, caller *domain.Session, in ports.ReportInput) ([]*domain.ClickEvent, error) {
	filter, err := domain.Scope(caller, in.Username)
	if err != nil {
		return nil, err
	}
	if in.Start.After(in.End) {
		return []*domain.ClickEvent{}, nil
	}

	owner := filter.Username
	if filter.All {
		owner = ""
	}
	return s.repo.ListInRange(ctx, owner, in.Start.UTC(), in.End.UTC())
}
