package ports

import (
	"context"
	"time"

	"github.com/geoclick/clicktracker/internal/core/domain"
)

// ClickRepository is the append-only store of click events.
// All list methods return events ordered by timestamp ascending.
type ClickRepository interface {
	Create(ctx context.Context, click *domain.ClickEvent) (*domain.ClickEvent, error)
	ListAll(ctx context.Context) ([]*domain.ClickEvent, error)
	ListForOwner(ctx context.Context, owner string) ([]*domain.ClickEvent, error)
	// ListInRange returns events with start <= timestamp <= end.
	// An empty owner matches every owner.
	ListInRange(ctx context.Context, owner string, start, end time.Time) ([]*domain.ClickEvent, error)
}
