package ports

import (
	"context"
	"time"

	"github.com/geoclick/clicktracker/internal/core/domain"
)

// ReportInput selects the clicks of one user (or all, for admins) in an
// inclusive time window.
type ReportInput struct {
	Username string
	Start    time.Time
	End      time.Time
}

// ClickService records and queries click events on behalf of a caller.
type ClickService interface {
	Record(ctx context.Context, caller *domain.Session, lat, lon float64) (*domain.ClickEvent, error)
	List(ctx context.Context, caller *domain.Session, username string) ([]*domain.ClickEvent, error)
	Report(ctx context.Context, caller *domain.Session, input ReportInput) ([]*domain.ClickEvent, error)
}
