package http

import (
	"context"
	"time"

	"breadthpulse/internal/breadth"
	"breadthpulse/internal/services"
)

// BreadthServiceInterface defines the breadth aggregation operations the
// handlers depend on. Kept as an interface so tests can stub the service.
type BreadthServiceInterface interface {
	Meta(ctx context.Context) (*services.MetaResponse, error)
	Trend(ctx context.Context, from, to time.Time) (*services.TrendResponse, error)
	Day(ctx context.Context, date time.Time, index string) (*breadth.DaySnapshot, error)
}
