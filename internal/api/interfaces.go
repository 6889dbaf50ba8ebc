package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/neexbeast/weather-trip-planner/internal/planner"
)

// TripPlanner runs a planning request.
type TripPlanner interface {
	Plan(ctx context.Context, req planner.Request) (*planner.Report, error)
}

// ReportRepo defines the storage operations needed by handlers.
type ReportRepo interface {
	GetReport(ctx context.Context, id uuid.UUID) (*planner.Report, error)
	ListReports(ctx context.Context, city string, limit int) ([]*planner.Report, error)
}

// ReportCache defines the cache operations needed by handlers.
type ReportCache interface {
	GetReport(ctx context.Context, id string) (*planner.Report, error)
	SetReport(ctx context.Context, report *planner.Report) error
}
