package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neexbeast/weather-trip-planner/internal/planner"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Querier abstracts the subset of pgxpool.Pool used by Repository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists trip reports.
type Repository struct {
	q Querier
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for tests).
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q}
}

// SaveReport inserts a report. Saving the same ID twice replaces the data.
func (r *Repository) SaveReport(ctx context.Context, report *planner.Report) error {
	dataJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report %s: %w", report.ID, err)
	}

	const q = `
		INSERT INTO trip_reports (id, nights, max_price, data, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET data = EXCLUDED.data
	`

	if _, err := r.q.Exec(ctx, q, report.ID.String(), report.Nights, report.MaxPrice, dataJSON, report.CreatedAt); err != nil {
		return fmt.Errorf("inserting report %s: %w", report.ID, err)
	}

	return nil
}

// GetReport retrieves a report by ID.
// Returns nil, nil when no report has that ID.
func (r *Repository) GetReport(ctx context.Context, id uuid.UUID) (*planner.Report, error) {
	const q = `
		SELECT data
		FROM trip_reports
		WHERE id = $1
	`

	var dataJSON []byte
	if err := r.q.QueryRow(ctx, q, id.String()).Scan(&dataJSON); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying report %s: %w", id, err)
	}

	var report planner.Report
	if err := json.Unmarshal(dataJSON, &report); err != nil {
		return nil, fmt.Errorf("unmarshaling report %s: %w", id, err)
	}
	return &report, nil
}

// ListReports returns the most recent reports, newest first. A non-empty
// city keeps only reports in which that resolved city appears, using the
// JSONB @> containment operator.
func (r *Repository) ListReports(ctx context.Context, city string, limit int) ([]*planner.Report, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	var (
		rows pgx.Rows
		err  error
	)
	if city == "" {
		const q = `
			SELECT data
			FROM trip_reports
			ORDER BY created_at DESC
			LIMIT $1
		`
		rows, err = r.q.Query(ctx, q, limit)
	} else {
		filter, mErr := json.Marshal(map[string]any{
			"cities": []map[string]string{{"city": city}},
		})
		if mErr != nil {
			return nil, fmt.Errorf("marshaling JSONB filter: %w", mErr)
		}
		const q = `
			SELECT data
			FROM trip_reports
			WHERE data @> $1::jsonb
			ORDER BY created_at DESC
			LIMIT $2
		`
		rows, err = r.q.Query(ctx, q, string(filter), limit)
	}
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	results := []*planner.Report{}
	for rows.Next() {
		var dataJSON []byte
		if err := rows.Scan(&dataJSON); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}

		var report planner.Report
		if err := json.Unmarshal(dataJSON, &report); err != nil {
			return nil, fmt.Errorf("unmarshaling report: %w", err)
		}
		results = append(results, &report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating report rows: %w", err)
	}

	return results, nil
}
