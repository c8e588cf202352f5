package ward

import (
	"context"
	"database/sql"
	"fmt"
)

const recentLimit = 30

type Repository interface {
	Create(ctx context.Context, m *Metric) error
	// ListRecent returns up to 30 metrics, most recent first. An empty wardID
	// lists every ward.
	ListRecent(ctx context.Context, wardID string) ([]Metric, error)
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) Create(ctx context.Context, m *Metric) error {
	query := `
		INSERT INTO ward_metrics (id, ward_id, date, derived_rate, line_days, clabsi_cases)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, m.ID, m.WardID, m.Date, m.DerivedRate, m.LineDays, m.ClabsiCases)
	if err != nil {
		return fmt.Errorf("insert ward metric: %w", err)
	}
	return nil
}

func (r *postgresRepo) ListRecent(ctx context.Context, wardID string) ([]Metric, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ward_id, date, derived_rate, line_days, clabsi_cases
		FROM ward_metrics
		WHERE ($1 = '' OR ward_id = $1)
		ORDER BY date DESC
		LIMIT $2
	`, wardID, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("query ward metrics: %w", err)
	}
	defer rows.Close()

	out := []Metric{}
	for rows.Next() {
		var m Metric
		if err := rows.Scan(&m.ID, &m.WardID, &m.Date, &m.DerivedRate, &m.LineDays, &m.ClabsiCases); err != nil {
			return nil, fmt.Errorf("scan ward metric: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ward metrics: %w", err)
	}
	return out, nil
}
