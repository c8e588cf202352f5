package resource

import (
	"context"
	"database/sql"
	"fmt"
)

type Repository interface {
	Create(ctx context.Context, s *Snapshot) error
	ListByWard(ctx context.Context, wardID string, limit int) ([]Snapshot, error)
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) Create(ctx context.Context, s *Snapshot) error {
	query := `
		INSERT INTO resource_metrics
			(id, ward_id, patients_needing, available_dressings, available_catheters,
			 dressings_deficit_rate, catheters_deficit_rate, combined_rate, band, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.WardID, s.PatientsNeeding, s.AvailableDressings, s.AvailableCatheters,
		s.DressingsDeficitRate, s.CathetersDeficitRate, s.CombinedRate, s.Band, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert resource metric: %w", err)
	}
	return nil
}

func (r *postgresRepo) ListByWard(ctx context.Context, wardID string, limit int) ([]Snapshot, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ward_id, patients_needing, available_dressings, available_catheters,
		       dressings_deficit_rate, catheters_deficit_rate, combined_rate, band, created_at
		FROM resource_metrics
		WHERE ward_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, wardID, limit)
	if err != nil {
		return nil, fmt.Errorf("query resource metrics: %w", err)
	}
	defer rows.Close()

	out := []Snapshot{}
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(
			&s.ID, &s.WardID, &s.PatientsNeeding, &s.AvailableDressings, &s.AvailableCatheters,
			&s.DressingsDeficitRate, &s.CathetersDeficitRate, &s.CombinedRate, &s.Band, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan resource metric: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resource metrics: %w", err)
	}
	return out, nil
}
