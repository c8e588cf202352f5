package alert

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Alert) error
	List(ctx context.Context, f Filter) ([]Alert, error)
	Acknowledge(ctx context.Context, id uuid.UUID) (*Alert, error)
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

const alertColumns = `id, patient_id, type, reason, severity, recommended_action, acknowledged, created_at`

func (r *postgresRepo) Create(ctx context.Context, a *Alert) error {
	query := `
		INSERT INTO alerts (id, patient_id, type, reason, severity, recommended_action, acknowledged, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.PatientID, a.Type, a.Reason, a.Severity, a.RecommendedAction, a.Acknowledged, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts
		WHERE ($1 = '' OR patient_id = $1)
		  AND ($2 = false OR acknowledged = false)
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, f.PatientID, f.Unacknowledged)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	alerts := []Alert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return alerts, nil
}

func (r *postgresRepo) Acknowledge(ctx context.Context, id uuid.UUID) (*Alert, error) {
	query := `UPDATE alerts SET acknowledged = true WHERE id = $1 RETURNING ` + alertColumns

	a, err := scanAlert(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAlert(s scanner) (*Alert, error) {
	var a Alert
	var patientID sql.NullString
	err := s.Scan(
		&a.ID,
		&patientID,
		&a.Type,
		&a.Reason,
		&a.Severity,
		&a.RecommendedAction,
		&a.Acknowledged,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan alert: %w", err)
	}
	if patientID.Valid {
		a.PatientID = &patientID.String
	}
	return &a, nil
}
