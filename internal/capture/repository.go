package capture

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *RiskPoint) error
	// ListByPatient returns a patient's points in ascending capture order.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]RiskPoint, error)
	// Latest returns the patient's most recent point, or nil when none exist.
	Latest(ctx context.Context, patientID uuid.UUID) (*RiskPoint, error)
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) Create(ctx context.Context, p *RiskPoint) error {
	query := `
		INSERT INTO risk_points
			(id, patient_id, captured_at, score, band, dressing_change, catheter_change,
			 flushing, line_day_index, traction_red, traction_yellow, dressing_failure,
			 site_label, risk_window, risk_meter, risk_tier)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.PatientID, p.CapturedAt, p.Score, p.Band, p.DressingChange, p.CatheterChange,
		p.Flushing, p.LineDayIndex, p.TractionRed, p.TractionYellow, p.DressingFailure,
		p.SiteLabel, p.RiskWindow, p.RiskMeter, p.RiskTier)
	if err != nil {
		return fmt.Errorf("insert risk point: %w", err)
	}
	return nil
}

const selectPoints = `
	SELECT id, patient_id, captured_at, score, band, dressing_change, catheter_change,
	       flushing, line_day_index, traction_red, traction_yellow, dressing_failure,
	       site_label, risk_window, risk_meter, risk_tier
	FROM risk_points
	WHERE patient_id = $1
`

type scanner interface {
	Scan(dest ...any) error
}

func scanPoint(sc scanner) (RiskPoint, error) {
	var (
		p   RiskPoint
		day sql.NullInt64
	)
	if err := sc.Scan(
		&p.ID, &p.PatientID, &p.CapturedAt, &p.Score, &p.Band, &p.DressingChange, &p.CatheterChange,
		&p.Flushing, &day, &p.TractionRed, &p.TractionYellow, &p.DressingFailure,
		&p.SiteLabel, &p.RiskWindow, &p.RiskMeter, &p.RiskTier,
	); err != nil {
		return p, err
	}
	if day.Valid {
		d := int(day.Int64)
		p.LineDayIndex = &d
	}
	return p, nil
}

func (r *postgresRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]RiskPoint, error) {
	rows, err := r.db.QueryContext(ctx, selectPoints+` ORDER BY captured_at ASC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("query risk points: %w", err)
	}
	defer rows.Close()

	out := []RiskPoint{}
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan risk point: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate risk points: %w", err)
	}
	return out, nil
}

func (r *postgresRepo) Latest(ctx context.Context, patientID uuid.UUID) (*RiskPoint, error) {
	row := r.db.QueryRowContext(ctx, selectPoints+` ORDER BY captured_at DESC LIMIT 1`, patientID)
	p, err := scanPoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest risk point: %w", err)
	}
	return &p, nil
}
