package patient

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const listLimit = 10

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	List(ctx context.Context) ([]Patient, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Patient, error)
	CreateConsent(ctx context.Context, c *Consent) error
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

const patientColumns = `id, bed_number, initials, insertion_date, ward_id, patient_factors, safety_checklist, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPatient(s scanner) (*Patient, error) {
	var (
		p                  Patient
		wardID             sql.NullString
		factors, checklist []byte
	)
	if err := s.Scan(&p.ID, &p.BedNumber, &p.Initials, &p.InsertionDate, &wardID, &factors, &checklist, &p.CreatedAt); err != nil {
		return nil, err
	}
	if wardID.Valid {
		p.WardID = &wardID.String
	}
	if len(factors) > 0 {
		p.PatientFactors = json.RawMessage(factors)
	}
	if len(checklist) > 0 {
		p.SafetyChecklist = json.RawMessage(checklist)
	}
	return &p, nil
}

// nullJSON maps an absent document to SQL NULL.
func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func (r *postgresRepo) Create(ctx context.Context, p *Patient) error {
	query := `
		INSERT INTO patients (` + patientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.BedNumber, p.Initials, p.InsertionDate, p.WardID,
		nullJSON(p.PatientFactors), nullJSON(p.SafetyChecklist), p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id)
	p, err := scanPatient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]Patient, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+patientColumns+` FROM patients ORDER BY created_at DESC LIMIT $1`, listLimit)
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", err)
	}
	defer rows.Close()

	out := []Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patients: %w", err)
	}
	return out, nil
}

func (r *postgresRepo) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Patient, error) {
	query := `
		UPDATE patients SET
			bed_number       = COALESCE($2, bed_number),
			initials         = COALESCE($3, initials),
			insertion_date   = COALESCE($4, insertion_date),
			ward_id          = COALESCE($5, ward_id),
			patient_factors  = COALESCE($6, patient_factors),
			safety_checklist = COALESCE($7, safety_checklist)
		WHERE id = $1
		RETURNING ` + patientColumns
	row := r.db.QueryRowContext(ctx, query,
		id, req.BedNumber, req.Initials, req.InsertionDate, req.WardID,
		nullJSON(req.PatientFactors), nullJSON(req.SafetyChecklist))
	p, err := scanPatient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return p, nil
}

func (r *postgresRepo) CreateConsent(ctx context.Context, c *Consent) error {
	query := `
		INSERT INTO consents (id, patient_id, audio_language_used, audio_played, playback_finished_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.PatientID, c.AudioLanguageUsed, c.AudioPlayed, c.PlaybackFinishedAt)
	if err != nil {
		return fmt.Errorf("insert consent: %w", err)
	}
	return nil
}
