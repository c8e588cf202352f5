package resource

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cathshield/internal/alert"
	"cathshield/internal/risk"
)

type fakeRepo struct {
	created []Snapshot
	err     error
}

func (f *fakeRepo) Create(_ context.Context, s *Snapshot) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *s)
	return nil
}

func (f *fakeRepo) ListByWard(_ context.Context, wardID string, _ int) ([]Snapshot, error) {
	var out []Snapshot
	for _, s := range f.created {
		if s.WardID == wardID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeRaiser struct {
	raised []risk.Candidate
	err    error
}

func (f *fakeRaiser) Raise(_ context.Context, patientID *string, cs []risk.Candidate) ([]alert.Alert, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.raised = append(f.raised, cs...)
	out := make([]alert.Alert, len(cs))
	for i, c := range cs {
		out[i] = alert.Alert{ID: uuid.New(), PatientID: patientID, Type: c.Type, Severity: c.Severity}
	}
	return out, nil
}

func newService(repo Repository, raiser AlertRaiser) Service {
	return NewService(repo, raiser, "WARD-1", zap.NewNop())
}

func TestCheck_NoAlertBelowThreshold(t *testing.T) {
	repo, raiser := &fakeRepo{}, &fakeRaiser{}
	svc := newService(repo, raiser)

	res, err := svc.Check(context.Background(), SupplyCheck{Patients: 10, Dressings: 7, Catheters: 9})
	require.NoError(t, err)

	assert.Equal(t, "WARD-1", res.WardID)
	assert.Equal(t, 30.0, res.DressingsDeficitRate)
	assert.Equal(t, 10.0, res.CathetersDeficitRate)
	assert.Equal(t, 20.0, res.CombinedRate)
	assert.Equal(t, risk.BandYellow, res.Band)
	assert.False(t, res.AlertRaised)
	assert.Empty(t, raiser.raised)
	require.Len(t, repo.created, 1)
}

func TestCheck_CriticalShortage(t *testing.T) {
	repo, raiser := &fakeRepo{}, &fakeRaiser{}
	svc := newService(repo, raiser)

	res, err := svc.Check(context.Background(), SupplyCheck{WardID: "ICU-2", Patients: 10, Dressings: 2, Catheters: 2})
	require.NoError(t, err)

	assert.Equal(t, "ICU-2", res.WardID)
	assert.Equal(t, 80.0, res.CombinedRate)
	assert.Equal(t, risk.BandRed, res.Band)
	assert.True(t, res.AlertRaised)
	require.Len(t, raiser.raised, 1)
	assert.Equal(t, risk.AlertResourceShortage, raiser.raised[0].Type)
	assert.Equal(t, risk.SeverityCritical, raiser.raised[0].Severity)
}

func TestCheck_InvalidPatientsWritesNothing(t *testing.T) {
	repo, raiser := &fakeRepo{}, &fakeRaiser{}
	svc := newService(repo, raiser)

	_, err := svc.Check(context.Background(), SupplyCheck{Patients: 0, Dressings: 3})
	assert.ErrorIs(t, err, risk.ErrInvalidInput)
	assert.Empty(t, repo.created)
	assert.Empty(t, raiser.raised)
}

func TestCheck_StorageErrors(t *testing.T) {
	svc := newService(&fakeRepo{err: errors.New("db down")}, &fakeRaiser{})
	_, err := svc.Check(context.Background(), SupplyCheck{Patients: 4})
	assert.Error(t, err)
}

func TestCheck_AlertFailureKeepsStoredSnapshot(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(repo, &fakeRaiser{err: errors.New("db down")})

	res, err := svc.Check(context.Background(), SupplyCheck{Patients: 4})
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.CombinedRate)
	assert.False(t, res.AlertRaised)
	require.Len(t, repo.created, 1)
	assert.Equal(t, res.ID, repo.created[0].ID)
}

func TestCheck_NegativeCountsStoredAsZero(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	raiser := &fakeRaiser{}
	svc := newService(NewRepository(db), raiser)

	mock.ExpectExec(`INSERT INTO resource_metrics`).
		WithArgs(sqlmock.AnyArg(), "WARD-1", 10, 0, 10, 100.0, 0.0, 50.0, "yellow", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := svc.Check(context.Background(), SupplyCheck{Patients: 10, Dressings: -5, Catheters: 10})
	require.NoError(t, err)
	assert.Zero(t, res.AvailableDressings)
	assert.Equal(t, 10, res.AvailableCatheters)
	assert.Equal(t, 50.0, res.CombinedRate)
	assert.True(t, res.AlertRaised)
	require.Len(t, raiser.raised, 1)
	assert.Equal(t, risk.SeverityWarning, raiser.raised[0].Severity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCheck_AlertUsesRoundedCombinedRate(t *testing.T) {
	raiser := &fakeRaiser{}
	svc := newService(&fakeRepo{}, raiser)

	res, err := svc.Check(context.Background(), SupplyCheck{Patients: 2003, Dressings: 1402, Catheters: 1402})
	require.NoError(t, err)
	assert.Equal(t, 30.0, res.CombinedRate)
	assert.Equal(t, risk.BandYellow, res.Band)
	assert.False(t, res.AlertRaised)
	assert.Empty(t, raiser.raised)
}

func TestHistory_DefaultsWard(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(repo, &fakeRaiser{})
	_, err := svc.Check(context.Background(), SupplyCheck{Patients: 3, Dressings: 3, Catheters: 3})
	require.NoError(t, err)

	snaps, err := svc.History(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestRepository_CreateAndList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	snap := &Snapshot{
		ID: uuid.New(), WardID: "WARD-1", PatientsNeeding: 10, AvailableDressings: 7, AvailableCatheters: 9,
		DressingsDeficitRate: 30, CathetersDeficitRate: 10, CombinedRate: 20, Band: risk.BandYellow, CreatedAt: time.Now(),
	}
	mock.ExpectExec(`INSERT INTO resource_metrics`).
		WithArgs(snap.ID, "WARD-1", 10, 7, 9, 30.0, 10.0, 20.0, "yellow", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(context.Background(), snap))

	rows := sqlmock.NewRows([]string{
		"id", "ward_id", "patients_needing", "available_dressings", "available_catheters",
		"dressings_deficit_rate", "catheters_deficit_rate", "combined_rate", "band", "created_at",
	}).AddRow(snap.ID.String(), "WARD-1", 10, 7, 9, 30.0, 10.0, 20.0, "yellow", snap.CreatedAt)
	mock.ExpectQuery(`SELECT (.+) FROM resource_metrics`).WithArgs("WARD-1", 30).WillReturnRows(rows)

	list, err := repo.ListByWard(context.Background(), "WARD-1", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, snap.ID, list[0].ID)
	assert.Equal(t, risk.BandYellow, list[0].Band)
	assert.Equal(t, 20.0, list[0].CombinedRate)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_CreateMetric(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(newService(&fakeRepo{}, &fakeRaiser{})))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/resource-metrics",
		strings.NewReader(`{"wardId":"WARD-3","patients":10,"dressings":2,"catheters":2}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Metric map[string]any `json:"metric"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body.Metric["alert"])
	assert.Equal(t, "red", body.Metric["band"])
	assert.Equal(t, 80.0, body.Metric["combinedRate"])

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/resource-metrics", strings.NewReader(`{"patients":0}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Patients count is required")
}
