package patient

import (
	"context"
	"encoding/json"
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

	"cathshield/internal/speech"
)

type fakeRepo struct {
	patients map[uuid.UUID]*Patient
	consents []Consent
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{patients: map[uuid.UUID]*Patient{}}
}

func (f *fakeRepo) Create(_ context.Context, p *Patient) error {
	f.patients[p.ID] = p
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) List(_ context.Context) ([]Patient, error) {
	out := []Patient{}
	for _, p := range f.patients {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, id uuid.UUID, req UpdateRequest) (*Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	if req.BedNumber != nil {
		p.BedNumber = *req.BedNumber
	}
	return p, nil
}

func (f *fakeRepo) CreateConsent(_ context.Context, c *Consent) error {
	f.consents = append(f.consents, *c)
	return nil
}

type fakeSpeech struct {
	language string
	err      error
}

func (f *fakeSpeech) Synthesize(_ context.Context, _ string, language string) ([]byte, error) {
	f.language = language
	return []byte("RIFF"), f.err
}

var fixedNow = time.Date(2026, 5, 3, 12, 0, 0, 0, time.UTC)

func newTestService(repo Repository) *service {
	return newTestServiceWithSpeech(repo, &fakeSpeech{})
}

func newTestServiceWithSpeech(repo Repository, synth speech.Synthesizer) *service {
	svc := NewService(repo, synth, zap.NewNop()).(*service)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.Create(context.Background(), CreateRequest{Initials: "AB", InsertionDate: fixedNow})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), CreateRequest{BedNumber: "4", Initials: "AB"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGet_IncludesDwell(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	p, err := svc.Create(context.Background(), CreateRequest{
		BedNumber: "12", Initials: "JD", InsertionDate: fixedNow.Add(-50 * time.Hour), WardID: "ICU",
	})
	require.NoError(t, err)
	require.NotNil(t, p.WardID)
	assert.Equal(t, "ICU", *p.WardID)

	d, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, d.Hours)
	require.NotNil(t, d.LineDayIndex)
	assert.Equal(t, 3, *d.LineDayIndex)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordConsent(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	p, err := svc.Create(context.Background(), CreateRequest{BedNumber: "1", Initials: "XY", InsertionDate: fixedNow})
	require.NoError(t, err)

	c, err := svc.RecordConsent(context.Background(), ConsentRequest{PatientID: p.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, DefaultConsentLanguage, c.AudioLanguageUsed)
	assert.True(t, c.AudioPlayed)
	assert.Equal(t, fixedNow, c.PlaybackFinishedAt)

	_, err = svc.RecordConsent(context.Background(), ConsentRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.RecordConsent(context.Background(), ConsentRequest{PatientID: "bed-4"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.RecordConsent(context.Background(), ConsentRequest{PatientID: uuid.NewString()})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, repo.consents, 1)
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	id := uuid.New()
	cols := []string{"id", "bed_number", "initials", "insertion_date", "ward_id", "patient_factors", "safety_checklist", "created_at"}
	mock.ExpectQuery(`SELECT (.+) FROM patients WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(id.String(), "7", "MK", fixedNow, nil, []byte(`{"diabetes":true}`), nil, fixedNow))

	p, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "7", p.BedNumber)
	assert.Nil(t, p.WardID)
	assert.JSONEq(t, `{"diabetes":true}`, string(p.PatientFactors))
	assert.Nil(t, p.SafetyChecklist)

	missing := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM patients WHERE id = \$1`).
		WithArgs(missing).
		WillReturnRows(sqlmock.NewRows(cols))
	_, err = repo.GetByID(context.Background(), missing)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateConsent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	c := &Consent{ID: uuid.New(), PatientID: uuid.New(), AudioLanguageUsed: "English", AudioPlayed: true, PlaybackFinishedAt: fixedNow}
	mock.ExpectExec(`INSERT INTO consents`).
		WithArgs(c.ID, c.PatientID, "English", true, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CreateConsent(context.Background(), c))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(newTestService(newFakeRepo())))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/patients",
		strings.NewReader(`{"bedNumber":"3","initials":"LS","insertionDate":"2026-05-02T12:00:00Z"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var created struct {
		Patient Patient `json:"patient"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/patients/"+created.Patient.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Patient map[string]any `json:"patient"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 24.0, got.Patient["dwellHours"])
	assert.Equal(t, 1.0, got.Patient["lineDayIndex"])
	assert.Equal(t, "3", got.Patient["bedNumber"])

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/patients/"+created.Patient.ID.String(),
		strings.NewReader(`{"bedNumber":"9"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"bedNumber":"9"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/patients/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/patients/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/consent", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/consent",
		strings.NewReader(`{"patientId":"`+created.Patient.ID.String()+`","audioLanguageUsed":"Spanish"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"audioLanguageUsed":"Spanish"`)
}

func TestConsentAudio(t *testing.T) {
	synth := &fakeSpeech{}
	svc := newTestServiceWithSpeech(newFakeRepo(), synth)

	audio, err := svc.ConsentAudio(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF"), audio)
	assert.Equal(t, "English", synth.language)

	_, err = svc.ConsentAudio(context.Background(), "Klingon")
	assert.ErrorIs(t, err, ErrInvalidInput)

	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(svc))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/consent/audio?language=Vernacular", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))
	assert.Equal(t, "RIFF", rec.Body.String())

	r = chi.NewRouter()
	RegisterRoutes(r, NewHandler(newTestServiceWithSpeech(newFakeRepo(), &fakeSpeech{err: speech.ErrNotConfigured})))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/consent/audio?language=Vernacular", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
