package patient

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"cathshield/internal/trend"
)

var (
	ErrNotFound     = errors.New("patient not found")
	ErrInvalidInput = errors.New("invalid patient input")
)

const DefaultConsentLanguage = "English"

// ConsentScripts holds the spoken consent text per supported language.
var ConsentScripts = map[string]string{
	"English": "This device photographs your catheter site to help nurses spot infection and dressing problems early. " +
		"Images are used only for your care. Please tell your nurse if you do not want photos taken.",
	"Vernacular": "A camera will take pictures of the tube in your arm or neck so nurses can see problems early. " +
		"The pictures are only for your care. Tell your nurse if you do not agree.",
}

type Patient struct {
	ID              uuid.UUID       `json:"id"`
	BedNumber       string          `json:"bedNumber"`
	Initials        string          `json:"initials"`
	InsertionDate   time.Time       `json:"insertionDate"`
	WardID          *string         `json:"wardId"`
	PatientFactors  json.RawMessage `json:"patientFactors,omitempty"`
	SafetyChecklist json.RawMessage `json:"safetyChecklist,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Detail is a patient with its dwell figures computed at read time.
type Detail struct {
	Patient
	trend.Dwell
}

type CreateRequest struct {
	BedNumber       string          `json:"bedNumber"`
	Initials        string          `json:"initials"`
	InsertionDate   time.Time       `json:"insertionDate"`
	WardID          string          `json:"wardId"`
	PatientFactors  json.RawMessage `json:"patientFactors"`
	SafetyChecklist json.RawMessage `json:"safetyChecklist"`
}

// UpdateRequest carries a partial update. Nil fields are left unchanged.
type UpdateRequest struct {
	BedNumber       *string         `json:"bedNumber"`
	Initials        *string         `json:"initials"`
	InsertionDate   *time.Time      `json:"insertionDate"`
	WardID          *string         `json:"wardId"`
	PatientFactors  json.RawMessage `json:"patientFactors"`
	SafetyChecklist json.RawMessage `json:"safetyChecklist"`
}

type Consent struct {
	ID                 uuid.UUID `json:"id"`
	PatientID          uuid.UUID `json:"patientId"`
	AudioLanguageUsed  string    `json:"audioLanguageUsed"`
	AudioPlayed        bool      `json:"audioPlayed"`
	PlaybackFinishedAt time.Time `json:"playbackFinishedAt"`
}

type ConsentRequest struct {
	PatientID         string `json:"patientId"`
	AudioLanguageUsed string `json:"audioLanguageUsed"`
}
