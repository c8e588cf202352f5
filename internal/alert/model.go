package alert

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"cathshield/internal/risk"
)

var ErrNotFound = errors.New("alert not found")

// Alert is a persisted alert candidate. PatientID is nil for ward-level alerts.
type Alert struct {
	ID                uuid.UUID      `json:"id" db:"id"`
	PatientID         *string        `json:"patientId" db:"patient_id"`
	Type              risk.AlertType `json:"type" db:"type"`
	Reason            string         `json:"reason" db:"reason"`
	Severity          risk.Severity  `json:"severity" db:"severity"`
	RecommendedAction string         `json:"recommendedAction" db:"recommended_action"`
	Acknowledged      bool           `json:"acknowledged" db:"acknowledged"`
	CreatedAt         time.Time      `json:"createdAt" db:"created_at"`
}

type Filter struct {
	PatientID      string
	Unacknowledged bool
}
