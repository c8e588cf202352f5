package resource

import (
	"time"

	"github.com/google/uuid"

	"cathshield/internal/risk"
)

// Snapshot is one ward supply check. It is written once and never updated.
type Snapshot struct {
	ID                   uuid.UUID `json:"id" db:"id"`
	WardID               string    `json:"wardId" db:"ward_id"`
	PatientsNeeding      int       `json:"patientsNeeding" db:"patients_needing"`
	AvailableDressings   int       `json:"availableDressings" db:"available_dressings"`
	AvailableCatheters   int       `json:"availableCatheters" db:"available_catheters"`
	DressingsDeficitRate float64   `json:"dressingsDeficitRate" db:"dressings_deficit_rate"`
	CathetersDeficitRate float64   `json:"cathetersDeficitRate" db:"catheters_deficit_rate"`
	CombinedRate         float64   `json:"combinedRate" db:"combined_rate"`
	Band                 risk.Band `json:"band" db:"band"`
	CreatedAt            time.Time `json:"createdAt" db:"created_at"`
}

type SupplyCheck struct {
	WardID    string `json:"wardId"`
	Patients  int    `json:"patients"`
	Dressings int    `json:"dressings"`
	Catheters int    `json:"catheters"`
}

type CheckResult struct {
	Snapshot
	AlertRaised bool `json:"alert"`
}
