package capture

import (
	"time"

	"github.com/google/uuid"

	"cathshield/internal/alert"
	"cathshield/internal/risk"
	"cathshield/internal/trend"
)

// Event markers a capture may carry.
const (
	EventDressingChange = "dressing_change"
	EventCatheterChange = "catheter_change"
	EventFlushing       = "flushing"
)

// RiskPoint is one persisted capture observation.
type RiskPoint struct {
	ID              uuid.UUID   `json:"id"`
	PatientID       uuid.UUID   `json:"patientId"`
	CapturedAt      time.Time   `json:"capturedAt"`
	Score           float64     `json:"score"`
	Band            risk.Band   `json:"band"`
	DressingChange  bool        `json:"dressingChange"`
	CatheterChange  bool        `json:"catheterChange"`
	Flushing        bool        `json:"flushing"`
	LineDayIndex    *int        `json:"lineDayIndex,omitempty"`
	TractionRed     int         `json:"tractionPullsRed"`
	TractionYellow  int         `json:"tractionPullsYellow"`
	DressingFailure bool        `json:"dressingFailure"`
	SiteLabel       risk.Label  `json:"siteLabel"`
	RiskWindow      risk.Window `json:"riskWindow"`
	RiskMeter       float64     `json:"riskMeter"`
	RiskTier        risk.Tier   `json:"riskTier"`
}

func (p RiskPoint) trendPoint() trend.RiskPoint {
	return trend.RiskPoint{
		Timestamp:        p.CapturedAt,
		Score:            p.Score,
		Band:             p.Band,
		DressingChange:   p.DressingChange,
		CatheterChange:   p.CatheterChange,
		Flushing:         p.Flushing,
		LineDayIndex:     p.LineDayIndex,
		TractionPullsRed: p.TractionRed,
	}
}

// Request is the capture payload. Findings may be omitted when an image is
// attached, in which case the vision service supplies them.
type Request struct {
	PatientID   string         `json:"patientId"`
	Findings    *risk.Findings `json:"findings,omitempty"`
	EventMarker string         `json:"eventMarker,omitempty"`
	CapturedAt  time.Time      `json:"capturedAt"`
	risk.RiskSignals
}

type Result struct {
	RiskPoint      RiskPoint           `json:"riskPoint"`
	Findings       risk.Findings       `json:"findings"`
	Classification risk.Classification `json:"classification"`
	Profile        risk.Profile        `json:"profile"`
	Alerts         []alert.Alert       `json:"alerts"`
}

type TrendView struct {
	trend.View
	Analytics trend.Analytics `json:"analytics"`
}
