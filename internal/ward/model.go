package ward

import (
	"time"

	"github.com/google/uuid"

	"cathshield/internal/trend"
)

// Metric is one dated CLABSI rate for a ward, per 1000 line days.
type Metric struct {
	ID          uuid.UUID `json:"id"`
	WardID      string    `json:"wardId"`
	Date        time.Time `json:"date"`
	DerivedRate float64   `json:"derivedRate"`
	LineDays    int       `json:"lineDays"`
	ClabsiCases int       `json:"clabsiCases"`
}

type RecordRequest struct {
	WardID      string    `json:"wardId"`
	Date        time.Time `json:"date"`
	LineDays    int       `json:"lineDays"`
	ClabsiCases int       `json:"clabsiCases"`
}

type Overview struct {
	Metrics []Metric `json:"metrics"`
	Delta   float64  `json:"delta"`
}

func snapshots(ms []Metric) []trend.WardMetricSnapshot {
	out := make([]trend.WardMetricSnapshot, len(ms))
	for i, m := range ms {
		out[i] = trend.WardMetricSnapshot{Date: m.Date, DerivedRate: m.DerivedRate}
	}
	return out
}
