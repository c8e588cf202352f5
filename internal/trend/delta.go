// Package trend derives display series and period-over-period figures from
// persisted observations. Everything here is a pure view over its inputs.
package trend

import "time"

// WardMetricSnapshot is one dated ward rate.
type WardMetricSnapshot struct {
	Date        time.Time `json:"date"`
	DerivedRate float64   `json:"derivedRate"`
}

// ComputeDelta returns the percentage change from the oldest to the latest
// snapshot. Snapshots are ordered most-recent-first. A zero baseline yields 0.
func ComputeDelta(snapshots []WardMetricSnapshot) float64 {
	if len(snapshots) == 0 {
		return 0
	}
	latest := snapshots[0]
	oldest := snapshots[len(snapshots)-1]
	if oldest.DerivedRate == 0 {
		return 0
	}
	return (latest.DerivedRate - oldest.DerivedRate) / oldest.DerivedRate * 100
}
