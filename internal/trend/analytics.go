package trend

import (
	"math"

	"cathshield/internal/risk"
)

// Analytics summarizes a capture history.
type Analytics struct {
	ClabsiRate          float64 `json:"clabsiRate"`
	LineDays            int     `json:"lineDays"`
	ClabsiCases         int     `json:"clabsiCases"`
	DressingEvents      int     `json:"dressingEvents"`
	CatheterEvents      int     `json:"catheterEvents"`
	TractionAlertsTotal int     `json:"tractionAlertsTotal"`
}

// Analyze counts red-band captures per line day. Line days are the distinct
// positive day indices seen; without any, each capture counts as one day.
func Analyze(points []RiskPoint) Analytics {
	var a Analytics
	if len(points) == 0 {
		return a
	}

	days := make(map[int]struct{})
	for _, p := range points {
		if p.LineDayIndex != nil && *p.LineDayIndex > 0 {
			days[*p.LineDayIndex] = struct{}{}
		}
		if p.DressingChange {
			a.DressingEvents++
		}
		if p.CatheterChange {
			a.CatheterEvents++
		}
		a.TractionAlertsTotal += p.TractionPullsRed
		if p.Band == risk.BandRed {
			a.ClabsiCases++
		}
	}

	a.LineDays = len(days)
	if a.LineDays == 0 {
		a.LineDays = len(points)
	}
	a.ClabsiRate = math.Round(float64(a.ClabsiCases)/float64(a.LineDays)*1000) / 1000
	return a
}
