package trend

import (
	"math"
	"time"
)

// Dwell is the elapsed line time at a given instant. It is never stored.
type Dwell struct {
	Hours        float64 `json:"dwellHours"`
	LineDayIndex *int    `json:"lineDayIndex,omitempty"`
}

func ComputeDwell(insertion, now time.Time) Dwell {
	hours := math.Max(0, float64(now.Sub(insertion).Milliseconds())/3600000)
	d := Dwell{Hours: hours}
	if hours > 0 {
		day := int(math.Ceil(hours / 24))
		d.LineDayIndex = &day
	}
	return d
}
