package trend

import (
	"iter"
	"time"

	"cathshield/internal/risk"
)

const (
	ChartWidth  = 320.0
	ChartHeight = 160.0

	// ScoreFloor keeps a lone low score from filling the chart height.
	ScoreFloor = 10.0

	EmptyMessage = "Trend data will appear after the first capture."
)

// RiskPoint is one scored observation. Points arrive in ascending time order.
type RiskPoint struct {
	Timestamp        time.Time `json:"timestamp"`
	Score            float64   `json:"score"`
	Band             risk.Band `json:"band"`
	DressingChange   bool      `json:"dressingChange,omitempty"`
	CatheterChange   bool      `json:"catheterChange,omitempty"`
	Flushing         bool      `json:"flushing,omitempty"`
	LineDayIndex     *int      `json:"lineDayIndex,omitempty"`
	TractionPullsRed int       `json:"tractionPullsRed,omitempty"`
}

type EventFlags struct {
	DressingChange bool `json:"dressingChange"`
	CatheterChange bool `json:"catheterChange"`
	Flushing       bool `json:"flushing"`
}

// PlotPoint is a chart coordinate in SVG space (y grows downward).
type PlotPoint struct {
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Band   risk.Band  `json:"band"`
	Events EventFlags `json:"events"`
}

// Series is a projection of risk points onto the chart. Coordinates are
// computed on iteration, and the series can be ranged over any number of times.
type Series struct {
	points []RiskPoint
}

func ProjectRiskSeries(points []RiskPoint) Series {
	return Series{points: points}
}

// Empty reports the "no data yet" state.
func (s Series) Empty() bool {
	return len(s.points) == 0
}

func (s Series) Len() int {
	return len(s.points)
}

func (s Series) All() iter.Seq[PlotPoint] {
	return func(yield func(PlotPoint) bool) {
		if len(s.points) == 0 {
			return
		}

		maxScore := ScoreFloor
		for _, p := range s.points {
			if p.Score > maxScore {
				maxScore = p.Score
			}
		}
		step := ChartWidth / float64(max(len(s.points)-1, 1))

		for i, p := range s.points {
			pt := PlotPoint{
				X:    float64(i) * step,
				Y:    ChartHeight - p.Score/maxScore*ChartHeight,
				Band: p.Band,
				Events: EventFlags{
					DressingChange: p.DressingChange,
					CatheterChange: p.CatheterChange,
					Flushing:       p.Flushing,
				},
			}
			if !yield(pt) {
				return
			}
		}
	}
}

// View is the serializable form of a series.
type View struct {
	State   string      `json:"state"`
	Message string      `json:"message,omitempty"`
	Width   float64     `json:"width"`
	Height  float64     `json:"height"`
	Points  []PlotPoint `json:"points"`
}

func (s Series) View() View {
	v := View{Width: ChartWidth, Height: ChartHeight, Points: []PlotPoint{}}
	if s.Empty() {
		v.State = "empty"
		v.Message = EmptyMessage
		return v
	}
	v.State = "ready"
	for p := range s.All() {
		v.Points = append(v.Points, p)
	}
	return v
}
