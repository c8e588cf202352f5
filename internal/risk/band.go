package risk

import "fmt"

// Band is a discretized severity tier derived from a continuous rate.
type Band string

const (
	BandGreen  Band = "green"
	BandYellow Band = "yellow"
	BandRed    Band = "red"
)

// ParseBand accepts the three band tokens. An empty token is read as green,
// the same as an absent signal.
func ParseBand(s string) (Band, error) {
	switch Band(s) {
	case "", BandGreen:
		return BandGreen, nil
	case BandYellow:
		return BandYellow, nil
	case BandRed:
		return BandRed, nil
	default:
		return "", fmt.Errorf("%w: unknown band %q", ErrInvalidInput, s)
	}
}

// Rank orders bands green < yellow < red. Unknown values rank with green.
func (b Band) Rank() int {
	switch b {
	case BandYellow:
		return 1
	case BandRed:
		return 2
	default:
		return 0
	}
}

func (b Band) orGreen() Band {
	if b == "" {
		return BandGreen
	}
	return b
}

// Thresholds is a banding policy: rate <= Green is green, rate <= Yellow is
// yellow, anything above is red.
type Thresholds struct {
	Green  float64
	Yellow float64
}

func (t Thresholds) Classify(rate float64) Band {
	switch {
	case rate <= t.Green:
		return BandGreen
	case rate <= t.Yellow:
		return BandYellow
	default:
		return BandRed
	}
}

// ClinicalBands and ResourceBands currently share their cut points but are
// tuned independently. Do not merge them.
var (
	ClinicalBands = Thresholds{Green: 10, Yellow: 60}
	ResourceBands = Thresholds{Green: 10, Yellow: 60}
)

// Classify maps a non-negative rate to a band using the clinical policy.
// Callers clamp negative rates upstream.
func Classify(rate float64) Band {
	return ClinicalBands.Classify(rate)
}
