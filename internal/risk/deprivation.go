package risk

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned for inputs the engine refuses to default,
// such as a non-positive patient count.
var ErrInvalidInput = errors.New("invalid input")

// Deprivation holds the supply deficit rates for one ward check. All rates
// are percentages in [0,100] rounded to two decimals.
type Deprivation struct {
	DressingsDeficitRate float64 `json:"dressingsDeficitRate"`
	CathetersDeficitRate float64 `json:"cathetersDeficitRate"`
	CombinedRate         float64 `json:"combinedRate"`
	Band                 Band    `json:"band"`
}

// ComputeDeprivation derives dressing and catheter deficit rates for the
// patients needing a line. CombinedRate is always the plain mean of the two.
func ComputeDeprivation(patients, dressings, catheters int) (Deprivation, error) {
	if patients <= 0 {
		return Deprivation{}, fmt.Errorf("%w: patients count must be positive, got %d", ErrInvalidInput, patients)
	}

	ddr := round2(deficitRate(patients, dressings))
	cdr := round2(deficitRate(patients, catheters))
	combined := round2((ddr + cdr) / 2)

	return Deprivation{
		DressingsDeficitRate: ddr,
		CathetersDeficitRate: cdr,
		CombinedRate:         combined,
		Band:                 ResourceBands.Classify(combined),
	}, nil
}

func deficitRate(needed, available int) float64 {
	if needed <= available {
		return 0
	}
	rate := float64(needed-available) / float64(needed) * 100
	return clamp(rate, 0, 100)
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
