package risk

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// PatientFactorWeights are the meter points each patient factor adds.
var PatientFactorWeights = map[string]int{
	"agitation":        12,
	"age_extremes":     9,
	"comorbidities":    10,
	"immune_nutrition": 9,
}

type Window string

const (
	WindowEarly    Window = "early"
	WindowLate     Window = "late"
	WindowExtended Window = "extended"
)

type Tier string

const (
	TierLow      Tier = "low"
	TierModerate Tier = "moderate"
	TierHigh     Tier = "high"
)

// Meter cut points for the integrated risk tiers.
const (
	ModerateMeter = 35.0
	HighMeter     = 65.0
)

type ProfileInput struct {
	Findings       Findings
	Label          Label
	DwellDays      float64
	TractionRed    int
	TractionYellow int
	PatientFactors map[string]bool
	// PreviousScore is the site score of the patient's prior capture, if any.
	PreviousScore *float64
}

// Profile is the integrated CLABSI risk estimate for one capture.
type Profile struct {
	SiteScore          float64         `json:"siteScore"`
	SiteAction         string          `json:"siteAction"`
	Window             Window          `json:"riskWindow"`
	Meter              float64         `json:"riskMeter"`
	Tier               Tier            `json:"riskTier"`
	Band               Band            `json:"band"`
	VenousTraumaRisk   float64         `json:"venousTraumaRisk"`
	DwellDays          float64         `json:"dwellDays"`
	TrendDelta         float64         `json:"trendDelta"`
	PatientFactorScore int             `json:"patientFactorScore"`
	PatientFactors     map[string]bool `json:"patientFactors"`
}

// BuildProfile combines the site findings with patient factors, dwell time,
// traction events and the change since the previous capture. Up to 3 dwell
// days the early base is used alone; up to 7 days it is halved and joined
// by venous trauma and dwell risk; beyond that an extended penalty applies.
func BuildProfile(in ProfileInput) Profile {
	site := float64(SiteScore(in.Findings))
	dwell := math.Max(in.DwellDays, 0)

	p := Profile{
		SiteScore:      site,
		SiteAction:     siteAction(site, in.Label),
		DwellDays:      round2(dwell),
		PatientFactors: make(map[string]bool, len(PatientFactorWeights)),
	}
	for key, weight := range PatientFactorWeights {
		on := in.PatientFactors[key]
		p.PatientFactors[key] = on
		if on {
			p.PatientFactorScore += weight
		}
	}

	penalties := 0.0
	if in.Findings.DressingLift.Present {
		penalties += 12
	}
	if in.Findings.Discharge.Present {
		penalties += 10
	}
	if in.Findings.OpenWound.Present {
		penalties += 8
	}
	earlyBase := math.Min(100, site*0.6+float64(p.PatientFactorScore)+penalties)

	// Without yellow events the red count stands in for them.
	yellows := in.TractionYellow
	if yellows <= 0 {
		yellows = in.TractionRed
	}
	venous := math.Min(30, float64(max(yellows, 0))*5)

	dwellRisk := 0.0
	if dwell > 3 {
		dwellRisk = (dwell - 3) * 4
	}
	extended := 0.0
	if dwell > 7 {
		extended = (dwell - 7) * 6
	}

	trendDelta := 0.0
	if in.PreviousScore != nil {
		trendDelta = math.Max(0, site-*in.PreviousScore)
	}

	var meter float64
	switch {
	case dwell <= 3:
		p.Window = WindowEarly
		meter = earlyBase
	case dwell <= 7:
		p.Window = WindowLate
		meter = math.Min(100, earlyBase*0.5+venous+dwellRisk+trendDelta*0.5)
	default:
		p.Window = WindowExtended
		meter = math.Min(100, earlyBase*0.4+venous+dwellRisk+extended+trendDelta*0.5)
	}

	p.Tier, p.Band = TierLow, BandGreen
	switch {
	case meter >= HighMeter:
		p.Tier, p.Band = TierHigh, BandRed
	case meter >= ModerateMeter:
		p.Tier, p.Band = TierModerate, BandYellow
	}

	p.Meter = round1(meter)
	p.VenousTraumaRisk = round1(venous)
	p.TrendDelta = round1(trendDelta)
	return p
}

func siteAction(score float64, label Label) string {
	switch {
	case score >= 60 || label == LabelRed:
		return "Urgent clinician review and catheter assessment now"
	case score >= 30 || label == LabelYellow:
		return "Reinforce dressing, reassess within 2 hours"
	default:
		return "Continue routine surveillance and document in 12 h"
	}
}

// ParsePatientFactors reads the stored patient factor document. Booleans,
// non-zero numbers and the strings true, 1, yes and y count as set.
func ParsePatientFactors(raw []byte) (map[string]bool, error) {
	out := map[string]bool{}
	if len(raw) == 0 {
		return out, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return out, fmt.Errorf("%w: patient factors: %v", ErrInvalidInput, err)
	}
	for k, v := range doc {
		out[k] = truthy(v)
	}
	return out, nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "y":
			return true
		}
		return false
	case nil:
		return false
	default:
		return true
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
