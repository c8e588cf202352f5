package risk

import "fmt"

type AlertType string

const (
	AlertHighClabsi           AlertType = "high_clabsi"
	AlertHighVenousResistance AlertType = "high_venous_resistance"
	AlertTraction             AlertType = "traction"
	AlertDressingFailure      AlertType = "dressing_failure"
	AlertResourceShortage     AlertType = "resource_shortage"
)

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

const (
	// TractionRedPullLimit is the red pull count at which a traction alert fires.
	TractionRedPullLimit = 2

	ResourceAlertRate    = 30.0
	ResourceCriticalRate = 60.0
)

// Candidate is an alert the rules decided to raise. It has no identity or
// timestamp until a caller persists it.
type Candidate struct {
	Type              AlertType `json:"type"`
	Reason            string    `json:"reason"`
	Severity          Severity  `json:"severity"`
	RecommendedAction string    `json:"recommendedAction"`
}

// RiskSignals are the per-patient inputs of the clinical rules. Zero values
// mean "nothing observed".
type RiskSignals struct {
	ClabsiBand           Band `json:"predictiveClabsiBand"`
	VenousResistanceBand Band `json:"predictiveVenousResistanceBand"`
	TractionPullsRed     int  `json:"tractionPullsRed"`
	// TractionPullsYellow is carried for trend display; no rule reads it.
	TractionPullsYellow int  `json:"tractionPullsYellow"`
	DressingFailure     bool `json:"dressingFailure"`
}

// EvaluateRiskAlerts runs every clinical rule and returns the matches in a
// fixed order: CLABSI, venous resistance, traction, dressing failure.
func EvaluateRiskAlerts(in RiskSignals) []Candidate {
	var out []Candidate

	if band := in.ClabsiBand.orGreen(); band != BandGreen {
		action := "Increase surveillance and reinforce dressing"
		if band == BandRed {
			action = "Urgent clinician review and cultures"
		}
		out = append(out, Candidate{
			Type:              AlertHighClabsi,
			Reason:            fmt.Sprintf("Predictive CLABSI risk is %s", upper(band)),
			Severity:          severityFor(band),
			RecommendedAction: action,
		})
	}

	if band := in.VenousResistanceBand.orGreen(); band != BandGreen {
		out = append(out, Candidate{
			Type:              AlertHighVenousResistance,
			Reason:            fmt.Sprintf("Predictive venous resistance band is %s", upper(band)),
			Severity:          severityFor(band),
			RecommendedAction: "Assess line patency and evaluate for thrombosis",
		})
	}

	if in.TractionPullsRed >= TractionRedPullLimit {
		out = append(out, Candidate{
			Type:              AlertTraction,
			Reason:            fmt.Sprintf("%d red traction pulls in the last cycle", in.TractionPullsRed),
			Severity:          SeverityCritical,
			RecommendedAction: "Secure line, escalate to responsible clinician, consider sedation strategy",
		})
	}

	if in.DressingFailure {
		out = append(out, Candidate{
			Type:              AlertDressingFailure,
			Reason:            "Image analysis flagged a dressing failure",
			Severity:          SeverityWarning,
			RecommendedAction: "Replace dressing with sterile antiseptic-impregnated dressing",
		})
	}

	return out
}

// EvaluateResourceAlert raises a ward-level shortage alert once the combined
// deprivation rate exceeds 30%. It reports false when no alert is due.
func EvaluateResourceAlert(combinedRate float64) (Candidate, bool) {
	if combinedRate <= ResourceAlertRate {
		return Candidate{}, false
	}

	severity := SeverityWarning
	if combinedRate > ResourceCriticalRate {
		severity = SeverityCritical
	}

	return Candidate{
		Type:              AlertResourceShortage,
		Reason:            fmt.Sprintf("Resource deprivation at %.1f%%", combinedRate),
		Severity:          severity,
		RecommendedAction: "Notify admin and escalate procurement immediately",
	}, true
}

func severityFor(b Band) Severity {
	if b == BandRed {
		return SeverityCritical
	}
	return SeverityWarning
}

func upper(b Band) string {
	switch b {
	case BandGreen:
		return "GREEN"
	case BandYellow:
		return "YELLOW"
	case BandRed:
		return "RED"
	default:
		return string(b)
	}
}
