package risk

// Findings is the per-feature output of the external image classifier for
// one catheter site photo.
type Findings struct {
	Discharge         Discharge `json:"discharge"`
	Redness           Redness   `json:"redness"`
	Swelling          Feature   `json:"swelling"`
	DressingLift      Feature   `json:"dressing_lift"`
	OpenWound         OpenWound `json:"open_wound"`
	OverallConfidence float64   `json:"overall_confidence"`
}

type Feature struct {
	Present bool `json:"present"`
}

type Discharge struct {
	Present bool   `json:"present"`
	Type    string `json:"type,omitempty"` // serous, purulent, bloody
}

type Redness struct {
	Present       bool    `json:"present"`
	ExtentPercent float64 `json:"extent_percent"`
}

type OpenWound struct {
	Present bool    `json:"present"`
	SizeMM  float64 `json:"size_mm"`
}

// SiteScore weights the visible site findings into a 0-100 score.
func SiteScore(f Findings) int {
	score := 0
	if f.Discharge.Present && f.Discharge.Type == "purulent" {
		score += 60
	}
	if f.Redness.Present {
		score += int(25 * clamp(f.Redness.ExtentPercent, 0, 100) / 100)
	}
	if f.Swelling.Present {
		score += 10
	}
	if f.DressingLift.Present {
		score += 5
	}
	if f.OpenWound.Present {
		score += 20
	}
	if score > 100 {
		score = 100
	}
	return score
}

// DressingFailure reports whether the findings should trip the dressing
// failure rule.
func (f Findings) DressingFailure() bool {
	return f.DressingLift.Present
}
