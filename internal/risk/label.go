package risk

// Label is the photo-level verdict for one site image.
type Label string

const (
	LabelGreen     Label = "Green"
	LabelYellow    Label = "Yellow"
	LabelRed       Label = "Red"
	LabelUncertain Label = "Uncertain"
)

// MinConfidence is the classifier confidence below which an otherwise clean
// photo is reported as uncertain.
const MinConfidence = 0.5

type Classification struct {
	Label             Label   `json:"label"`
	SiteScore         int     `json:"siteScore"`
	Explanation       string  `json:"explanation"`
	OverallConfidence float64 `json:"overallConfidence"`
}

// ClassifyLabel applies the site rules in priority order. When no rule fires
// the site score decides: 60 and up is red, 25 and up is yellow.
func ClassifyLabel(f Findings) Classification {
	c := Classification{
		Label:             LabelGreen,
		SiteScore:         SiteScore(f),
		Explanation:       "No concerning signs detected.",
		OverallConfidence: f.OverallConfidence,
	}

	switch {
	case f.Discharge.Present && f.Discharge.Type == "purulent":
		c.Label = LabelRed
		c.Explanation = "Purulent discharge detected, urgent clinician review recommended."
	case f.Redness.Present && f.Redness.ExtentPercent > 30 && f.Swelling.Present:
		c.Label = LabelYellow
		c.Explanation = "Widespread redness with swelling, escalate for clinician review."
	case f.DressingLift.Present && (f.Discharge.Present || f.Redness.Present):
		c.Label = LabelYellow
		c.Explanation = "Dressing lift with local signs, check dressing and review clinically."
	case f.OpenWound.Present && f.OpenWound.SizeMM > 10:
		c.Label = LabelYellow
		c.Explanation = "Open wound over 10mm needs clinical attention."
	case f.OverallConfidence < MinConfidence:
		c.Label = LabelUncertain
		c.Explanation = "Low confidence, request a clearer photo."
	}

	if c.Label == LabelGreen {
		switch {
		case c.SiteScore >= 60:
			c.Label = LabelRed
			c.Explanation = "Risk score high based on features, urgent review."
		case c.SiteScore >= 25:
			c.Label = LabelYellow
			c.Explanation = "Moderate risk score, clinician review advised."
		}
	}
	return c
}
