package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyLabel(t *testing.T) {
	tests := []struct {
		name     string
		findings Findings
		want     Label
	}{
		{"purulent discharge", Findings{Discharge: Discharge{Present: true, Type: "purulent"}, OverallConfidence: 0.9}, LabelRed},
		{"redness with swelling", Findings{Redness: Redness{Present: true, ExtentPercent: 40}, Swelling: Feature{Present: true}, OverallConfidence: 0.9}, LabelYellow},
		{"lift with redness", Findings{DressingLift: Feature{Present: true}, Redness: Redness{Present: true, ExtentPercent: 5}, OverallConfidence: 0.9}, LabelYellow},
		{"large open wound", Findings{OpenWound: OpenWound{Present: true, SizeMM: 12}, OverallConfidence: 0.9}, LabelYellow},
		{"small wound scored yellow", Findings{OpenWound: OpenWound{Present: true, SizeMM: 5}, Swelling: Feature{Present: true}, OverallConfidence: 0.9}, LabelYellow},
		{"low confidence", Findings{OverallConfidence: 0.3}, LabelUncertain},
		{"low confidence wins over score", Findings{OpenWound: OpenWound{Present: true, SizeMM: 5}, Swelling: Feature{Present: true}, OverallConfidence: 0.2}, LabelUncertain},
		{"clean site", Findings{OverallConfidence: 0.9}, LabelGreen},
		{"redness alone", Findings{Redness: Redness{Present: true, ExtentPercent: 20}, OverallConfidence: 0.5}, LabelGreen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ClassifyLabel(tt.findings)
			assert.Equal(t, tt.want, c.Label)
			assert.Equal(t, SiteScore(tt.findings), c.SiteScore)
			assert.NotEmpty(t, c.Explanation)
		})
	}
}

func TestBuildProfile_Windows(t *testing.T) {
	tests := []struct {
		dwell  float64
		window Window
		meter  float64
	}{
		{0, WindowEarly, 0},
		{3, WindowEarly, 0},
		{3.5, WindowLate, 2},
		{7, WindowLate, 16},
		{7.5, WindowExtended, 21},
		{10, WindowExtended, 46},
	}
	for _, tt := range tests {
		p := BuildProfile(ProfileInput{DwellDays: tt.dwell})
		assert.Equal(t, tt.window, p.Window, "dwell %v", tt.dwell)
		assert.Equal(t, tt.meter, p.Meter, "dwell %v", tt.dwell)
	}
}

func TestBuildProfile_PatientFactorWeights(t *testing.T) {
	tests := []struct {
		factor string
		weight int
	}{
		{"agitation", 12},
		{"age_extremes", 9},
		{"comorbidities", 10},
		{"immune_nutrition", 9},
	}
	for _, tt := range tests {
		p := BuildProfile(ProfileInput{PatientFactors: map[string]bool{tt.factor: true, "unlisted": true}})
		assert.Equal(t, tt.weight, p.PatientFactorScore, tt.factor)
		assert.Equal(t, float64(tt.weight), p.Meter, tt.factor)
		assert.True(t, p.PatientFactors[tt.factor])
		assert.Len(t, p.PatientFactors, 4)
	}

	all := BuildProfile(ProfileInput{PatientFactors: map[string]bool{
		"agitation": true, "age_extremes": true, "comorbidities": true, "immune_nutrition": true,
	}})
	assert.Equal(t, 40, all.PatientFactorScore)
	assert.Equal(t, TierModerate, all.Tier)
}

func TestBuildProfile_TierBoundaries(t *testing.T) {
	tests := []struct {
		name string
		in   ProfileInput
		tier Tier
		band Band
	}{
		{"just below moderate", ProfileInput{DwellDays: 4, TractionYellow: 6}, TierLow, BandGreen},
		{"moderate at 35", ProfileInput{DwellDays: 4.25, TractionYellow: 6}, TierModerate, BandYellow},
		{"just below high", ProfileInput{DwellDays: 10, TractionYellow: 3, PatientFactors: map[string]bool{"age_extremes": true}}, TierModerate, BandYellow},
		{"high at 65", ProfileInput{DwellDays: 10, TractionYellow: 3, PatientFactors: map[string]bool{"comorbidities": true}}, TierHigh, BandRed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildProfile(tt.in)
			assert.Equal(t, tt.tier, p.Tier, "meter %v", p.Meter)
			assert.Equal(t, tt.band, p.Band)
		})
	}
}

func TestBuildProfile_Components(t *testing.T) {
	swelling := Findings{Swelling: Feature{Present: true}}

	prev := 4.0
	p := BuildProfile(ProfileInput{Findings: swelling, DwellDays: 5, PreviousScore: &prev})
	assert.Equal(t, 6.0, p.TrendDelta)
	assert.Equal(t, 14.0, p.Meter)

	higher := 50.0
	p = BuildProfile(ProfileInput{Findings: swelling, DwellDays: 5, PreviousScore: &higher})
	assert.Zero(t, p.TrendDelta)

	p = BuildProfile(ProfileInput{TractionRed: 3})
	assert.Equal(t, 15.0, p.VenousTraumaRisk)
	p = BuildProfile(ProfileInput{TractionYellow: 10, TractionRed: 1})
	assert.Equal(t, 30.0, p.VenousTraumaRisk)

	worst := BuildProfile(ProfileInput{
		Findings: Findings{
			Discharge:    Discharge{Present: true, Type: "purulent"},
			Swelling:     Feature{Present: true},
			DressingLift: Feature{Present: true},
			OpenWound:    OpenWound{Present: true},
		},
		PatientFactors: map[string]bool{"agitation": true, "comorbidities": true},
	})
	assert.Equal(t, 100.0, worst.Meter)
	assert.Equal(t, TierHigh, worst.Tier)
	assert.Equal(t, "Urgent clinician review and catheter assessment now", worst.SiteAction)
}

func TestBuildProfile_SiteAction(t *testing.T) {
	assert.Equal(t, "Continue routine surveillance and document in 12 h",
		BuildProfile(ProfileInput{Label: LabelGreen}).SiteAction)
	assert.Equal(t, "Reinforce dressing, reassess within 2 hours",
		BuildProfile(ProfileInput{Label: LabelYellow}).SiteAction)
	assert.Equal(t, "Urgent clinician review and catheter assessment now",
		BuildProfile(ProfileInput{Label: LabelRed}).SiteAction)
	assert.Equal(t, "Reinforce dressing, reassess within 2 hours",
		BuildProfile(ProfileInput{Findings: Findings{OpenWound: OpenWound{Present: true}, Swelling: Feature{Present: true}}}).SiteAction)
}

func TestParsePatientFactors(t *testing.T) {
	f, err := ParsePatientFactors([]byte(`{"agitation":"Yes","age_extremes":1,"comorbidities":false,"immune_nutrition":"no"}`))
	require.NoError(t, err)
	assert.True(t, f["agitation"])
	assert.True(t, f["age_extremes"])
	assert.False(t, f["comorbidities"])
	assert.False(t, f["immune_nutrition"])

	f, err = ParsePatientFactors(nil)
	require.NoError(t, err)
	assert.Empty(t, f)

	_, err = ParsePatientFactors([]byte(`[1,2`))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
