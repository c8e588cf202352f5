package workflow

import (
	"errors"
	"fmt"
)

// ErrInvalidStage is returned for a stage token outside the closed set.
var ErrInvalidStage = errors.New("invalid workflow stage")

type Stage string

const (
	StagePatient   Stage = "patient"
	StageConsent   Stage = "consent"
	StageCapture   Stage = "capture"
	StageDashboard Stage = "dashboard"
	StageAlerts    Stage = "alerts"
	StageWard      Stage = "ward"
	StageResource  Stage = "resource"
)

var stageOrder = []Stage{
	StagePatient,
	StageConsent,
	StageCapture,
	StageDashboard,
	StageAlerts,
	StageWard,
	StageResource,
}

// Stages returns the stages in workflow order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// ParseStage validates a stage token.
func ParseStage(s string) (Stage, error) {
	stage := Stage(s)
	if _, err := stage.Index(); err != nil {
		return "", err
	}
	return stage, nil
}

// Index is the position of the stage in the workflow order.
func (s Stage) Index() (int, error) {
	for i, st := range stageOrder {
		if st == s {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrInvalidStage, string(s))
}
