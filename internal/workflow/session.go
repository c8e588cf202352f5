package workflow

// Session is the furthest-reached workflow stage of one client session.
type Session struct {
	PatientID string `json:"patientId,omitempty"`
	Stage     Stage  `json:"stage"`
}

func NewSession() *Session {
	return &Session{Stage: StagePatient}
}

// AdvanceTo moves the session forward to target. Requests for an earlier
// stage leave the session where it is.
func (s *Session) AdvanceTo(target Stage) error {
	next, err := target.Index()
	if err != nil {
		return err
	}
	current, err := s.Stage.Index()
	if err != nil {
		return err
	}
	if next >= current {
		s.Stage = target
	}
	return nil
}

// CanAccess reports whether the session has reached the required stage.
func (s *Session) CanAccess(required Stage) (bool, error) {
	need, err := required.Index()
	if err != nil {
		return false, err
	}
	current, err := s.Stage.Index()
	if err != nil {
		return false, err
	}
	return current >= need, nil
}

// SetPatientID associates a patient without touching the stage.
func (s *Session) SetPatientID(id string) {
	s.PatientID = id
}

func (s *Session) Reset() {
	s.Stage = StagePatient
	s.PatientID = ""
}
