package constant

type CaptureState string

const (
	CaptureStateIdle      CaptureState = "IDLE"
	CaptureStateListening CaptureState = "LISTENING"
	CaptureStatePaused    CaptureState = "PAUSED"
)

func (s CaptureState) String() string {
	return string(s)
}

type CaptureMode string

const (
	CaptureModeActive  CaptureMode = "ACTIVE"
	CaptureModeAmbient CaptureMode = "AMBIENT"
)

func (m CaptureMode) String() string {
	return string(m)
}

type PauseReason string

const (
	PauseReasonUser         PauseReason = "USER_REQUESTED"
	PauseReasonInterruption PauseReason = "SYSTEM_INTERRUPTION"
)

func (r PauseReason) String() string {
	return string(r)
}

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}
