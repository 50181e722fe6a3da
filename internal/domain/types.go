package domain

// PromptStatus models the lifecycle of one send cycle.
type PromptStatus string

const (
	PromptStatusIdle      PromptStatus = "idle"
	PromptStatusSending   PromptStatus = "sending"
	PromptStatusSucceeded PromptStatus = "succeeded"
	PromptStatusFailed    PromptStatus = "failed"
)

// CaptureState models the speech-capture lifecycle.
type CaptureState string

const (
	CaptureStateUnsupported CaptureState = "unsupported"
	CaptureStateIdle        CaptureState = "idle"
	CaptureStateListening   CaptureState = "listening"
)

// ErrorCode identifies non-fatal and fatal backend errors.
type ErrorCode string

const (
	ErrorCodeStartup    ErrorCode = "startup"
	ErrorCodeCapture    ErrorCode = "capture"
	ErrorCodeValidation ErrorCode = "validation"
	ErrorCodeTransport  ErrorCode = "transport"
	ErrorCodeUpstream   ErrorCode = "upstream"
	ErrorCodeRateLimit  ErrorCode = "rate_limit"
)

// RecognitionAlternative is one ranked hypothesis for a speech segment.
// Alternatives arrive best-first; rank 0 is the one shown to the user.
type RecognitionAlternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

// RecognitionResult is one segment update from the recognizer. Interim
// segments are replaced in place by later updates until Final is set.
type RecognitionResult struct {
	Alternatives []RecognitionAlternative `json:"alternatives"`
	Final        bool                     `json:"final"`
}

// Best returns the top-ranked alternative's text, or "" if there is none.
func (r RecognitionResult) Best() string {
	if len(r.Alternatives) == 0 {
		return ""
	}
	return r.Alternatives[0].Transcript
}

// PromptSession is the live state of one prompt/response interaction cycle.
// ErrorMessage is non-empty exactly when Status is failed; ResponseText is
// written only on a successful cycle or by an explicit user edit.
type PromptSession struct {
	PromptText      string       `json:"promptText"`
	ResponseText    string       `json:"responseText"`
	Status          PromptStatus `json:"status"`
	ErrorMessage    string       `json:"errorMessage,omitempty"`
	ProgressPercent int          `json:"progressPercent"`
}

// SpeechSession is the live state of the speech-capture side.
type SpeechSession struct {
	Transcript string `json:"transcript"`
	Listening  bool   `json:"listening"`
	Supported  bool   `json:"supported"`
}

// Status summarizes the current runtime status for the UI.
type Status struct {
	State   CaptureState  `json:"state"`
	Prompt  PromptSession `json:"prompt"`
	Message string        `json:"message,omitempty"`
}
