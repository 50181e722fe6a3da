package ports

import (
	"context"
	"io"

	"voxprompt/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// RecognitionConfig describes provider-agnostic recognition settings.
// Continuous dictation with interim results and a fixed language.
type RecognitionConfig struct {
	SampleRate     int
	Channels       int
	Encoding       string
	Language       string
	InterimResults bool
	Alternatives   int
}

// RecognitionSession is an active streaming recognition session. The
// Results channel closes when the provider reports a natural end or an
// error; Wait surfaces the terminal error, if any.
type RecognitionSession interface {
	SendAudio(chunk []byte) error
	CloseSend() error
	Results() <-chan domain.RecognitionResult
	Wait() error
	Close() error
}

// RecognitionProvider starts streaming recognition sessions. Probe reports
// whether the capability is usable at all; it is consulted once, at
// initialization.
type RecognitionProvider interface {
	Probe() error
	StartStreaming(ctx context.Context, cfg RecognitionConfig) (RecognitionSession, error)
}

// CompletionClient sends a prompt to the chat-completion proxy and returns
// the generated message.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	ListeningChanged(listening bool)
	TranscriptChanged(text string)
	PromptStateChanged(session domain.PromptSession)
	ProgressChanged(percent int)
	SessionError(code domain.ErrorCode, detail string)
}
