package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"voxprompt/internal/domain"
	"voxprompt/internal/ports"
)

// ErrSendInFlight is returned when Send is called while a previous send
// has not resolved yet. At most one send is in flight at a time.
var ErrSendInFlight = errors.New("a send is already in flight")

// Fixed user-facing messages. Upstream error detail is logged, never shown.
const (
	msgEmptyPrompt = "Пожалуйста, введите или произнесите запрос"
	msgSendFailed  = "Ошибка при получении ответа. Пожалуйста, попробуйте снова."
)

// OrchestratorConfig controls prompt session behavior.
type OrchestratorConfig struct {
	InitialPrompt string
	ProgressTick  time.Duration
	ProgressStep  int
	// OnSend is invoked with the original prompt after a successful cycle.
	OnSend func(prompt string)
}

// PromptOrchestrator coordinates user input, the live speech transcript,
// the request lifecycle and the simulated progress feedback. It owns the
// single PromptSession exposed to the rendering layer.
type PromptOrchestrator struct {
	client ports.CompletionClient
	events ports.EventSink
	cfg    OrchestratorConfig

	mu      sync.Mutex
	session domain.PromptSession
	// manualEdit is set when the user types after listening started; it
	// suppresses transcript mirroring until the next listening span so
	// dictation never silently clobbers typed text.
	manualEdit bool
}

func NewPromptOrchestrator(client ports.CompletionClient, events ports.EventSink, cfg OrchestratorConfig) *PromptOrchestrator {
	if cfg.ProgressTick <= 0 {
		cfg.ProgressTick = 300 * time.Millisecond
	}
	if cfg.ProgressStep <= 0 {
		cfg.ProgressStep = 10
	}
	return &PromptOrchestrator{
		client: client,
		events: events,
		cfg:    cfg,
		session: domain.PromptSession{
			PromptText: cfg.InitialPrompt,
			Status:     domain.PromptStatusIdle,
		},
	}
}

// Send runs one prompt/response cycle. Validation failures resolve into
// the session state rather than propagating; only a concurrent send is
// rejected with an error.
func (o *PromptOrchestrator) Send(ctx context.Context, prompt string) error {
	o.mu.Lock()
	if o.session.Status == domain.PromptStatusSending {
		o.mu.Unlock()
		return ErrSendInFlight
	}
	o.session.PromptText = prompt

	if strings.TrimSpace(prompt) == "" {
		o.session.Status = domain.PromptStatusFailed
		o.session.ErrorMessage = msgEmptyPrompt
		snap := o.session
		o.mu.Unlock()
		o.events.PromptStateChanged(snap)
		return nil
	}

	o.session.Status = domain.PromptStatusSending
	o.session.ErrorMessage = ""
	o.session.ProgressPercent = 0
	snap := o.session
	o.mu.Unlock()

	o.events.PromptStateChanged(snap)
	o.events.ProgressChanged(0)

	sim := newProgressSimulator(o.cfg.ProgressTick, o.cfg.ProgressStep, o.applyProgress)
	sim.Start()

	message, err := o.client.Complete(ctx, prompt)

	// Stop the simulator before forcing the terminal value so 100 is
	// always the last observed progress for this cycle.
	sim.Stop()

	o.mu.Lock()
	o.session.ProgressPercent = 100
	if err != nil {
		log.Error().Err(err).Msg("chat completion failed")
		o.session.Status = domain.PromptStatusFailed
		o.session.ErrorMessage = msgSendFailed
	} else {
		o.session.Status = domain.PromptStatusSucceeded
		o.session.ErrorMessage = ""
		o.session.ResponseText = message
	}
	snap = o.session
	o.mu.Unlock()

	o.events.ProgressChanged(100)
	o.events.PromptStateChanged(snap)

	if err == nil && o.cfg.OnSend != nil {
		o.cfg.OnSend(prompt)
	}
	return nil
}

// SetPrompt records a manual edit to the prompt text.
func (o *PromptOrchestrator) SetPrompt(text string) {
	o.mu.Lock()
	o.manualEdit = true
	o.session.PromptText = text
	snap := o.session
	o.mu.Unlock()
	o.events.PromptStateChanged(snap)
}

// EditResponse writes a user edit straight into the rendered response.
func (o *PromptOrchestrator) EditResponse(text string) {
	o.mu.Lock()
	o.session.ResponseText = text
	snap := o.session
	o.mu.Unlock()
	o.events.PromptStateChanged(snap)
}

// Snapshot returns the current prompt session state.
func (o *PromptOrchestrator) Snapshot() domain.PromptSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// ListeningChanged implements CaptureSink. A new listening span re-arms
// transcript mirroring.
func (o *PromptOrchestrator) ListeningChanged(listening bool) {
	o.mu.Lock()
	if listening {
		o.manualEdit = false
	}
	o.mu.Unlock()
	o.events.ListeningChanged(listening)
}

// TranscriptChanged implements CaptureSink. The transcript overwrites the
// prompt unless the user typed since listening started.
func (o *PromptOrchestrator) TranscriptChanged(text string) {
	o.mu.Lock()
	mirror := !o.manualEdit
	if mirror {
		o.session.PromptText = text
	}
	snap := o.session
	o.mu.Unlock()

	o.events.TranscriptChanged(text)
	if mirror {
		o.events.PromptStateChanged(snap)
	}
}

// SessionError implements CaptureSink.
func (o *PromptOrchestrator) SessionError(code domain.ErrorCode, detail string) {
	o.events.SessionError(code, detail)
}

func (o *PromptOrchestrator) applyProgress(percent int) {
	o.mu.Lock()
	if o.session.Status != domain.PromptStatusSending || percent <= o.session.ProgressPercent {
		o.mu.Unlock()
		return
	}
	o.session.ProgressPercent = percent
	o.mu.Unlock()
	o.events.ProgressChanged(percent)
}
