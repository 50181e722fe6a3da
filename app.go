package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"voxprompt/internal/bootstrap"
	"voxprompt/internal/config"
	"voxprompt/internal/domain"
	"voxprompt/internal/usecase"
)

const (
	eventListening  = "voxprompt:listening"
	eventTranscript = "voxprompt:transcript"
	eventPrompt     = "voxprompt:prompt"
	eventProgress   = "voxprompt:progress"
	eventSent       = "voxprompt:sent"
	eventError      = "voxprompt:error"
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	orchestrator *usecase.PromptOrchestrator
	capture      *usecase.SpeechCaptureController
	cfg          config.Config
	bootErr      error
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a, bootstrap.Options{
		OnSend: a.promptSent,
	})
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.orchestrator = services.Orchestrator
	a.capture = services.Capture
}

func (a *App) shutdown(ctx context.Context) {
	if a.capture != nil {
		_ = a.capture.Close()
	}
}

// StartListening begins a dictation span.
func (a *App) StartListening() (domain.SpeechSession, error) {
	if err := a.requireReady(); err != nil {
		return domain.SpeechSession{}, err
	}
	if err := a.capture.StartListening(a.ctx); err != nil {
		if !errors.Is(err, usecase.ErrSpeechUnsupported) {
			a.SessionError(domain.ErrorCodeCapture, err.Error())
		}
		return a.capture.Snapshot(), err
	}
	return a.capture.Snapshot(), nil
}

// StopListening ends the current dictation span.
func (a *App) StopListening() (domain.SpeechSession, error) {
	if err := a.requireReady(); err != nil {
		return domain.SpeechSession{}, err
	}
	if err := a.capture.StopListening(); err != nil && !errors.Is(err, usecase.ErrNotListening) {
		a.SessionError(domain.ErrorCodeCapture, err.Error())
		return a.capture.Snapshot(), err
	}
	return a.capture.Snapshot(), nil
}

// SendPrompt runs one prompt/response cycle with the given prompt text.
func (a *App) SendPrompt(prompt string) (domain.PromptSession, error) {
	if err := a.requireReady(); err != nil {
		return domain.PromptSession{}, err
	}
	if err := a.orchestrator.Send(a.ctx, prompt); err != nil {
		return a.orchestrator.Snapshot(), err
	}
	return a.orchestrator.Snapshot(), nil
}

// SetPrompt records a manual edit of the prompt text.
func (a *App) SetPrompt(text string) {
	if a.orchestrator == nil {
		return
	}
	a.orchestrator.SetPrompt(text)
}

// EditResponse writes a user edit of the rendered response.
func (a *App) EditResponse(text string) {
	if a.orchestrator == nil {
		return
	}
	a.orchestrator.EditResponse(text)
}

// GetSession returns the live prompt session for display.
func (a *App) GetSession() domain.PromptSession {
	if a.orchestrator == nil {
		return domain.PromptSession{Status: domain.PromptStatusIdle}
	}
	return a.orchestrator.Snapshot()
}

// GetSpeechSession returns the live speech session for display.
func (a *App) GetSpeechSession() domain.SpeechSession {
	if a.capture == nil {
		return domain.SpeechSession{}
	}
	return a.capture.Snapshot()
}

// GetStatus returns a combined runtime summary for the UI.
func (a *App) GetStatus() domain.Status {
	speech := a.GetSpeechSession()

	state := domain.CaptureStateUnsupported
	switch {
	case speech.Listening:
		state = domain.CaptureStateListening
	case speech.Supported:
		state = domain.CaptureStateIdle
	}

	status := domain.Status{
		State:  state,
		Prompt: a.GetSession(),
	}
	if a.bootErr != nil {
		status.Message = a.bootErr.Error()
	}
	return status
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	return map[string]string{
		"proxyURL":   a.cfg.Proxy.BaseURL,
		"recognizer": "Deepgram",
		"model":      a.cfg.Recognizer.Model,
		"language":   a.cfg.Recognizer.Language,
		"audioInput": a.cfg.Audio.InputDevice,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.orchestrator == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

func (a *App) promptSent(prompt string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventSent, map[string]string{"prompt": prompt})
}

// ListeningChanged emits the listening indicator state to the frontend.
func (a *App) ListeningChanged(listening bool) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventListening, map[string]bool{"listening": listening})
}

// TranscriptChanged emits the live transcript.
func (a *App) TranscriptChanged(text string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventTranscript, map[string]string{"text": text})
}

// PromptStateChanged emits the full prompt session state.
func (a *App) PromptStateChanged(session domain.PromptSession) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventPrompt, session)
}

// ProgressChanged emits send-progress updates for the loader.
func (a *App) ProgressChanged(percent int) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventProgress, map[string]int{"percent": percent})
}

// SessionError emits backend errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeCapture:
		return "Speech recognition error"
	case domain.ErrorCodeValidation:
		return "Invalid prompt"
	case domain.ErrorCodeTransport:
		return "Chat proxy unreachable"
	case domain.ErrorCodeUpstream:
		return "Chat completion failed"
	case domain.ErrorCodeRateLimit:
		return "Rate limit exceeded"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}
