package bootstrap

import (
	"voxprompt/internal/audio"
	"voxprompt/internal/chatclient"
	"voxprompt/internal/config"
	"voxprompt/internal/ports"
	"voxprompt/internal/providers/deepgram"
	"voxprompt/internal/usecase"
)

// Options are the caller-supplied parts of the graph.
type Options struct {
	InitialPrompt string
	// OnSend is notified with the original prompt after a successful cycle.
	OnSend func(prompt string)
}

// Services is the assembled runtime graph.
type Services struct {
	Orchestrator *usecase.PromptOrchestrator
	Capture      *usecase.SpeechCaptureController
	Config       config.Config
}

// Build wires all backend dependencies for the current runtime.
func Build(eventSink ports.EventSink, opts Options) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	client := chatclient.New(cfg.Proxy.BaseURL, cfg.Proxy.Timeout)

	orchestrator := usecase.NewPromptOrchestrator(client, eventSink, usecase.OrchestratorConfig{
		InitialPrompt: opts.InitialPrompt,
		ProgressTick:  cfg.Progress.TickInterval,
		ProgressStep:  cfg.Progress.TickStep,
		OnSend:        opts.OnSend,
	})

	capture := usecase.NewSpeechCaptureController(
		audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand),
		deepgram.NewProvider(deepgram.Config{
			APIKey:      cfg.Recognizer.APIKey,
			APIBaseURL:  cfg.Recognizer.APIBaseURL,
			Model:       cfg.Recognizer.Model,
			SmartFormat: true,
		}),
		orchestrator,
		usecase.CaptureConfig{
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			Recognition: ports.RecognitionConfig{
				SampleRate:     cfg.Audio.SampleRate,
				Channels:       cfg.Audio.Channels,
				Encoding:       "linear16",
				Language:       cfg.Recognizer.Language,
				InterimResults: true,
				Alternatives:   cfg.Recognizer.Alternatives,
			},
			ChunkSize:    cfg.Capture.ChunkSize,
			GuardDelay:   cfg.Capture.GuardDelay,
			DrainTimeout: cfg.Capture.DrainTimeout,
		},
	)

	return Services{Orchestrator: orchestrator, Capture: capture, Config: cfg}, nil
}
