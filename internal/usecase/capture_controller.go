package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"voxprompt/internal/domain"
	"voxprompt/internal/ports"
)

var (
	ErrSpeechUnsupported = errors.New("speech recognition is not supported in this environment")
	ErrNotListening      = errors.New("no active listening session")
)

// CaptureSink receives speech-capture events. The orchestrator implements
// it to mirror the live transcript into the prompt.
type CaptureSink interface {
	ListeningChanged(listening bool)
	TranscriptChanged(text string)
	SessionError(code domain.ErrorCode, detail string)
}

// CaptureConfig controls the capture session lifecycle.
type CaptureConfig struct {
	Audio       ports.AudioConfig
	Recognition ports.RecognitionConfig
	ChunkSize   int
	GuardDelay  time.Duration
	// DrainTimeout bounds how long a stop waits for the recognizer's
	// close handshake before forcing the stream down.
	DrainTimeout time.Duration
}

// SpeechCaptureController exposes continuous interim-results speech
// recognition as a start/stop state machine with a live transcript.
// A capability probe runs once at construction; if it fails the
// controller stays unsupported for its whole lifetime.
type SpeechCaptureController struct {
	audio    ports.AudioCapture
	provider ports.RecognitionProvider
	sink     CaptureSink
	cfg      CaptureConfig

	supported bool

	mu         sync.Mutex
	listening  bool
	transcript string
	current    *activeCapture
}

func NewSpeechCaptureController(
	audio ports.AudioCapture,
	provider ports.RecognitionProvider,
	sink CaptureSink,
	cfg CaptureConfig,
) *SpeechCaptureController {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if cfg.GuardDelay <= 0 {
		cfg.GuardDelay = 100 * time.Millisecond
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 4 * time.Second
	}

	c := &SpeechCaptureController{
		audio:    audio,
		provider: provider,
		sink:     sink,
		cfg:      cfg,
	}

	if err := provider.Probe(); err != nil {
		log.Warn().Err(err).Msg("speech recognition capability unavailable")
	} else {
		c.supported = true
	}
	return c
}

// Supported reports the result of the one-time capability probe.
func (c *SpeechCaptureController) Supported() bool {
	return c.supported
}

// StartListening clears the transcript, forces a clean session boundary
// (stop, short guard delay, start) and re-arms the recognizer.
func (c *SpeechCaptureController) StartListening(ctx context.Context) error {
	if !c.supported {
		return ErrSpeechUnsupported
	}

	var previous *activeCapture

	c.mu.Lock()
	if c.current != nil {
		previous = c.current
		c.current = nil
	}
	c.transcript = ""
	c.listening = false
	c.mu.Unlock()

	c.sink.TranscriptChanged("")

	if previous != nil {
		c.releaseCapture(previous)
	}

	// Guard delay between stop and start so the recognizer sees a clean
	// session boundary.
	select {
	case <-time.After(c.cfg.GuardDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	stream, err := c.provider.StartStreaming(sessionCtx, c.cfg.Recognition)
	if err != nil {
		cancel()
		return err
	}

	audioSession, err := c.audio.Start(sessionCtx, c.cfg.Audio)
	if err != nil {
		_ = stream.Close()
		cancel()
		return err
	}

	active := &activeCapture{
		cancel:      cancel,
		audio:       audioSession,
		stream:      stream,
		aggregator:  newTranscriptAggregator(),
		resultsDone: make(chan struct{}),
		audioDone:   make(chan struct{}),
	}

	c.mu.Lock()
	c.current = active
	c.listening = true
	c.mu.Unlock()

	go c.consumeResults(active)
	go pumpAudioChunks(active.audio, active.stream, c.cfg.ChunkSize, c.sink, active.audioDone)

	c.sink.ListeningChanged(true)
	return nil
}

// StopListening ends the active span. The accumulated transcript stays
// visible until the next span starts.
func (c *SpeechCaptureController) StopListening() error {
	c.mu.Lock()
	active := c.current
	c.current = nil
	wasListening := c.listening
	c.listening = false
	c.mu.Unlock()

	if active == nil {
		if wasListening {
			c.sink.ListeningChanged(false)
		}
		return ErrNotListening
	}

	c.releaseCapture(active)

	c.sink.ListeningChanged(false)
	return nil
}

// Snapshot returns the current speech session state.
func (c *SpeechCaptureController) Snapshot() domain.SpeechSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.SpeechSession{
		Transcript: c.transcript,
		Listening:  c.listening,
		Supported:  c.supported,
	}
}

// Close releases the recognition capability on session teardown.
func (c *SpeechCaptureController) Close() error {
	err := c.StopListening()
	if errors.Is(err, ErrNotListening) {
		return nil
	}
	return err
}

// consumeResults drains recognition results for one span. The channel
// closing covers both the provider's natural end event and its error
// path; either way the only observable effect is listening flipping off.
func (c *SpeechCaptureController) consumeResults(active *activeCapture) {
	defer close(active.resultsDone)

	for result := range active.stream.Results() {
		active.aggregator.Add(result)
		text := active.aggregator.Text()

		c.mu.Lock()
		stale := c.current != active
		if !stale {
			c.transcript = text
		}
		c.mu.Unlock()
		if stale {
			return
		}
		c.sink.TranscriptChanged(text)
	}

	if err := active.stream.Wait(); err != nil {
		c.mu.Lock()
		current := c.current == active
		c.mu.Unlock()
		// An explicitly stopped or replaced span may end with teardown
		// noise; only an error on the live span is surfaced.
		if current {
			log.Error().Err(err).Msg("speech recognition error")
			c.sink.SessionError(domain.ErrorCodeCapture, err.Error())
		}
	}

	c.mu.Lock()
	implicitStop := c.current == active
	if implicitStop {
		c.current = nil
		c.listening = false
	}
	c.mu.Unlock()

	if implicitStop {
		_ = active.audio.Stop()
		active.cancel()
		c.sink.ListeningChanged(false)
	}
}

// releaseCapture tears one span down in order: stop feeding audio,
// half-close the stream, let the recognizer finish its close handshake,
// then force whatever is left. A stop must read as a clean transition,
// not a recognition failure.
func (c *SpeechCaptureController) releaseCapture(active *activeCapture) {
	_ = active.audio.Stop()
	_ = active.stream.CloseSend()
	if err := waitForStream(active.stream, c.cfg.DrainTimeout); err != nil {
		log.Debug().Err(err).Msg("recognition stream did not end cleanly")
	}
	active.cancel()
	_ = active.stream.Close()
	active.waitDone()
}
