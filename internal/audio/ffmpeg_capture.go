package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"voxprompt/internal/ports"
)

const (
	// startupGrace is how long ffmpeg must survive before the capture
	// counts as started.
	startupGrace = 250 * time.Millisecond
	// stopGrace is how long Stop waits for an interrupted ffmpeg to exit
	// before killing it.
	stopGrace = 1200 * time.Millisecond
)

// FFMPEGCapture records microphone audio with ffmpeg as raw PCM in the
// format the streaming recognizer expects (signed 16-bit little-endian,
// the "linear16" encoding).
type FFMPEGCapture struct {
	command string
}

func NewFFMPEGCapture(command string) *FFMPEGCapture {
	if command == "" {
		command = "ffmpeg"
	}
	return &FFMPEGCapture{command: command}
}

// recorderArgs builds the ffmpeg invocation for one capture session. The
// output side is fixed to s16le on stdout so the byte stream can be fed
// to the recognizer unmodified.
func recorderArgs(cfg ports.AudioConfig) []string {
	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-f", "s16le",
		"-",
	}
}

func applyDefaults(cfg ports.AudioConfig) ports.AudioConfig {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}
	return cfg
}

func (c *FFMPEGCapture) Start(ctx context.Context, cfg ports.AudioConfig) (ports.AudioSession, error) {
	cfg = applyDefaults(cfg)

	cmd := exec.CommandContext(ctx, c.command, recorderArgs(cfg)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create recorder stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start recorder %q: %w", c.command, err)
	}

	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
		close(exited)
	}()

	// A recorder that dies immediately (bad device, bad input format)
	// must fail Start instead of producing an empty session.
	select {
	case err := <-exited:
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = "no diagnostic output"
		}
		if err != nil {
			return nil, fmt.Errorf("recorder exited before capture started: %w: %s", err, detail)
		}
		return nil, fmt.Errorf("recorder exited before capture started: %s", detail)
	case <-time.After(startupGrace):
	}

	return &recorderSession{
		stdout:  stdout,
		stderr:  &stderr,
		process: cmd.Process,
		exited:  exited,
	}, nil
}

// recorderSession is one live ffmpeg capture. Read returns the raw PCM
// stream; Stop interrupts the process and reaps it.
type recorderSession struct {
	stdout io.ReadCloser
	stderr *bytes.Buffer

	process *os.Process
	exited  <-chan error

	stopOnce sync.Once
	stopErr  error
}

func (s *recorderSession) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

func (s *recorderSession) Close() error {
	return s.Stop()
}

func (s *recorderSession) Stop() error {
	s.stopOnce.Do(func() {
		s.stopErr = s.shutdown()

		if detail := strings.TrimSpace(s.stderr.String()); detail != "" {
			log.Debug().Str("stderr", detail).Msg("recorder diagnostics")
			if s.stopErr != nil {
				s.stopErr = fmt.Errorf("%w: %s", s.stopErr, detail)
			}
		}
	})
	return s.stopErr
}

func (s *recorderSession) shutdown() error {
	if s.process != nil {
		_ = s.process.Signal(os.Interrupt)
	}

	var waitErr error
	select {
	case err := <-s.exited:
		waitErr = err
	case <-time.After(stopGrace):
		if s.process != nil {
			_ = s.process.Kill()
		}
		waitErr = <-s.exited
	}
	// ffmpeg reports a non-zero exit for an interrupt-driven stop; that
	// is the expected way to end a capture, not a failure.
	waitErr = ignoreExitStatus(waitErr)

	if closeErr := s.stdout.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) && waitErr == nil {
		waitErr = closeErr
	}
	return waitErr
}

func ignoreExitStatus(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}
