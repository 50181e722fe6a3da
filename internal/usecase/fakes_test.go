package usecase

import (
	"context"
	"errors"
	"io"
	"sync"

	"voxprompt/internal/domain"
	"voxprompt/internal/ports"
)

type fakeAudioSession struct {
	mu     sync.Mutex
	chunks [][]byte

	stopOnce sync.Once
	stopped  chan struct{}
}

func newFakeAudioSession(chunks ...[]byte) *fakeAudioSession {
	return &fakeAudioSession{chunks: chunks, stopped: make(chan struct{})}
}

func (s *fakeAudioSession) Read(p []byte) (int, error) {
	s.mu.Lock()
	if len(s.chunks) > 0 {
		chunk := s.chunks[0]
		s.chunks = s.chunks[1:]
		s.mu.Unlock()
		return copy(p, chunk), nil
	}
	s.mu.Unlock()

	<-s.stopped
	return 0, io.EOF
}

func (s *fakeAudioSession) Stop() error {
	s.stopOnce.Do(func() { close(s.stopped) })
	return nil
}

func (s *fakeAudioSession) Close() error {
	return s.Stop()
}

type fakeAudioCapture struct {
	mu       sync.Mutex
	sessions []ports.AudioSession
}

func (c *fakeAudioCapture) Start(ctx context.Context, cfg ports.AudioConfig) (ports.AudioSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sessions) == 0 {
		return nil, errors.New("no fake audio session configured")
	}
	session := c.sessions[0]
	c.sessions = c.sessions[1:]
	return session, nil
}

type fakeRecognitionSession struct {
	mu      sync.Mutex
	results chan domain.RecognitionResult
	waitErr error
	sent    [][]byte

	// endOnCloseSend mimics a provider that finishes its close handshake
	// after the audio side is half-closed.
	endOnCloseSend bool
	// abruptCloseErr mimics a torn-down connection when the session is
	// forced closed before it ended on its own.
	abruptCloseErr error

	closeOnce sync.Once
}

func newFakeRecognitionSession() *fakeRecognitionSession {
	return &fakeRecognitionSession{results: make(chan domain.RecognitionResult, 16)}
}

func (s *fakeRecognitionSession) SendAudio(chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, append([]byte(nil), chunk...))
	return nil
}

func (s *fakeRecognitionSession) CloseSend() error {
	s.mu.Lock()
	graceful := s.endOnCloseSend
	s.mu.Unlock()
	if graceful {
		s.end()
	}
	return nil
}

func (s *fakeRecognitionSession) Results() <-chan domain.RecognitionResult {
	return s.results
}

func (s *fakeRecognitionSession) Wait() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waitErr
}

func (s *fakeRecognitionSession) Close() error {
	s.mu.Lock()
	if s.abruptCloseErr != nil && s.waitErr == nil {
		s.waitErr = s.abruptCloseErr
	}
	s.mu.Unlock()
	s.end()
	return nil
}

func (s *fakeRecognitionSession) emit(result domain.RecognitionResult) {
	s.results <- result
}

// end simulates the provider's natural end event.
func (s *fakeRecognitionSession) end() {
	s.closeOnce.Do(func() { close(s.results) })
}

// fail simulates a capability-reported error ending the session.
func (s *fakeRecognitionSession) fail(err error) {
	s.mu.Lock()
	s.waitErr = err
	s.mu.Unlock()
	s.end()
}

type fakeRecognitionProvider struct {
	mu       sync.Mutex
	probeErr error
	sessions []ports.RecognitionSession
}

func (p *fakeRecognitionProvider) Probe() error {
	return p.probeErr
}

func (p *fakeRecognitionProvider) StartStreaming(ctx context.Context, cfg ports.RecognitionConfig) (ports.RecognitionSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.sessions) == 0 {
		return nil, errors.New("no fake recognition session configured")
	}
	session := p.sessions[0]
	p.sessions = p.sessions[1:]
	return session, nil
}

type fakeEventSink struct {
	mu          sync.Mutex
	listening   []bool
	transcripts []string
	prompts     []domain.PromptSession
	progress    []int
	errorCodes  []domain.ErrorCode
}

func (s *fakeEventSink) ListeningChanged(listening bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listening = append(s.listening, listening)
}

func (s *fakeEventSink) TranscriptChanged(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts = append(s.transcripts, text)
}

func (s *fakeEventSink) PromptStateChanged(session domain.PromptSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, session)
}

func (s *fakeEventSink) ProgressChanged(percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = append(s.progress, percent)
}

func (s *fakeEventSink) SessionError(code domain.ErrorCode, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorCodes = append(s.errorCodes, code)
}

func (s *fakeEventSink) lastListening() (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.listening) == 0 {
		return false, false
	}
	return s.listening[len(s.listening)-1], true
}

func (s *fakeEventSink) lastTranscript() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.transcripts) == 0 {
		return "", false
	}
	return s.transcripts[len(s.transcripts)-1], true
}

func (s *fakeEventSink) snapshotProgress() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.progress...)
}

func (s *fakeEventSink) snapshotErrors() []domain.ErrorCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ErrorCode(nil), s.errorCodes...)
}

type fakeCompletionClient struct {
	mu      sync.Mutex
	message string
	err     error
	calls   int
	block   chan struct{}
}

func (c *fakeCompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	c.calls++
	block := c.block
	message, err := c.message, c.err
	c.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return message, err
}

func (c *fakeCompletionClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
