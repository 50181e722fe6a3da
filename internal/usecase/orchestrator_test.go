package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"voxprompt/internal/domain"
)

func newTestOrchestrator(client *fakeCompletionClient, sink *fakeEventSink, onSend func(string)) *PromptOrchestrator {
	return NewPromptOrchestrator(client, sink, OrchestratorConfig{
		ProgressTick: time.Millisecond,
		ProgressStep: 10,
		OnSend:       onSend,
	})
}

func TestSendRejectsEmptyPromptWithoutNetworkCall(t *testing.T) {
	t.Parallel()

	client := &fakeCompletionClient{}
	sink := &fakeEventSink{}
	orchestrator := newTestOrchestrator(client, sink, nil)

	for _, prompt := range []string{"", "   ", "\t\n"} {
		if err := orchestrator.Send(context.Background(), prompt); err != nil {
			t.Fatalf("validation failure must not propagate, got %v", err)
		}

		snap := orchestrator.Snapshot()
		if snap.Status != domain.PromptStatusFailed {
			t.Fatalf("expected failed status for %q, got %s", prompt, snap.Status)
		}
		if snap.ErrorMessage != "Пожалуйста, введите или произнесите запрос" {
			t.Fatalf("unexpected validation message: %q", snap.ErrorMessage)
		}
	}

	if client.callCount() != 0 {
		t.Fatalf("expected zero network calls, got %d", client.callCount())
	}
}

func TestSendSuccessUpdatesSessionAndNotifies(t *testing.T) {
	t.Parallel()

	client := &fakeCompletionClient{message: "Hi there"}
	sink := &fakeEventSink{}

	var sentPrompt string
	orchestrator := newTestOrchestrator(client, sink, func(prompt string) {
		sentPrompt = prompt
	})

	if err := orchestrator.Send(context.Background(), "Hello"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	snap := orchestrator.Snapshot()
	if snap.Status != domain.PromptStatusSucceeded {
		t.Fatalf("unexpected status: %s", snap.Status)
	}
	if snap.ResponseText != "Hi there" {
		t.Fatalf("unexpected response: %q", snap.ResponseText)
	}
	if snap.ErrorMessage != "" {
		t.Fatalf("error message must be cleared on success, got %q", snap.ErrorMessage)
	}
	if snap.ProgressPercent != 100 {
		t.Fatalf("progress must end at 100, got %d", snap.ProgressPercent)
	}
	if sentPrompt != "Hello" {
		t.Fatalf("onSend not invoked with original prompt, got %q", sentPrompt)
	}
}

func TestSendFailureShowsGenericMessage(t *testing.T) {
	t.Parallel()

	client := &fakeCompletionClient{err: errors.New("proxy returned status 500")}
	sink := &fakeEventSink{}

	notified := false
	orchestrator := newTestOrchestrator(client, sink, func(string) { notified = true })

	if err := orchestrator.Send(context.Background(), "Hello"); err != nil {
		t.Fatalf("send failure must resolve into state, got %v", err)
	}

	snap := orchestrator.Snapshot()
	if snap.Status != domain.PromptStatusFailed {
		t.Fatalf("unexpected status: %s", snap.Status)
	}
	if snap.ErrorMessage != "Ошибка при получении ответа. Пожалуйста, попробуйте снова." {
		t.Fatalf("unexpected error message: %q", snap.ErrorMessage)
	}
	if snap.ProgressPercent != 100 {
		t.Fatalf("progress must end at 100 on failure, got %d", snap.ProgressPercent)
	}
	if notified {
		t.Fatalf("onSend must not fire on failure")
	}
}

func TestSendProgressIsMonotonicAndEndsAtFull(t *testing.T) {
	t.Parallel()

	client := &fakeCompletionClient{message: "ok", block: make(chan struct{})}
	sink := &fakeEventSink{}
	orchestrator := newTestOrchestrator(client, sink, nil)

	done := make(chan struct{})
	go func() {
		_ = orchestrator.Send(context.Background(), "Hello")
		close(done)
	}()

	// Let the simulator produce a few ticks before resolving the call.
	time.Sleep(20 * time.Millisecond)
	close(client.block)
	<-done

	progress := sink.snapshotProgress()
	if len(progress) < 2 {
		t.Fatalf("expected progress updates, got %v", progress)
	}
	if progress[0] != 0 {
		t.Fatalf("progress must reset to 0 at cycle start, got %v", progress)
	}
	if progress[len(progress)-1] != 100 {
		t.Fatalf("last progress must be 100, got %v", progress)
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Fatalf("progress went backwards: %v", progress)
		}
	}
}

func TestSendRejectsConcurrentSend(t *testing.T) {
	t.Parallel()

	client := &fakeCompletionClient{message: "ok", block: make(chan struct{})}
	sink := &fakeEventSink{}
	orchestrator := newTestOrchestrator(client, sink, nil)

	done := make(chan struct{})
	go func() {
		_ = orchestrator.Send(context.Background(), "first")
		close(done)
	}()

	waitFor(t, "sending state", func() bool {
		return orchestrator.Snapshot().Status == domain.PromptStatusSending
	})

	if err := orchestrator.Send(context.Background(), "second"); !errors.Is(err, ErrSendInFlight) {
		t.Fatalf("expected ErrSendInFlight, got %v", err)
	}

	close(client.block)
	<-done

	if client.callCount() != 1 {
		t.Fatalf("expected a single network call, got %d", client.callCount())
	}
}

func TestTranscriptMirroringRespectsManualEdits(t *testing.T) {
	t.Parallel()

	orchestrator := newTestOrchestrator(&fakeCompletionClient{}, &fakeEventSink{}, nil)

	orchestrator.ListeningChanged(true)
	orchestrator.TranscriptChanged("привет")
	if got := orchestrator.Snapshot().PromptText; got != "привет" {
		t.Fatalf("transcript not mirrored: %q", got)
	}

	orchestrator.SetPrompt("мой текст")
	orchestrator.TranscriptChanged("привет мир")
	if got := orchestrator.Snapshot().PromptText; got != "мой текст" {
		t.Fatalf("manual edit was clobbered: %q", got)
	}

	// A new listening span re-arms mirroring.
	orchestrator.ListeningChanged(true)
	orchestrator.TranscriptChanged("новый запрос")
	if got := orchestrator.Snapshot().PromptText; got != "новый запрос" {
		t.Fatalf("mirroring not re-armed: %q", got)
	}
}

func TestEditResponseWritesThrough(t *testing.T) {
	t.Parallel()

	client := &fakeCompletionClient{message: "generated"}
	orchestrator := newTestOrchestrator(client, &fakeEventSink{}, nil)

	if err := orchestrator.Send(context.Background(), "Hello"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	orchestrator.EditResponse("edited by user")
	snap := orchestrator.Snapshot()
	if snap.ResponseText != "edited by user" {
		t.Fatalf("unexpected response: %q", snap.ResponseText)
	}
	if snap.Status != domain.PromptStatusSucceeded {
		t.Fatalf("editing must not change status, got %s", snap.Status)
	}
}

func TestSuccessAfterFailureClearsAlert(t *testing.T) {
	t.Parallel()

	client := &fakeCompletionClient{err: errors.New("boom")}
	orchestrator := newTestOrchestrator(client, &fakeEventSink{}, nil)

	if err := orchestrator.Send(context.Background(), "Hello"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if orchestrator.Snapshot().ErrorMessage == "" {
		t.Fatalf("expected error message after failure")
	}

	client.mu.Lock()
	client.err = nil
	client.message = "ok"
	client.mu.Unlock()

	if err := orchestrator.Send(context.Background(), "Hello"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	snap := orchestrator.Snapshot()
	if snap.ErrorMessage != "" {
		t.Fatalf("error message must be cleared, got %q", snap.ErrorMessage)
	}
	if snap.Status != domain.PromptStatusSucceeded {
		t.Fatalf("unexpected status: %s", snap.Status)
	}
}
