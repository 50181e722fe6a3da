package usecase

import (
	"errors"
	"fmt"
	"io"
	"time"

	"voxprompt/internal/domain"
	"voxprompt/internal/ports"
)

func pumpAudioChunks(
	audio ports.AudioSession,
	stream ports.RecognitionSession,
	chunkSize int,
	sink CaptureSink,
	done chan struct{},
) {
	defer close(done)
	// Half-close the stream when audio ends so the provider can flush
	// pending results and finish the span.
	defer func() { _ = stream.CloseSend() }()

	if chunkSize < 256 {
		chunkSize = 4096
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := audio.Read(buf)
		if n > 0 {
			if sendErr := stream.SendAudio(buf[:n]); sendErr != nil {
				sink.SessionError(domain.ErrorCodeCapture, fmt.Sprintf("failed to stream audio: %v", sendErr))
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				sink.SessionError(domain.ErrorCodeCapture, fmt.Sprintf("audio capture error: %v", err))
			}
			return
		}
	}
}

// waitForStream gives the recognizer a bounded window to finish its
// close handshake after CloseSend; on timeout it forces Close and
// reports whatever the stream ended with.
func waitForStream(session ports.RecognitionSession, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		_ = session.Close()
		return <-done
	}
}
