package usecase

import (
	"voxprompt/internal/ports"
)

// activeCapture holds the resources of one listening span.
type activeCapture struct {
	cancel func()
	audio  ports.AudioSession
	stream ports.RecognitionSession

	aggregator  *transcriptAggregator
	resultsDone chan struct{}
	audioDone   chan struct{}
}

func (s *activeCapture) waitDone() {
	<-s.resultsDone
	<-s.audioDone
}
