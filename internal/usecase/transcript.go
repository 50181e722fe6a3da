package usecase

import (
	"strings"
	"sync"

	"voxprompt/internal/domain"
)

// transcriptAggregator rebuilds the full transcript of the current
// listening span from every segment reported so far. Final segments
// accumulate; the newest interim segment replaces the previous one, so
// each recognition event yields the whole reconstructed text rather
// than an append.
type transcriptAggregator struct {
	mu      sync.Mutex
	finals  []string
	interim string
}

func newTranscriptAggregator() *transcriptAggregator {
	return &transcriptAggregator{}
}

func (a *transcriptAggregator) Add(result domain.RecognitionResult) {
	a.mu.Lock()
	defer a.mu.Unlock()

	text := strings.TrimSpace(result.Best())
	if text == "" {
		return
	}
	if result.Final {
		a.finals = append(a.finals, text)
		a.interim = ""
		return
	}
	a.interim = text
}

// Text returns the reconstructed transcript for the current span.
func (a *transcriptAggregator) Text() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	joined := strings.Join(a.finals, " ")
	if a.interim == "" {
		return joined
	}
	if joined == "" {
		return a.interim
	}
	return joined + " " + a.interim
}
