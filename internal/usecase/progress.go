package usecase

import (
	"sync"
	"time"
)

// progressSimulator drives the cosmetic send-progress estimate: a
// repeating tick that advances progress by a fixed step, clamped at 100.
// It is not tied to real request completion; the owner stops it as soon
// as the network call resolves and forces the final 100%.
type progressSimulator struct {
	interval time.Duration
	step     int
	apply    func(percent int)

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func newProgressSimulator(interval time.Duration, step int, apply func(int)) *progressSimulator {
	if interval <= 0 {
		interval = 300 * time.Millisecond
	}
	if step <= 0 {
		step = 10
	}
	return &progressSimulator{
		interval: interval,
		step:     step,
		apply:    apply,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *progressSimulator) Start() {
	go s.run()
}

func (s *progressSimulator) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	current := 0
	for {
		select {
		case <-ticker.C:
			current += s.step
			if current >= 100 {
				s.apply(100)
				return
			}
			s.apply(current)
		case <-s.stop:
			return
		}
	}
}

// Stop halts the simulator and waits for its final tick to land, so a
// forced progress update issued afterwards is always the last one.
func (s *progressSimulator) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}
