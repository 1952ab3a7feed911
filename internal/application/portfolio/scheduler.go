package portfolio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Runner is the job the scheduler triggers.
type Runner interface {
	RevalueAll(ctx context.Context) (*RevaluationResult, error)
}

// Scheduler triggers a Runner on a fixed interval. Runs never overlap: a
// tick that arrives during a run is dropped by the ticker.
type Scheduler struct {
	runner     Runner
	interval   time.Duration
	runOnStart bool

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	done    chan struct{}
}

func NewScheduler(runner Runner, interval time.Duration, runOnStart bool) *Scheduler {
	return &Scheduler{runner: runner, interval: interval, runOnStart: runOnStart}
}

// Start launches the loop. It returns an error if already running or if the
// interval is not positive.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("revaluation scheduler is already running")
	}
	if s.interval <= 0 {
		return fmt.Errorf("revaluation interval must be positive, got %s", s.interval)
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})

	log.Info().Dur("interval", s.interval).Bool("run_on_start", s.runOnStart).Msg("revaluation scheduler starting")
	go s.loop(ctx, s.stopCh, s.done)
	return nil
}

func (s *Scheduler) loop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	if s.runOnStart {
		s.runOnce(ctx)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-stop:
			log.Info().Msg("revaluation scheduler stopped")
			return
		case <-ctx.Done():
			log.Info().Msg("revaluation scheduler context cancelled")
			return
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	res, err := s.runner.RevalueAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduled revaluation failed")
		return
	}
	if res != nil && res.Skipped {
		log.Info().Str("reason", res.Reason).Msg("scheduled revaluation skipped")
	}
}

// Stop ends the loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.done
	s.mu.Unlock()
	<-done
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
