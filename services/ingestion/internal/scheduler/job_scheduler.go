package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Runner is one ingestion pass.
type Runner interface {
	Run(ctx context.Context) (*RunStats, error)
}

// JobScheduler runs ingestion once, or repeatedly on a ticker when interval is positive.
type JobScheduler struct {
	runner   Runner
	interval time.Duration
	logger   *zap.Logger
	mutex    sync.Mutex
	isActive bool
	cancel   context.CancelFunc
}

func NewJobScheduler(runner Runner, interval time.Duration, logger *zap.Logger) *JobScheduler {
	return &JobScheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// Start blocks until the single run completes, or until ctx ends or Stop is called
// when polling. In single-run mode the run's error is returned.
func (s *JobScheduler) Start(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "JobScheduler.Start")
	defer span.End()

	s.mutex.Lock()
	if s.isActive {
		s.mutex.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	s.isActive = true
	s.cancel = cancel
	s.mutex.Unlock()

	defer func() {
		cancel()
		s.mutex.Lock()
		s.isActive = false
		s.cancel = nil
		s.mutex.Unlock()
	}()

	_, err := s.runner.Run(ctx)
	if s.interval <= 0 {
		return err
	}
	if err != nil && ctx.Err() == nil {
		s.logger.Error("initial ingestion run failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.runner.Run(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("periodic ingestion run failed", zap.Error(err))
			}
		}
	}
}

func (s *JobScheduler) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}
