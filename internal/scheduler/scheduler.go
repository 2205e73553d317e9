package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"jobboard/internal/app"
)

type Recomputer interface {
	RecomputeAll(ctx context.Context) (*app.RecomputeReport, error)
}

type Recorder interface {
	RecordRecompute(processed, failed int, runErr error, finishedAt time.Time)
}

// Scheduler runs the employer metric batch on a cron schedule. Overlapping runs are skipped.
type Scheduler struct {
	cron       *cron.Cron
	recomputer Recomputer
	recorder   Recorder
	logger     *slog.Logger
	timeout    time.Duration

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func New(schedule string, recomputer Recomputer, recorder Recorder, timeout time.Duration, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	s := &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
		recomputer: recomputer,
		recorder:   recorder,
		logger:     logger,
		timeout:    timeout,
		ctx:        context.Background(),
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.run() }); err != nil {
		return nil, fmt.Errorf("invalid recompute schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
	s.cron.Start()
}

// Stop cancels a running batch and waits for it to return or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow executes one batch outside the schedule.
func (s *Scheduler) RunNow() (*app.RecomputeReport, error) {
	return s.run()
}

func (s *Scheduler) run() (*app.RecomputeReport, error) {
	s.mu.Lock()
	parent := s.ctx
	s.mu.Unlock()
	ctx := parent
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, s.timeout)
		defer cancel()
	}
	report, err := s.recomputer.RecomputeAll(ctx)
	if s.recorder != nil {
		processed, failed := 0, 0
		if report != nil {
			processed, failed = report.Processed, report.Failed
		}
		s.recorder.RecordRecompute(processed, failed, err, time.Now().UTC())
	}
	if err != nil {
		s.logger.Error("scheduled recompute failed", slog.String("error", err.Error()))
	}
	return report, err
}
