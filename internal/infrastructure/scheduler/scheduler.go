package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultJobTimeout bounds a single job run.
const DefaultJobTimeout = 5 * time.Minute

// JobFunc is one unit of scheduled work.
type JobFunc func(ctx context.Context) error

// Scheduler runs background jobs on cron schedules in UTC. A job that is
// still running when its next tick fires is skipped for that tick.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a scheduler. Jobs are cancelled when Stop is called.
func New(logger *slog.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		timeout: DefaultJobTimeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Register schedules fn under a standard five-field cron spec or a
// descriptor such as "@every 30s".
func (s *Scheduler) Register(name, spec string, fn JobFunc) error {
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, fn) }); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.logger.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs, cancels running ones and waits for them to
// return or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// RunNow executes every registered job once on the calling goroutine.
func (s *Scheduler) RunNow() {
	for _, e := range s.cron.Entries() {
		e.WrappedJob.Run()
	}
}

func (s *Scheduler) run(name string, fn JobFunc) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := fn(ctx); err != nil {
		s.logger.ErrorContext(ctx, "job failed", "job", name, "error", err, "duration", time.Since(start))
		return
	}
	s.logger.DebugContext(ctx, "job finished", "job", name, "duration", time.Since(start))
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
