// Package janitor runs the memory cleanup sweep as a scheduled background
// job.
//
// Cleanup itself lives on the memory client and can be called ad hoc; the
// janitor is the periodic driver, evicting expired and cold memories on a
// cron schedule without blocking the caller's request path.
package janitor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/agentboard/mnemo-go/pkg/core"
)

// DefaultSchedule runs the cleanup sweep at the top of every hour.
const DefaultSchedule = "0 * * * *"

// jobName identifies the cleanup job in log output.
const jobName = "memory_cleanup"

// Cleaner is the subset of the memory client the janitor drives.
// *core.Client satisfies it.
type Cleaner interface {
	Cleanup(ctx context.Context, opts ...core.CleanupOption) (int, error)
}

// Janitor schedules periodic cleanup sweeps against a Cleaner.
//
// A sweep never overlaps a previous one: the job lock is acquired with
// TryLock, and a tick that finds the lock held is skipped. Skipping is safe
// because cleanup is re-entrant and the next tick picks up whatever remains.
type Janitor struct {
	mu       sync.Mutex
	cleaner  Cleaner
	schedule string
	opts     []core.CleanupOption
	logger   *zap.Logger
	cron     *cron.Cron
	cancel   context.CancelFunc

	// jobLock guards against overlapping sweeps. Held for the duration of
	// each sweep, scheduled or manual.
	jobLock sync.Mutex
}

// Option configures a Janitor.
type Option func(*Janitor)

// WithSchedule overrides the default hourly schedule. The expression uses
// the standard 5-field cron format (minute hour dom month dow); it is
// validated when Start is called.
//
// Example:
//
//	jan, err := janitor.New(client, janitor.WithSchedule("*/15 * * * *"))
func WithSchedule(expr string) Option {
	return func(j *Janitor) {
		if expr != "" {
			j.schedule = expr
		}
	}
}

// WithLogger sets the logger used for sweep results and failures.
// Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(j *Janitor) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// WithCleanupOptions sets the cleanup options passed to every sweep, such
// as core.WithMaxAgeDays or core.WithBatchSize.
func WithCleanupOptions(opts ...core.CleanupOption) Option {
	return func(j *Janitor) {
		j.opts = opts
	}
}

// New creates a Janitor that drives cleaner on a cron schedule. The janitor
// does not run anything until Start is called.
//
// Parameters:
//   - cleaner: the memory client (or equivalent) whose Cleanup is invoked
//     on each sweep
//   - opts: optional configuration (schedule, logger, cleanup options)
//
// Returns an error if cleaner is nil.
func New(cleaner Cleaner, opts ...Option) (*Janitor, error) {
	if cleaner == nil {
		return nil, errors.New("janitor: cleaner is required")
	}

	j := &Janitor{
		cleaner:  cleaner,
		schedule: DefaultSchedule,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Start begins scheduling cleanup sweeps. It returns an error if the
// schedule expression is invalid or the janitor is already running.
func (j *Janitor) Start() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.cron != nil {
		return errors.New("janitor: already started")
	}

	ctx, cancel := context.WithCancel(context.Background())

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(parser))

	if _, err := c.AddFunc(j.schedule, func() {
		_, _ = j.sweep(ctx)
	}); err != nil {
		cancel()
		return fmt.Errorf("janitor: invalid schedule %q: %w", j.schedule, err)
	}

	j.cron = c
	j.cancel = cancel
	c.Start()

	j.logger.Info("janitor started",
		zap.String("job", jobName),
		zap.String("schedule", j.schedule),
	)
	return nil
}

// Stop shuts the scheduler down. The context passed to in-flight sweeps is
// cancelled, and Stop waits for them to return. The ctx argument bounds the
// wait; if it expires first, Stop returns its error with the sweep still
// draining in the background.
func (j *Janitor) Stop(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.cancel != nil {
		j.cancel()
		j.cancel = nil
	}
	if j.cron == nil {
		return nil
	}

	done := j.cron.Stop().Done()
	j.cron = nil

	select {
	case <-done:
		j.logger.Info("janitor stopped", zap.String("job", jobName))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("janitor: stop: %w", ctx.Err())
	}
}

// RunOnce triggers a single cleanup sweep outside the schedule and returns
// the number of memories evicted. It shares the job lock with scheduled
// sweeps, so it returns (0, nil) without running when a sweep is already in
// flight.
func (j *Janitor) RunOnce(ctx context.Context) (int, error) {
	return j.sweep(ctx)
}

// sweep runs one cleanup pass under the job lock. TryLock is atomic, so a
// tick that lands while a previous sweep is still running skips cleanly
// instead of queueing behind it.
func (j *Janitor) sweep(ctx context.Context) (int, error) {
	if !j.jobLock.TryLock() {
		j.logger.Warn("cleanup sweep still running, skipping tick",
			zap.String("job", jobName),
		)
		return 0, nil
	}
	defer j.jobLock.Unlock()

	evicted, err := j.cleaner.Cleanup(ctx, j.opts...)
	if err != nil {
		j.logger.Error("cleanup sweep failed",
			zap.String("job", jobName),
			zap.Error(err),
		)
		return 0, err
	}

	if evicted > 0 {
		j.logger.Info("cleanup sweep evicted memories",
			zap.String("job", jobName),
			zap.Int("evicted", evicted),
		)
	}
	return evicted, nil
}
