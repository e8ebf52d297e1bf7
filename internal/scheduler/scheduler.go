// Package scheduler wraps gocron behind a small task-registration API so
// batch jobs (like the low-skill notification sweep) stay independent of
// any particular scheduler. Jobs receive a context and return an error;
// failures are logged, never retried here.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// Job is a schedulable unit of work.
type Job func(ctx context.Context) error

// Scheduler runs registered cron jobs until stopped.
type Scheduler struct {
	inner gocron.Scheduler
	log   zerolog.Logger
}

// New constructs a scheduler operating in UTC.
func New(log zerolog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(gocronLogger{log: log}),
	)
	if err != nil {
		return nil, err
	}
	return &Scheduler{inner: s, log: log.With().Str("component", "scheduler").Logger()}, nil
}

// Register adds a named cron job. The job runs with a background context;
// errors and panics are logged with the job name, never propagated to the
// scheduler loop.
func (s *Scheduler) Register(name, cronExpr string, job Job) error {
	_, err := s.inner.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(s.wrap(name, job)),
		gocron.WithName(name),
	)
	return err
}

// wrap guards a job run: a panic is recovered and logged, and every run
// reports its duration.
func (s *Scheduler) wrap(name string, job Job) func() {
	return func() {
		start := time.Now()
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error().Interface("panic", rec).Str("job", name).
					Dur("elapsed", time.Since(start)).Msg("job panicked")
			}
		}()

		s.log.Info().Str("job", name).Msg("job started")
		if err := job(context.Background()); err != nil {
			s.log.Error().Err(err).Str("job", name).
				Dur("elapsed", time.Since(start)).Msg("job failed")
			return
		}
		s.log.Info().Str("job", name).Dur("elapsed", time.Since(start)).Msg("job completed")
	}
}

// Start launches the scheduler's run loop.
func (s *Scheduler) Start() { s.inner.Start() }

// Stop shuts the scheduler down, waiting for running jobs to finish.
func (s *Scheduler) Stop() error { return s.inner.Shutdown() }

// gocronLogger adapts zerolog to gocron's logger contract.
type gocronLogger struct {
	log zerolog.Logger
}

func (l gocronLogger) Debug(msg string, args ...any) { l.log.Debug().Fields(args).Msg(msg) }
func (l gocronLogger) Info(msg string, args ...any)  { l.log.Info().Fields(args).Msg(msg) }
func (l gocronLogger) Warn(msg string, args ...any)  { l.log.Warn().Fields(args).Msg(msg) }
func (l gocronLogger) Error(msg string, args ...any) { l.log.Error().Fields(args).Msg(msg) }
