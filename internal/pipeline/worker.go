package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"studyhall/internal/domain"
	"studyhall/internal/infra"
)

const defaultPollInterval = 2 * time.Second

// Worker runs claim loops against the job table. Each loop atomically claims
// the oldest pending job and hands it to the Runner; concurrent loops never
// see the same job because the claim is conditional on the pending state.
type Worker struct {
	jobs      domain.MediaJobRepository
	runner    *Runner
	logger    infra.Logger
	count     int
	pollEvery time.Duration
}

// NewWorker configures a Worker with count claim loops.
func NewWorker(jobs domain.MediaJobRepository, runner *Runner, logger infra.Logger, count int, pollEvery time.Duration) *Worker {
	if count < 1 {
		count = 1
	}
	if pollEvery <= 0 {
		pollEvery = defaultPollInterval
	}
	return &Worker{jobs: jobs, runner: runner, logger: logger, count: count, pollEvery: pollEvery}
}

// Run blocks until ctx is cancelled, then waits for in-flight jobs to finish.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info().Int("loops", w.count).Msg("worker: started")

	var wg sync.WaitGroup
	for i := 0; i < w.count; i++ {
		wg.Add(1)
		go func(loop int) {
			defer wg.Done()
			w.loop(ctx, loop)
		}(i)
	}
	wg.Wait()
	w.logger.Info().Msg("worker: stopped")
}

func (w *Worker) loop(ctx context.Context, loop int) {
	for {
		job, err := w.jobs.ClaimNext(ctx)
		switch {
		case err == nil:
			w.logger.Info().
				Int("loop", loop).
				Str("job_id", job.ID).
				Str("kind", string(job.Kind)).
				Msg("worker: claimed job")
			if err := w.runner.Process(ctx, job); err != nil {
				w.logger.Error().Err(err).
					Str("job_id", job.ID).
					Msg("worker: job failed")
			}
			continue

		case errors.Is(err, domain.ErrNotFound):
			// queue empty, fall through to the poll wait

		case errors.Is(err, context.Canceled):
			return

		default:
			w.logger.Error().Err(err).Int("loop", loop).Msg("worker: claim failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.pollEvery):
		}
	}
}
