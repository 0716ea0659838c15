package jobs

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/ECE496-Team-DASH/DashRAG/internal/logger"
)

// Pool executes jobs on a bounded set of workers. Submission is
// fire-and-forget: the handler that submits never observes completion, and a
// job runs to a terminal outcome once started (no cancellation). A panic in
// one job is caught at the job boundary, recorded against that job's
// document or message, and never affects another job or the pool itself.
type Pool struct {
	log    *logger.Logger
	sem    *semaphore.Weighted
	runner *Runner
}

func NewPool(baseLog *logger.Logger, runner *Runner, size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		log:    baseLog.With("component", "JobPool"),
		sem:    semaphore.NewWeighted(int64(size)),
		runner: runner,
	}
}

// Submit hands a job to the pool and returns immediately.
func (p *Pool) Submit(job Job) {
	go func() {
		// Background context on purpose: the submitting request has already
		// returned and must not cancel the job.
		ctx := context.Background()
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer p.sem.Release(1)

		defer func() {
			if r := recover(); r != nil {
				p.log.Error("Job panicked", "kind", job.Kind, "target_id", job.TargetID, "panic", r)
				p.runner.RecordFailure(ctx, job, fmt.Errorf("unexpected error: %v", r))
			}
		}()

		p.runner.Run(ctx, job)
	}()
}
