package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"emoeval/internal/dataset"
	"emoeval/internal/record"
)

// trialFunc executes one trial with the given worker pacer. It reports false
// for a trial interrupted by cancellation.
type trialFunc func(ctx context.Context, trial dataset.Trial, p *pacer) (record.Result, bool)

// trialJob is the argument handed to a pool worker.
type trialJob struct {
	ctx   context.Context
	trial dataset.Trial
	wg    *sync.WaitGroup
}

// runSequential executes trials in dataset order with a single pacer.
// It stops scheduling once ctx is done.
func runSequential(ctx context.Context, trials []dataset.Trial, p *pacer, batch *Batch, run trialFunc) {
	for _, trial := range trials {
		if ctx.Err() != nil {
			return
		}
		if rec, ok := run(ctx, trial, p); ok {
			batch.Append(rec)
		}
	}
}

// runPooled executes trials on an ants pool. Each worker borrows a pacer so
// the inter-call delay holds per worker.
func runPooled(ctx context.Context, trials []dataset.Trial, pacers []*pacer, batch *Batch, run trialFunc) error {
	free := make(chan *pacer, len(pacers))
	for _, p := range pacers {
		free <- p
	}
	pool, err := ants.NewPoolWithFunc(len(pacers), func(arg any) {
		job := arg.(*trialJob)
		defer job.wg.Done()
		p := <-free
		defer func() { free <- p }()
		if job.ctx.Err() != nil {
			return
		}
		if rec, ok := run(job.ctx, job.trial, p); ok {
			batch.Append(rec)
		}
	})
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, trial := range trials {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		if err := pool.Invoke(&trialJob{ctx: ctx, trial: trial, wg: &wg}); err != nil {
			wg.Done()
			wg.Wait()
			return fmt.Errorf("submit trial %d: %w", trial.Index, err)
		}
	}
	wg.Wait()
	return nil
}
