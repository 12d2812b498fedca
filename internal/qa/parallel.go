package qa

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/MeKo-Tech/ocrqa/internal/store"
)

type pageJob struct {
	page int
}

type pageResult struct {
	page int
	eval *PageEvaluation
}

// EvaluateRun evaluates every page of a run and aggregates the result.
// Pages are independent, so they are processed by a worker pool; the
// aggregation step is order-insensitive.
func (e *Evaluator) EvaluateRun(ctx context.Context, run *store.Run) (*PipelineEvaluation, error) {
	if run == nil || len(run.Stages) == 0 {
		return nil, errors.New("run has no stages")
	}

	eval := &PipelineEvaluation{
		RunID:      run.ID,
		StageOrder: run.Stages,
		Pages:      make(map[int]*PageEvaluation, len(run.Pages)),
	}
	if len(run.Pages) == 0 {
		return eval, nil
	}

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(run.Pages) {
		workers = len(run.Pages)
	}

	jobs := make(chan pageJob, len(run.Pages))
	results := make(chan pageResult, len(run.Pages))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case job, ok := <-jobs:
					if !ok {
						return
					}
					results <- pageResult{page: job.page, eval: e.EvaluatePage(run, job.page)}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, page := range run.Pages {
			select {
			case jobs <- pageJob{page: page}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		eval.Pages[res.page] = res.eval
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.Aggregate(eval)
	observeRun(eval)
	return eval, nil
}
