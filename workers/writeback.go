package workers

import (
	"context"
	"log"
	"sync"
)

// WritebackJob is one pending metadata write produced by a batch apply.
type WritebackJob struct {
	Identity string
	FilePath string
	Target   string // "jpg" or "raw"
	Rating   int
}

// WritebackResult pairs a job with its outcome.
type WritebackResult struct {
	Job WritebackJob
	Err error
}

// WritebackPool executes batches of per-file metadata writes with bounded
// concurrency. Jobs are independent: a locked or corrupt file fails its own
// job and nothing else, so results are collected rather than propagated.
type WritebackPool struct {
	workers int
}

func NewWritebackPool(numWorkers int) *WritebackPool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return &WritebackPool{workers: numWorkers}
}

// Run executes write on every job and returns once the whole batch has
// settled. Run itself never fails; per-job errors ride on the results.
func (p *WritebackPool) Run(ctx context.Context, jobs []WritebackJob, write func(context.Context, WritebackJob) error) []WritebackResult {
	if len(jobs) == 0 {
		return nil
	}

	numWorkers := p.workers
	if numWorkers > len(jobs) {
		numWorkers = len(jobs)
	}

	jobCh := make(chan WritebackJob, len(jobs))
	results := make([]WritebackResult, 0, len(jobs))
	var mu sync.Mutex
	var wg sync.WaitGroup

	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func(id int) {
			defer wg.Done()
			for job := range jobCh {
				err := write(ctx, job)
				if err != nil {
					log.Printf("worker %d: ERROR writing rating %d to %s: %v", id, job.Rating, job.FilePath, err)
				}
				mu.Lock()
				results = append(results, WritebackResult{Job: job, Err: err})
				mu.Unlock()
			}
		}(i)
	}

	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)
	wg.Wait()

	return results
}
