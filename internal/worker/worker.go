package worker

import (
	"context"
	"log"
	"time"

	"github.com/bobarin/vidstitch/internal/assembler"
	"github.com/bobarin/vidstitch/internal/queue"
)

// jobSource is the queue surface the worker drains.
type jobSource interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*queue.Job, error)
}

// Worker drains the combine queue and runs assemblies for detached jobs.
// There is no job-state store: a finished job is simply a file in the
// output directory, and a failed one is the absence of that file.
type Worker struct {
	queue     jobSource
	assembler *assembler.Assembler
}

func New(q jobSource, asm *assembler.Assembler) *Worker {
	return &Worker{
		queue:     q,
		assembler: asm,
	}
}

// Start processes combine jobs until the context is cancelled. Each loop
// handles one job end to end; concurrency is the number of loops.
func (w *Worker) Start(ctx context.Context, concurrency int) {
	log.Printf("Worker started with concurrency: %d", concurrency)

	for i := 0; i < concurrency; i++ {
		go w.processQueue(ctx)
	}

	<-ctx.Done()
	log.Println("Worker shutting down...")
}

func (w *Worker) processQueue(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			job, err := w.queue.Dequeue(ctx, 5*time.Second)
			if err != nil {
				if ctx.Err() != nil {
					return // Shutdown, not a dequeue failure
				}
				log.Printf("[Worker] Error dequeuing: %v", err)
				continue
			}

			if job == nil {
				continue // No job available, retry
			}

			log.Printf("[Worker] Processing job %s (%d clips, max %ds)", job.ID, len(job.Request.Videos), job.Request.MaxDuration)

			start := time.Now()
			outPath, err := w.assembler.Assemble(ctx, job.ID.String(), assembler.FromModel(job.Request))
			if err != nil {
				log.Printf("[Worker] Job %s failed after %v: %v", job.ID, time.Since(start).Round(time.Second), err)
				continue
			}

			log.Printf("[Worker] Job %s completed in %v: %s", job.ID, time.Since(start).Round(time.Second), outPath)
		}
	}
}
