// Package jobs runs periodic maintenance work next to the API server.
package jobs

import (
	"context"
	"log"
	"time"
)

// Processor is one unit of periodic maintenance work.
type Processor interface {
	Run(ctx context.Context) error
}

// Worker drives a Processor on a fixed poll interval until stopped or the
// context is cancelled. A failed run only logs; the loop keeps going.
type Worker struct {
	processor    Processor
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
}

func NewWorker(processor Processor, pollInterval time.Duration) *Worker {
	return &Worker{
		processor:    processor,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start runs the poll loop. It blocks until Stop is called or ctx is
// cancelled, so callers usually run it in its own goroutine.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("jobs: worker started, polling every %v", w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			log.Println("jobs: worker stopped, context cancelled")
			return
		case <-w.stopChan:
			log.Println("jobs: worker stopped")
			return
		case <-ticker.C:
			if err := w.processor.Run(ctx); err != nil {
				log.Printf("jobs: run failed: %v", err)
			}
		}
	}
}

// Stop signals the loop to exit and waits for the in-flight run to finish.
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
}
