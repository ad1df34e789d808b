package sync

import (
	"context"
	"log"
	"sync"
	"time"
)

// Worker is the default sync engine: a single goroutine that invokes the
// connector on an adaptive interval. Because one goroutine owns the
// loop, UploadData is never called with overlapping batches. Failed
// batches stay in the queue, so a later tick retries them; the worker
// itself keeps no retry state.
type Worker struct {
	connector *Connector
	queue     Queue

	baseInterval    time.Duration
	maxInterval     time.Duration
	currentInterval time.Duration

	running  bool
	mu       sync.Mutex
	stopChan chan struct{}
}

func NewWorker(connector *Connector, queue Queue, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = 2 * time.Minute
	}
	return &Worker{
		connector:       connector,
		queue:           queue,
		baseInterval:    interval,
		maxInterval:     interval * 3,
		currentInterval: interval,
		stopChan:        make(chan struct{}),
	}
}

// Start begins the background upload loop.
func (w *Worker) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	log.Println("[Sync Worker] Starting background sync worker")

	go w.run()
}

// Stop gracefully stops the background upload loop.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	log.Println("[Sync Worker] Stopping background sync worker")
	close(w.stopChan)
	w.running = false
}

func (w *Worker) run() {
	ticker := time.NewTicker(w.currentInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.uploadCycle()

	for {
		select {
		case <-ticker.C:
			hadWork := w.uploadCycle()

			// Adaptive backoff: stretch the interval while idle, snap
			// back when there is work
			w.mu.Lock()
			if hadWork {
				if w.currentInterval != w.baseInterval {
					w.currentInterval = w.baseInterval
					ticker.Reset(w.currentInterval)
				}
			} else {
				if w.currentInterval < w.maxInterval {
					w.currentInterval = w.maxInterval
					ticker.Reset(w.currentInterval)
				}
			}
			w.mu.Unlock()
		case <-w.stopChan:
			return
		}
	}
}

// uploadCycle performs one engine cycle: fetch credentials, pause when
// unauthenticated, otherwise hand the queue to the connector. Returns
// true when a batch was attempted.
func (w *Worker) uploadCycle() bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cred, err := w.connector.FetchCredentials(ctx)
	if err != nil {
		log.Printf("[Sync Worker] Credential fetch failed: %v", err)
		return false
	}
	if cred == nil {
		// Not signed in; nothing to upload
		return false
	}

	batch, err := w.queue.NextBatch()
	if err != nil {
		log.Printf("[Sync Worker] Failed to inspect queue: %v", err)
		return false
	}
	if batch == nil {
		return false
	}

	if err := w.connector.UploadData(ctx, w.queue); err != nil {
		log.Printf("[Sync Worker] Upload failed, batch stays queued: %v", err)
		return true
	}

	log.Printf("[Sync Worker] Uploaded batch %s (%d ops)", batch.ID, len(batch.Ops))
	return true
}
