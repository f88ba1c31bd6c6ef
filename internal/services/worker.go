package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/talent-matcher/internal/models"
	"alfredoptarigan/talent-matcher/internal/repositories"
)

// ErrWorkerStopped is the cancellation cause of runs interrupted by Stop.
// Such runs stay processing and are requeued on the next Start.
var ErrWorkerStopped = errors.New("worker stopped")

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(runID uuid.UUID)
	Cancel(runID uuid.UUID) error
}

type worker struct {
	bulkRepo     repositories.BulkRunRepository
	matchService MatchService
	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once

	mu      sync.Mutex
	running map[uuid.UUID]context.CancelCauseFunc
}

func NewWorker(
	bulkRepo repositories.BulkRunRepository,
	matchService MatchService,
	concurrency int,
	queueSize int,
	pollInterval time.Duration,
) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	return &worker{
		bulkRepo:     bulkRepo,
		matchService: matchService,
		jobQueue:     make(chan uuid.UUID, queueSize),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		running:      make(map[uuid.UUID]context.CancelCauseFunc),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting worker with %d concurrent workers\n", w.concurrency)

	// runs left processing by a previous shutdown go back to the queue
	if n, err := w.bulkRepo.RequeueInterrupted(); err != nil {
		log.Printf("⚠️  Failed to requeue interrupted bulk runs: %v\n", err)
	} else if n > 0 {
		log.Printf("🔁 Requeued %d interrupted bulk runs\n", n)
	}

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)

	log.Println("✅ Worker started successfully")
}

// Stop implements Worker. Runs in progress stop dispatching new candidates
// and are picked up again after a restart.
func (w *worker) Stop() {
	log.Println("🛑 Stopping worker...")
	w.stopOnce.Do(func() { close(w.stopChan) })

	w.mu.Lock()
	for _, cancel := range w.running {
		cancel(ErrWorkerStopped)
	}
	w.mu.Unlock()

	w.wg.Wait()
	log.Println("✅ Worker stopped")
}

// EnqueueJob implements Worker.
func (w *worker) EnqueueJob(runID uuid.UUID) {
	select {
	case w.jobQueue <- runID:
		log.Printf("📥 Bulk run %s enqueued\n", runID)
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, cannot enqueue bulk run %s\n", runID)
	}
}

// Cancel implements Worker. A run being processed here has its context
// cancelled; a run still queued is moved straight to cancelled.
func (w *worker) Cancel(runID uuid.UUID) error {
	w.mu.Lock()
	cancel, ok := w.running[runID]
	w.mu.Unlock()

	if ok {
		cancel(nil)
		log.Printf("🛑 Cancellation requested for bulk run %s\n", runID)
		return nil
	}

	cancelled, err := w.bulkRepo.Transition(runID, models.StatusQueued, models.StatusCancelled)
	if err != nil {
		return err
	}
	if !cancelled {
		return models.ErrBulkRunNotCancellable
	}
	log.Printf("🛑 Queued bulk run %s cancelled\n", runID)
	return nil
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log.Printf("🚀 Worker %d started processing jobs\n", workerID)

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case <-ctx.Done():
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case runID := <-w.jobQueue:
			log.Printf("👷 Worker #%d processing bulk run %s\n", workerID, runID)
			if err := w.process(ctx, runID); err != nil {
				log.Printf("❌ Worker #%d failed to process bulk run %s: %v\n", workerID, runID, err)
			} else {
				log.Printf("✅ Worker #%d finished bulk run %s\n", workerID, runID)
			}
		}
	}
}

func (w *worker) process(ctx context.Context, runID uuid.UUID) error {
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	w.mu.Lock()
	select {
	case <-w.stopChan:
		w.mu.Unlock()
		return nil
	default:
	}
	if _, dup := w.running[runID]; dup {
		w.mu.Unlock()
		return nil
	}
	w.running[runID] = cancel
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.running, runID)
		w.mu.Unlock()
	}()

	return w.matchService.ProcessBulkRun(runCtx, runID)
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	log.Println("🔄 Starting pending jobs poller")

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Pending jobs poller stopped")
			return
		case <-ctx.Done():
			log.Println("🔄 Pending jobs poller stopped")
			return
		case <-ticker.C:
			pendingJobs, err := w.bulkRepo.FindPendingJobs(10)
			if err != nil {
				log.Printf("⚠️  Failed to fetch pending bulk runs: %v\n", err)
				continue
			}

			if len(pendingJobs) > 0 {
				log.Printf("📋 Found %d pending bulk runs\n", len(pendingJobs))
			}

			for _, job := range pendingJobs {
				w.EnqueueJob(job.ID)
			}
		}
	}
}
