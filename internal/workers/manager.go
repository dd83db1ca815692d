package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/alimgiray/familytree/internal/services"
	"github.com/alimgiray/familytree/pkg/logger"
)

// WorkerManager manages the background workers of the server
type WorkerManager struct {
	workers []Worker
	feed    *services.FeedService
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewWorkerManager creates a new worker manager
func NewWorkerManager(feed *services.FeedService) *WorkerManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerManager{
		workers: make([]Worker, 0),
		feed:    feed,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// StartAll starts one snapshot worker per feed partition
func (wm *WorkerManager) StartAll() error {
	partitions := wm.feed.Partitions()
	logger.Infof("Starting workers - Snapshot: %d", partitions)

	for i := 0; i < partitions; i++ {
		worker := NewSnapshotWorker(fmt.Sprintf("snapshot-%d", i+1), wm.feed, i)
		wm.workers = append(wm.workers, worker)
		wm.startWorker(worker)
	}

	logger.Infof("Started %d total workers", len(wm.workers))
	return nil
}

// StopAll gracefully stops all workers
func (wm *WorkerManager) StopAll() error {
	logger.Info("Stopping all workers...")

	// Cancel the context to signal all workers to stop
	wm.cancel()

	for _, worker := range wm.workers {
		if err := worker.Stop(); err != nil {
			logger.Errorf("Error stopping worker %s: %v", worker.GetWorkerID(), err)
		}
	}

	wm.wg.Wait()

	logger.Info("All workers stopped")
	return nil
}

// startWorker starts a single worker in a goroutine
func (wm *WorkerManager) startWorker(worker Worker) {
	wm.wg.Add(1)
	go func() {
		defer wm.wg.Done()
		if err := worker.Start(wm.ctx); err != nil && err != context.Canceled {
			logger.Errorf("Worker %s stopped with error: %v", worker.GetWorkerID(), err)
		}
	}()
}

// GetWorkerStatus returns the status of all workers
func (wm *WorkerManager) GetWorkerStatus() map[string]bool {
	status := make(map[string]bool)
	for _, worker := range wm.workers {
		if snapshotWorker, ok := worker.(*SnapshotWorker); ok {
			status[worker.GetWorkerID()] = snapshotWorker.IsRunning()
		} else {
			status[worker.GetWorkerID()] = false
		}
	}
	return status
}
