package workers

import (
	"context"

	"github.com/alimgiray/familytree/internal/services"
	"github.com/alimgiray/familytree/pkg/logger"
)

// SnapshotWorker delivers collection snapshots for one feed partition
type SnapshotWorker struct {
	*BaseWorker
	feed      *services.FeedService
	partition int
}

// NewSnapshotWorker creates a worker draining the given partition of feed
func NewSnapshotWorker(workerID string, feed *services.FeedService, partition int) *SnapshotWorker {
	return &SnapshotWorker{
		BaseWorker: NewBaseWorker(workerID),
		feed:       feed,
		partition:  partition,
	}
}

// Start begins the snapshot worker process
func (w *SnapshotWorker) Start(ctx context.Context) error {
	w.setRunning(true)
	defer w.setRunning(false)
	logger.Infof("Snapshot worker %s started", w.WorkerID)

	queue := w.feed.Queue(w.partition)
	for {
		select {
		case <-ctx.Done():
			logger.Infof("Snapshot worker %s stopping due to context cancellation", w.WorkerID)
			return ctx.Err()
		case <-w.StopChan:
			logger.Infof("Snapshot worker %s stopping", w.WorkerID)
			return nil
		case event := <-queue:
			if err := w.feed.Deliver(event); err != nil {
				logger.WithUser(event.UserID).WithError(err).
					Errorf("Snapshot worker %s failed to deliver %s", w.WorkerID, event.Collection)
			}
		}
	}
}
