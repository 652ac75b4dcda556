package worker

import (
	"context"
	"errors"
	"gamification_hub/internal/common"
	"gamification_hub/internal/domain/model"
	"gamification_hub/internal/platform/queue"
	"log/slog"
	"time"
)

// RescanQueue is the list the worker drains. Implemented by queue.RedisQueue.
type RescanQueue interface {
	Pop(ctx context.Context, timeout time.Duration) (string, error)
	Push(ctx context.Context, ids ...string) error
}

type BadgeEvaluator interface {
	Evaluate(ctx context.Context, userID string) ([]model.BadgeID, error)
}

// BadgeRescanWorker re-evaluates the badges of every user id popped from the
// rescan queue, one at a time.
type BadgeRescanWorker struct {
	queue     RescanQueue
	evaluator BadgeEvaluator
	log       *slog.Logger

	popTimeout time.Duration
	errBackoff time.Duration
}

func NewBadgeRescanWorker(q RescanQueue, evaluator BadgeEvaluator, log *slog.Logger) *BadgeRescanWorker {
	if log == nil {
		log = slog.Default()
	}
	return &BadgeRescanWorker{
		queue:      q,
		evaluator:  evaluator,
		log:        log.With("component", "badge_rescan_worker"),
		popTimeout: 5 * time.Second,
		errBackoff: 5 * time.Second,
	}
}

// Start blocks until ctx is done.
func (w *BadgeRescanWorker) Start(ctx context.Context) {
	w.log.Info("Badge rescan worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Badge rescan worker stopping")
			return
		default:
		}

		userID, err := w.queue.Pop(ctx, w.popTimeout)
		if err != nil {
			if errors.Is(err, queue.ErrQueueEmpty) || ctx.Err() != nil {
				continue
			}
			w.log.Error("Failed to pop from rescan queue", "error", err)
			w.sleep(ctx, w.errBackoff)
			continue
		}
		w.process(ctx, userID)
	}
}

func (w *BadgeRescanWorker) process(ctx context.Context, userID string) {
	log := w.log.With("user_id", userID)
	granted, err := w.evaluator.Evaluate(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrLockNotAcquired) {
			// Another evaluation of this user is running; try again later.
			if err := w.queue.Push(ctx, userID); err != nil {
				log.Error("Failed to requeue user", "error", err)
			}
			return
		}
		log.Error("Badge rescan failed", "error", err)
		return
	}
	log.Debug("Badge rescan done", "granted", len(granted))
}

func (w *BadgeRescanWorker) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
