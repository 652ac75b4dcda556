package service

import (
	"context"
	"gamification_hub/internal/domain/model"
	"gamification_hub/internal/platform/logger"
)

// BadgeEvaluator re-checks one user's badges. Implemented by badge.Evaluator.
type BadgeEvaluator interface {
	Evaluate(ctx context.Context, userID string) ([]model.BadgeID, error)
}

// evaluateBadges runs the evaluator after a triggering write. Failures are
// logged only: the write that triggered it has already succeeded.
func evaluateBadges(ctx context.Context, ev BadgeEvaluator, userID, trigger string) {
	if ev == nil {
		return
	}
	log := logger.FromContext(ctx).With("user_id", userID, "trigger", trigger)
	granted, err := ev.Evaluate(ctx, userID)
	if err != nil {
		log.Warn("Badge evaluation failed", "error", err)
		return
	}
	if len(granted) > 0 {
		log.Debug("Badge evaluation granted badges", "count", len(granted))
	}
}
