// Package badge decides which achievement badges a user has earned and
// reconciles them with the badges already stored on the user.
package badge

import (
	"context"
	"errors"
	"fmt"
	"gamification_hub/internal/common"
	"gamification_hub/internal/domain/model"
	"gamification_hub/internal/platform/logger"
	"gamification_hub/internal/platform/metrics"
	"time"

	"github.com/google/uuid"
)

type UserStore interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	AddBadges(ctx context.Context, id string, badges []string) error
}

type SolutionStore interface {
	ListByUser(ctx context.Context, userID string) ([]model.Solution, error)
}

type ChallengeStore interface {
	FindByID(ctx context.Context, id string) (*model.Challenge, error)
}

type NotificationSink interface {
	Create(ctx context.Context, n *model.Notification) error
}

// Locker serializes evaluations of the same user. The returned func releases
// the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type Evaluator struct {
	users         UserStore
	solutions     SolutionStore
	challenges    ChallengeStore
	notifications NotificationSink
	locker        Locker
	rules         []Rule
	now           func() time.Time
}

func NewEvaluator(users UserStore, solutions SolutionStore, challenges ChallengeStore, notifications NotificationSink, locker Locker) *Evaluator {
	if locker == nil {
		locker = NewKeyedMutex()
	}
	return &Evaluator{
		users:         users,
		solutions:     solutions,
		challenges:    challenges,
		notifications: notifications,
		locker:        locker,
		rules:         DefaultRules,
		now:           time.Now,
	}
}

func NotificationTitle(b model.BadgeID) string {
	return "New badge: " + b.DisplayName()
}

func NotificationMessage(b model.BadgeID) string {
	return fmt.Sprintf("Congratulations! You earned the %q badge.", b.DisplayName())
}

// Evaluate recomputes the badges of userID from the full solution history and
// grants those not yet held: the badge set is written first, then one badge
// notification per new badge in rule order. An unknown user is a no-op.
// Calling it again without any state change grants nothing.
func (e *Evaluator) Evaluate(ctx context.Context, userID string) ([]model.BadgeID, error) {
	start := time.Now()

	unlock, err := e.locker.Lock(ctx, userID)
	if err != nil {
		metrics.ObserveBadgeEvaluation(metrics.OutcomeError, time.Since(start))
		return nil, fmt.Errorf("badge.Evaluate lock user %s: %w", userID, err)
	}
	defer unlock()

	granted, outcome, err := e.evaluate(ctx, userID)
	metrics.ObserveBadgeEvaluation(outcome, time.Since(start))
	return granted, err
}

func (e *Evaluator) evaluate(ctx context.Context, userID string) ([]model.BadgeID, string, error) {
	log := logger.FromContext(ctx).With("user_id", userID)

	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			log.Debug("Badge evaluation skipped, user not found")
			return nil, metrics.OutcomeSkipped, nil
		}
		return nil, metrics.OutcomeError, fmt.Errorf("badge.Evaluate load user %s: %w", userID, err)
	}

	solutions, err := e.solutions.ListByUser(ctx, userID)
	if err != nil {
		return nil, metrics.OutcomeError, fmt.Errorf("badge.Evaluate load solutions of %s: %w", userID, err)
	}

	history := &History{
		User:       user,
		Solutions:  solutions,
		Challenges: e.resolveChallenges(ctx, solutions),
	}

	newBadges := NewBadges(e.rules, history)
	if len(newBadges) == 0 {
		return nil, metrics.OutcomeNoop, nil
	}

	ids := make([]string, len(newBadges))
	for i, b := range newBadges {
		ids[i] = string(b)
	}
	if err := e.users.AddBadges(ctx, userID, ids); err != nil {
		return nil, metrics.OutcomeError, fmt.Errorf("badge.Evaluate store badges of %s: %w", userID, err)
	}
	for _, b := range newBadges {
		metrics.BadgesAwarded.WithLabelValues(string(b)).Inc()
	}
	log.Info("Badges granted", "badges", ids)

	for _, b := range newBadges {
		n := &model.Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Title:     NotificationTitle(b),
			Message:   NotificationMessage(b),
			Type:      model.NotificationBadge,
			CreatedAt: e.now(),
		}
		if err := e.notifications.Create(ctx, n); err != nil {
			// Badges stay granted; only the remaining notifications are lost.
			return newBadges, metrics.OutcomeError, fmt.Errorf("badge.Evaluate notify %s of %s: %w", userID, b, err)
		}
		metrics.NotificationsCreated.WithLabelValues(string(model.NotificationBadge)).Inc()
	}
	return newBadges, metrics.OutcomeAwarded, nil
}

// resolveChallenges looks up each distinct parent challenge once. Lookups
// that fail are left out of the map and logged.
func (e *Evaluator) resolveChallenges(ctx context.Context, solutions []model.Solution) map[string]*model.Challenge {
	resolved := make(map[string]*model.Challenge)
	seen := make(map[string]bool)
	for i := range solutions {
		id := solutions[i].ChallengeID
		if seen[id] {
			continue
		}
		seen[id] = true

		c, err := e.challenges.FindByID(ctx, id)
		if err != nil || c == nil {
			logger.FromContext(ctx).Warn("Parent challenge unresolved, excluded from badge tallies",
				"challenge_id", id, "solution_id", solutions[i].ID, "error", err)
			continue
		}
		resolved[id] = c
	}
	return resolved
}
