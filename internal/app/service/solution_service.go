package service

import (
	"context"
	"errors"
	"fmt"
	"gamification_hub/internal/common"
	"gamification_hub/internal/domain/model"
	"gamification_hub/internal/domain/repository"
	"gamification_hub/internal/platform/logger"
	"gamification_hub/internal/platform/metrics"
	"time"

	"github.com/google/uuid"
)

type SolutionService struct {
	solutionRepo     repository.SolutionRepository
	challengeRepo    repository.ChallengeRepository
	notificationRepo repository.NotificationRepository
	badges           BadgeEvaluator
	now              func() time.Time
}

func NewSolutionService(
	solutionRepo repository.SolutionRepository,
	challengeRepo repository.ChallengeRepository,
	notificationRepo repository.NotificationRepository,
	badges BadgeEvaluator,
) *SolutionService {
	return &SolutionService{
		solutionRepo:     solutionRepo,
		challengeRepo:    challengeRepo,
		notificationRepo: notificationRepo,
		badges:           badges,
		now:              time.Now,
	}
}

type SubmitSolutionRequest struct {
	ChallengeID string   `json:"challenge_id" validate:"required"`
	Content     string   `json:"content" validate:"required,max=20000"`
	Files       []string `json:"files" validate:"omitempty,max=10,dive,base64"`
	FileNames   []string `json:"file_names" validate:"omitempty,max=10,dive,required,max=255"`
}

type EvaluateSolutionRequest struct {
	SolutionID string `json:"solution_id" validate:"required"`
	Score      int    `json:"score" validate:"gte=0,lte=1000"`
	Feedback   string `json:"feedback" validate:"max=5000"`
}

type ListSolutionsQuery struct {
	ChallengeID string
	PendingOnly bool
	Limit       int
	Offset      int
}

type SolutionList struct {
	Solutions []model.Solution `json:"solutions"`
	Total     int              `json:"total"`
}

type EvaluationResult struct {
	Solution *model.Solution `json:"solution"`
	// ScoreDelta is what the evaluation added to the score held before it.
	ScoreDelta int `json:"score_delta"`
}

func (s *SolutionService) Submit(ctx context.Context, userID string, req SubmitSolutionRequest) (*model.Solution, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	if len(req.Files) != len(req.FileNames) {
		return nil, fmt.Errorf("%w: files and file_names must have the same length", common.ErrValidation)
	}

	challenge, err := s.challengeRepo.FindByID(ctx, req.ChallengeID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("challenge not found: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load challenge: %w", err)
	}
	now := s.now().UTC()
	if challenge.Status != model.ChallengeStatusActive {
		return nil, fmt.Errorf("challenge is not active: %w", common.ErrBadRequest)
	}
	if !now.Before(challenge.Deadline) {
		return nil, fmt.Errorf("challenge deadline has passed: %w", common.ErrBadRequest)
	}

	if _, err := s.solutionRepo.FindByChallengeAndUser(ctx, challenge.ID, userID); err == nil {
		return nil, fmt.Errorf("solution already submitted for this challenge: %w", common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing solution: %w", err)
	}

	solution := &model.Solution{
		ID:          uuid.NewString(),
		ChallengeID: challenge.ID,
		UserID:      userID,
		Content:     req.Content,
		Files:       nonNilStrings(req.Files),
		FileNames:   nonNilStrings(req.FileNames),
		SubmittedAt: now,
	}
	// The unique (challenge, user) index catches a concurrent duplicate.
	if err := s.solutionRepo.Create(ctx, solution); err != nil {
		return nil, fmt.Errorf("failed to store solution: %w", err)
	}
	logger.FromContext(ctx).Info("Solution submitted", "solution_id", solution.ID, "challenge_id", challenge.ID, "user_id", userID)

	evaluateBadges(ctx, s.badges, userID, "submission")
	return solution, nil
}

func (s *SolutionService) ListAll(ctx context.Context, q ListSolutionsQuery) (*SolutionList, error) {
	filter := model.SolutionFilter{
		ChallengeID: q.ChallengeID,
		PendingOnly: q.PendingOnly,
		Limit:       clampLimit(q.Limit, defaultPageSize, maxPageSize),
		Offset:      q.Offset,
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	solutions, total, err := s.solutionRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list solutions: %w", err)
	}
	return &SolutionList{Solutions: solutions, Total: total}, nil
}

func (s *SolutionService) ListMine(ctx context.Context, userID string) ([]model.Solution, error) {
	solutions, err := s.solutionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list solutions: %w", err)
	}
	if solutions == nil {
		solutions = []model.Solution{}
	}
	return solutions, nil
}

// Get returns a solution to its author or to an admin. Anyone else gets
// ErrNotFound.
func (s *SolutionService) Get(ctx context.Context, id, viewerID, viewerRole string) (*model.Solution, error) {
	solution, err := s.solutionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewerRole != model.RoleAdmin && solution.UserID != viewerID {
		return nil, common.ErrNotFound
	}
	return solution, nil
}

// Evaluate records a score. Re-scoring replaces the previous evaluation and
// the author's points move by the difference.
func (s *SolutionService) Evaluate(ctx context.Context, adminID string, req EvaluateSolutionRequest) (*EvaluationResult, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	solution, previous, err := s.solutionRepo.RecordEvaluation(ctx, model.SolutionEvaluation{
		SolutionID:    req.SolutionID,
		Score:         req.Score,
		Feedback:      req.Feedback,
		EvaluatedByID: adminID,
		EvaluatedAt:   s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("solution not found: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to record evaluation: %w", err)
	}

	delta := req.Score
	if previous != nil {
		delta -= *previous
	}
	logger.FromContext(ctx).Info("Solution evaluated", "solution_id", solution.ID, "user_id", solution.UserID,
		"score", req.Score, "delta", delta, "evaluated_by", adminID)

	s.notifyEvaluated(ctx, solution, req.Score)
	evaluateBadges(ctx, s.badges, solution.UserID, "evaluation")
	return &EvaluationResult{Solution: solution, ScoreDelta: delta}, nil
}

func (s *SolutionService) notifyEvaluated(ctx context.Context, solution *model.Solution, score int) {
	subject := "your solution"
	if c, err := s.challengeRepo.FindByID(ctx, solution.ChallengeID); err == nil {
		subject = fmt.Sprintf("your solution to %q", c.Title)
	}
	n := &model.Notification{
		ID:        uuid.NewString(),
		UserID:    solution.UserID,
		Title:     "Solution evaluated",
		Message:   fmt.Sprintf("An administrator scored %s with %d points.", subject, score),
		Type:      model.NotificationEvaluation,
		CreatedAt: s.now().UTC(),
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		logger.FromContext(ctx).Warn("Failed to notify evaluation", "solution_id", solution.ID, "error", err)
		return
	}
	metrics.NotificationsCreated.WithLabelValues(string(model.NotificationEvaluation)).Inc()
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
