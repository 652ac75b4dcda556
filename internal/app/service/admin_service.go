package service

import (
	"context"
	"fmt"
	"gamification_hub/internal/common"
	"gamification_hub/internal/domain/model"
	"gamification_hub/internal/domain/repository"
	"gamification_hub/internal/platform/logger"
	"gamification_hub/internal/platform/metrics"
	"time"

	"github.com/google/uuid"
)

// RescanQueue receives user ids whose badges should be re-evaluated in the
// background.
type RescanQueue interface {
	Push(ctx context.Context, ids ...string) error
}

type AdminService struct {
	userRepo         repository.UserRepository
	challengeRepo    repository.ChallengeRepository
	solutionRepo     repository.SolutionRepository
	notificationRepo repository.NotificationRepository
	badges           BadgeEvaluator
	rescan           RescanQueue // nil when redis is disabled
}

func NewAdminService(
	userRepo repository.UserRepository,
	challengeRepo repository.ChallengeRepository,
	solutionRepo repository.SolutionRepository,
	notificationRepo repository.NotificationRepository,
	badges BadgeEvaluator,
	rescan RescanQueue,
) *AdminService {
	return &AdminService{
		userRepo:         userRepo,
		challengeRepo:    challengeRepo,
		solutionRepo:     solutionRepo,
		notificationRepo: notificationRepo,
		badges:           badges,
		rescan:           rescan,
	}
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type SetPointsRequest struct {
	Points *int `json:"points" validate:"required,gte=0"`
}

type RescanRequest struct {
	UserIDs []string `json:"user_ids" validate:"omitempty,dive,required"`
}

type UserList struct {
	Users []model.User `json:"users"`
	Total int          `json:"total"`
}

func (s *AdminService) Stats(ctx context.Context) (*model.PlatformStats, error) {
	users, err := s.userRepo.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	challenges, err := s.challengeRepo.Count(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to count challenges: %w", err)
	}
	active, err := s.challengeRepo.Count(ctx, model.ChallengeStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to count active challenges: %w", err)
	}
	total, evaluated, err := s.solutionRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count solutions: %w", err)
	}
	return &model.PlatformStats{
		TotalUsers:         users,
		TotalChallenges:    challenges,
		ActiveChallenges:   active,
		TotalSolutions:     total,
		EvaluatedSolutions: evaluated,
		PendingEvaluations: total - evaluated,
	}, nil
}

func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) (*UserList, error) {
	if offset < 0 {
		offset = 0
	}
	users, total, err := s.userRepo.List(ctx, clampLimit(limit, defaultPageSize, maxPageSize), offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &UserList{Users: users, Total: total}, nil
}

// SetActive enables or disables an account and tells its owner. Admins cannot
// disable themselves.
func (s *AdminService) SetActive(ctx context.Context, adminID, userID string, req SetActiveRequest) (*model.User, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	active := *req.IsActive
	if adminID == userID && !active {
		return nil, fmt.Errorf("cannot deactivate your own account: %w", common.ErrBadRequest)
	}
	if err := s.userRepo.SetActive(ctx, userID, active); err != nil {
		return nil, err
	}

	title, message := "Account reactivated", "Your account has been reactivated by an administrator."
	if !active {
		title, message = "Account deactivated", "Your account has been deactivated by an administrator."
	}
	n := &model.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      model.NotificationSystem,
		CreatedAt: time.Now().UTC(),
	}
	log := logger.FromContext(ctx).With("user_id", userID, "admin_id", adminID)
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		log.Warn("Failed to notify account status change", "error", err)
	} else {
		metrics.NotificationsCreated.WithLabelValues(string(model.NotificationSystem)).Inc()
	}
	log.Info("Account status changed", "is_active", active)

	return s.userRepo.FindByID(ctx, userID)
}

// SetPoints overwrites a user's points. Besides submission and scoring, this
// is the one other event that runs the badge evaluator: a correction can cross
// the top-performer threshold. Badges already held are kept when points drop.
func (s *AdminService) SetPoints(ctx context.Context, adminID, userID string, req SetPointsRequest) (*model.User, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetPoints(ctx, userID, *req.Points); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Points corrected", "user_id", userID, "points", *req.Points, "admin_id", adminID)

	evaluateBadges(ctx, s.badges, userID, "points_correction")
	return s.userRepo.FindByID(ctx, userID)
}

// QueueRescan pushes the given users, or every active user when none are
// given, onto the rescan queue. It returns how many ids were queued.
func (s *AdminService) QueueRescan(ctx context.Context, req RescanRequest) (int, error) {
	if s.rescan == nil {
		return 0, fmt.Errorf("badge rescan requires redis: %w", common.ErrServiceUnavailable)
	}
	if err := common.ValidateStruct(req); err != nil {
		return 0, err
	}
	ids := req.UserIDs
	if len(ids) == 0 {
		var err error
		ids, err = s.userRepo.ListActiveIDs(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to list users: %w", err)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := s.rescan.Push(ctx, ids...); err != nil {
		return 0, fmt.Errorf("failed to queue rescan: %w: %v", common.ErrServiceUnavailable, err)
	}
	metrics.RescanQueued.Add(float64(len(ids)))
	logger.FromContext(ctx).Info("Badge rescan queued", "users", len(ids))
	return len(ids), nil
}
