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
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	slugAttempts    = 3
)

type ChallengeService struct {
	challengeRepo    repository.ChallengeRepository
	solutionRepo     repository.SolutionRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	now              func() time.Time
}

func NewChallengeService(
	challengeRepo repository.ChallengeRepository,
	solutionRepo repository.SolutionRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
) *ChallengeService {
	return &ChallengeService{
		challengeRepo:    challengeRepo,
		solutionRepo:     solutionRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		now:              time.Now,
	}
}

type CreateChallengeRequest struct {
	Title        string                    `json:"title" validate:"required,min=3,max=200"`
	Description  string                    `json:"description" validate:"required"`
	Category     model.ChallengeCategory   `json:"category" validate:"required,oneof=technology sustainability education health innovation"`
	Difficulty   model.ChallengeDifficulty `json:"difficulty" validate:"required,oneof=beginner intermediate advanced"`
	Deadline     time.Time                 `json:"deadline" validate:"required"`
	Criteria     string                    `json:"criteria" validate:"required"`
	PointsReward int                       `json:"points_reward" validate:"gte=0,lte=1000"`
	Tags         []string                  `json:"tags" validate:"omitempty,max=10,dive,min=1,max=30"`
}

type UpdateChallengeRequest struct {
	Title        *string                    `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description  *string                    `json:"description,omitempty" validate:"omitempty,min=1"`
	Category     *model.ChallengeCategory   `json:"category,omitempty" validate:"omitempty,oneof=technology sustainability education health innovation"`
	Difficulty   *model.ChallengeDifficulty `json:"difficulty,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Deadline     *time.Time                 `json:"deadline,omitempty"`
	Criteria     *string                    `json:"criteria,omitempty" validate:"omitempty,min=1"`
	PointsReward *int                       `json:"points_reward,omitempty" validate:"omitempty,gte=0,lte=1000"`
	Status       *model.ChallengeStatus     `json:"status,omitempty" validate:"omitempty,oneof=active closed evaluation"`
	Tags         *[]string                  `json:"tags,omitempty" validate:"omitempty,max=10,dive,min=1,max=30"`
}

// ListChallengesQuery is the parsed query string of the challenge listing.
// An empty Status lists active challenges; "all" lifts the status filter.
type ListChallengesQuery struct {
	Category   model.ChallengeCategory
	Difficulty model.ChallengeDifficulty
	Status     string
	Tag        string
	Search     string
	Limit      int
	Offset     int
}

type ChallengeList struct {
	Challenges []model.ChallengeView `json:"challenges"`
	Total      int                   `json:"total"`
}

func (s *ChallengeService) Create(ctx context.Context, adminID string, req CreateChallengeRequest) (*model.Challenge, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if !req.Deadline.After(now) {
		return nil, fmt.Errorf("%w: deadline must be in the future", common.ErrValidation)
	}

	challenge := &model.Challenge{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Difficulty:   req.Difficulty,
		Deadline:     req.Deadline.UTC(),
		Criteria:     req.Criteria,
		PointsReward: req.PointsReward,
		Status:       model.ChallengeStatusActive,
		CreatedByID:  adminID,
		CreatedAt:    now,
		UpdatedAt:    now,
		Tags:         normalizeTags(req.Tags),
	}

	base := slug.Make(req.Title)
	challenge.Slug = base
	var err error
	for attempt := 0; attempt < slugAttempts; attempt++ {
		err = s.challengeRepo.Create(ctx, challenge)
		if !errors.Is(err, common.ErrConflict) {
			break
		}
		challenge.Slug = base + "-" + uuid.NewString()[:6]
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	logger.FromContext(ctx).Info("Challenge created", "challenge_id", challenge.ID, "slug", challenge.Slug, "created_by", adminID)
	s.announce(ctx, challenge)
	return challenge, nil
}

// announce notifies every active student and professor of a new challenge.
// A failure here does not undo the challenge.
func (s *ChallengeService) announce(ctx context.Context, c *model.Challenge) {
	log := logger.FromContext(ctx).With("challenge_id", c.ID)
	ids, err := s.userRepo.ListActiveIDs(ctx, model.RoleStudent, model.RoleProfessor)
	if err != nil {
		log.Warn("Failed to list challenge audience", "error", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	now := s.now().UTC()
	batch := make([]model.Notification, 0, len(ids))
	for _, id := range ids {
		batch = append(batch, model.Notification{
			ID:        uuid.NewString(),
			UserID:    id,
			Title:     "New challenge: " + c.Title,
			Message:   fmt.Sprintf("A new %s challenge is open until %s.", c.Category, c.Deadline.Format("2006-01-02")),
			Type:      model.NotificationChallenge,
			CreatedAt: now,
		})
	}
	if err := s.notificationRepo.CreateMany(ctx, batch); err != nil {
		log.Warn("Failed to announce challenge", "recipients", len(batch), "error", err)
		return
	}
	metrics.NotificationsCreated.WithLabelValues(string(model.NotificationChallenge)).Add(float64(len(batch)))
}

func (s *ChallengeService) Update(ctx context.Context, id string, req UpdateChallengeRequest) (*model.Challenge, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	challenge, err := s.challengeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		challenge.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		challenge.Description = *req.Description
	}
	if req.Category != nil {
		challenge.Category = *req.Category
	}
	if req.Difficulty != nil {
		challenge.Difficulty = *req.Difficulty
	}
	if req.Deadline != nil {
		challenge.Deadline = req.Deadline.UTC()
	}
	if req.Criteria != nil {
		challenge.Criteria = *req.Criteria
	}
	if req.PointsReward != nil {
		challenge.PointsReward = *req.PointsReward
	}
	if req.Status != nil {
		challenge.Status = *req.Status
	}
	if req.Tags != nil {
		challenge.Tags = normalizeTags(*req.Tags)
	}
	challenge.UpdatedAt = s.now().UTC()

	if err := s.challengeRepo.Update(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to update challenge: %w", err)
	}
	return challenge, nil
}

// Delete removes the challenge only. Its solutions stay, and the badge
// evaluator treats them as having an unresolvable challenge.
func (s *ChallengeService) Delete(ctx context.Context, id string) error {
	if err := s.challengeRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Challenge deleted", "challenge_id", id)
	return nil
}

// Get resolves ref as an id first, then as a slug.
func (s *ChallengeService) Get(ctx context.Context, ref, viewerID string) (*model.ChallengeView, error) {
	challenge, err := s.challengeRepo.FindByID(ctx, ref)
	if errors.Is(err, common.ErrNotFound) {
		challenge, err = s.challengeRepo.FindBySlug(ctx, ref)
	}
	if err != nil {
		return nil, err
	}

	submitted := false
	if _, err := s.solutionRepo.FindByChallengeAndUser(ctx, challenge.ID, viewerID); err == nil {
		submitted = true
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check submission: %w", err)
	}
	view := s.view(*challenge, submitted)
	return &view, nil
}

func (s *ChallengeService) List(ctx context.Context, q ListChallengesQuery, viewerID string) (*ChallengeList, error) {
	filter := model.ChallengeFilter{
		Category:   q.Category,
		Difficulty: q.Difficulty,
		Tag:        strings.ToLower(strings.TrimSpace(q.Tag)),
		SearchTerm: strings.TrimSpace(q.Search),
		Limit:      clampLimit(q.Limit, defaultPageSize, maxPageSize),
		Offset:     q.Offset,
	}
	switch q.Status {
	case "":
		filter.Status = model.ChallengeStatusActive
	case "all":
	default:
		filter.Status = model.ChallengeStatus(q.Status)
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	challenges, total, err := s.challengeRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}

	solutions, err := s.solutionRepo.ListByUser(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load viewer solutions: %w", err)
	}
	submitted := make(map[string]bool, len(solutions))
	for _, sol := range solutions {
		submitted[sol.ChallengeID] = true
	}

	views := make([]model.ChallengeView, 0, len(challenges))
	for _, c := range challenges {
		views = append(views, s.view(c, submitted[c.ID]))
	}
	return &ChallengeList{Challenges: views, Total: total}, nil
}

func (s *ChallengeService) view(c model.Challenge, submitted bool) model.ChallengeView {
	return model.ChallengeView{
		Challenge:     c,
		UserSubmitted: submitted,
		CanSubmit:     !submitted && c.AcceptsSubmissionsAt(s.now()),
	}
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
