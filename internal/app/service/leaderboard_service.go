package service

import (
	"context"
	"fmt"
	"gamification_hub/internal/domain/model"
	"gamification_hub/internal/domain/repository"
)

type LeaderboardService struct {
	userRepo repository.UserRepository
	limit    int
}

// NewLeaderboardService ranks at most limit users per request.
func NewLeaderboardService(userRepo repository.UserRepository, limit int) *LeaderboardService {
	if limit <= 0 {
		limit = 50
	}
	return &LeaderboardService{userRepo: userRepo, limit: limit}
}

// Top ranks active users by points, earlier accounts first on ties.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	limit = clampLimit(limit, s.limit, s.limit)
	entries, err := s.userRepo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	return entries, nil
}
