package model

import (
	"time"
)

type ChallengeCategory string
type ChallengeDifficulty string
type ChallengeStatus string

const (
	CategoryTechnology     ChallengeCategory = "technology"
	CategorySustainability ChallengeCategory = "sustainability"
	CategoryEducation      ChallengeCategory = "education"
	CategoryHealth         ChallengeCategory = "health"
	CategoryInnovation     ChallengeCategory = "innovation"

	DifficultyBeginner     ChallengeDifficulty = "beginner"
	DifficultyIntermediate ChallengeDifficulty = "intermediate"
	DifficultyAdvanced     ChallengeDifficulty = "advanced"

	ChallengeStatusActive     ChallengeStatus = "active"
	ChallengeStatusClosed     ChallengeStatus = "closed"
	ChallengeStatusEvaluation ChallengeStatus = "evaluation"
)

type Challenge struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Slug         string              `json:"slug"`
	Description  string              `json:"description"`
	Category     ChallengeCategory   `json:"category"`
	Difficulty   ChallengeDifficulty `json:"difficulty"`
	Deadline     time.Time           `json:"deadline"`
	Criteria     string              `json:"criteria"`
	PointsReward int                 `json:"points_reward"`
	Status       ChallengeStatus     `json:"status"`
	CreatedByID  string              `json:"created_by"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Tags         []string            `json:"tags"`
}

// ChallengeView is a challenge as seen by one user.
type ChallengeView struct {
	Challenge
	CanSubmit     bool `json:"can_submit"`
	UserSubmitted bool `json:"user_submitted"`
}

// AcceptsSubmissionsAt reports whether a new solution may be submitted at t.
func (c *Challenge) AcceptsSubmissionsAt(t time.Time) bool {
	return c.Status == ChallengeStatusActive && t.Before(c.Deadline)
}

type ChallengeFilter struct {
	Category   ChallengeCategory
	Difficulty ChallengeDifficulty
	Status     ChallengeStatus
	Tag        string
	SearchTerm string
	Limit      int
	Offset     int
}
