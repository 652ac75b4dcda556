package model

import "time"

type Solution struct {
	ID            string     `json:"id"`
	ChallengeID   string     `json:"challenge_id"`
	UserID        string     `json:"user_id"`
	Content       string     `json:"content"`
	Files         []string   `json:"files"`      // base64 payloads
	FileNames     []string   `json:"file_names"` // same length as Files
	SubmittedAt   time.Time  `json:"submitted_at"`
	Score         *int       `json:"score,omitempty"`
	Feedback      *string    `json:"feedback,omitempty"`
	EvaluatedByID *string    `json:"evaluated_by,omitempty"`
	EvaluatedAt   *time.Time `json:"evaluated_at,omitempty"`
}

func (s *Solution) IsEvaluated() bool {
	return s.Score != nil
}

// SolutionEvaluation is what an administrator records when scoring a solution.
type SolutionEvaluation struct {
	SolutionID    string
	Score         int
	Feedback      string
	EvaluatedByID string
	EvaluatedAt   time.Time
}

type SolutionFilter struct {
	ChallengeID string
	UserID      string
	PendingOnly bool
	Limit       int
	Offset      int
}
