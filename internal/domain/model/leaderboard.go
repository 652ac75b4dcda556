package model

type LeaderboardEntry struct {
	Rank   int      `json:"rank"`
	UserID string   `json:"user_id"`
	Name   string   `json:"name"`
	Points int      `json:"points"`
	Badges []string `json:"badges"`
}

type PlatformStats struct {
	TotalUsers         int `json:"total_users"`
	TotalChallenges    int `json:"total_challenges"`
	ActiveChallenges   int `json:"active_challenges"`
	TotalSolutions     int `json:"total_solutions"`
	EvaluatedSolutions int `json:"evaluated_solutions"`
	PendingEvaluations int `json:"pending_evaluations"`
}
