package badge

import (
	"gamification_hub/internal/domain/model"
	"time"
)

const (
	ExpertSolverThreshold   = 5
	TopPerformerPoints      = 500
	CategoryHighScore       = 80
	CategoryBadgeThreshold  = 3
	QuickSolverThreshold    = 3
	QuickSolveWindow        = 24 * time.Hour
	FirstSubmissionRequired = 1
)

// History is everything a rule may look at for one user. Challenges only
// holds parent challenges that could be resolved.
type History struct {
	User       *model.User
	Solutions  []model.Solution
	Challenges map[string]*model.Challenge
}

func (h *History) Challenge(id string) (*model.Challenge, bool) {
	c, ok := h.Challenges[id]
	return c, ok && c != nil
}

func (h *History) EvaluatedCount() int {
	n := 0
	for i := range h.Solutions {
		if h.Solutions[i].IsEvaluated() {
			n++
		}
	}
	return n
}

// Rule grants Badge when Eligible holds for the history.
type Rule struct {
	Badge    model.BadgeID
	Eligible func(h *History) bool
}

// DefaultRules is the badge catalog in evaluation order. Notifications for
// badges granted in the same pass follow this order.
var DefaultRules = buildRules()

// buildRules places one category rule per model.CategoryBadges entry between
// the points rules and quick-solver.
func buildRules() []Rule {
	rules := []Rule{
		{Badge: model.BadgeFirstSubmission, Eligible: firstSubmission},
		{Badge: model.BadgeExpertSolver, Eligible: expertSolver},
		{Badge: model.BadgeTopPerformer, Eligible: topPerformer},
	}
	for _, cb := range model.CategoryBadges {
		rules = append(rules, Rule{Badge: cb.Badge, Eligible: categoryChampion(cb.Category)})
	}
	return append(rules, Rule{Badge: model.BadgeQuickSolver, Eligible: quickSolver})
}

func firstSubmission(h *History) bool {
	return len(h.Solutions) >= FirstSubmissionRequired
}

func expertSolver(h *History) bool {
	return h.EvaluatedCount() >= ExpertSolverThreshold
}

func topPerformer(h *History) bool {
	return h.User != nil && h.User.Points >= TopPerformerPoints
}

// categoryChampion counts evaluated solutions scoring at least
// CategoryHighScore under challenges of the given category.
func categoryChampion(category model.ChallengeCategory) func(h *History) bool {
	return func(h *History) bool {
		n := 0
		for i := range h.Solutions {
			s := &h.Solutions[i]
			if s.Score == nil || *s.Score < CategoryHighScore {
				continue
			}
			c, ok := h.Challenge(s.ChallengeID)
			if !ok || c.Category != category {
				continue
			}
			n++
		}
		return n >= CategoryBadgeThreshold
	}
}

// quickSolver counts solutions submitted within QuickSolveWindow of their
// challenge's creation. Solutions without a resolvable challenge never count.
func quickSolver(h *History) bool {
	n := 0
	for i := range h.Solutions {
		s := &h.Solutions[i]
		c, ok := h.Challenge(s.ChallengeID)
		if !ok {
			continue
		}
		if s.SubmittedAt.Sub(c.CreatedAt) <= QuickSolveWindow {
			n++
		}
	}
	return n >= QuickSolverThreshold
}

// NewBadges runs rules in order and returns the badges that hold but are not
// yet part of the user's stored set.
func NewBadges(rules []Rule, h *History) []model.BadgeID {
	var out []model.BadgeID
	for _, rule := range rules {
		if h.User != nil && h.User.HasBadge(rule.Badge) {
			continue
		}
		if rule.Eligible(h) {
			out = append(out, rule.Badge)
		}
	}
	return out
}
