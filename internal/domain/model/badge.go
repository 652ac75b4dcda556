package model

// BadgeID identifies an entry of the fixed badge catalog. Only the id is
// persisted, in the owning user's badge set.
type BadgeID string

const (
	BadgeFirstSubmission        BadgeID = "first-submission"
	BadgeExpertSolver           BadgeID = "expert-solver"
	BadgeTopPerformer           BadgeID = "top-performer"
	BadgeSustainabilityChampion BadgeID = "sustainability-champion"
	BadgeTechnologyPioneer      BadgeID = "technology-pioneer"
	BadgeHealthAdvocate         BadgeID = "health-advocate"
	BadgeEducationInnovator     BadgeID = "education-innovator"
	BadgeQuickSolver            BadgeID = "quick-solver"
)

var badgeNames = map[BadgeID]string{
	BadgeFirstSubmission:        "First Submission",
	BadgeExpertSolver:           "Expert Solver",
	BadgeTopPerformer:           "Top Performer",
	BadgeSustainabilityChampion: "Sustainability Champion",
	BadgeTechnologyPioneer:      "Technology Pioneer",
	BadgeHealthAdvocate:         "Health Advocate",
	BadgeEducationInnovator:     "Education Innovator",
	BadgeQuickSolver:            "Quick Solver",
}

// DisplayName returns the human readable badge name, falling back to the id.
func (b BadgeID) DisplayName() string {
	if name, ok := badgeNames[b]; ok {
		return name
	}
	return string(b)
}

func (b BadgeID) IsKnown() bool {
	_, ok := badgeNames[b]
	return ok
}

// CategoryBadge pairs a challenge category with the badge it awards.
type CategoryBadge struct {
	Category ChallengeCategory
	Badge    BadgeID
}

// CategoryBadges lists the category badges in evaluation order. Categories
// missing here award nothing.
var CategoryBadges = []CategoryBadge{
	{Category: CategorySustainability, Badge: BadgeSustainabilityChampion},
	{Category: CategoryTechnology, Badge: BadgeTechnologyPioneer},
	{Category: CategoryHealth, Badge: BadgeHealthAdvocate},
	{Category: CategoryEducation, Badge: BadgeEducationInnovator},
}
