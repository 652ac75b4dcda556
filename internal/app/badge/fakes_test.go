package badge

import (
	"context"
	"errors"
	"gamification_hub/internal/common"
	"gamification_hub/internal/domain/model"
	"strconv"
	"sync"
	"time"
)

var errStoreDown = errors.New("store down")

type memStore struct {
	mu            sync.Mutex
	users         map[string]*model.User
	solutions     []model.Solution
	challenges    map[string]*model.Challenge
	notifications []model.Notification

	failAddBadges  error
	failNotifyFrom int // fail the n-th notification (1-based) and after; 0 disables
	addBadgesCalls int
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[string]*model.User),
		challenges: make(map[string]*model.Challenge),
	}
}

func (m *memStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	cp.Badges = append([]string(nil), u.Badges...)
	return &cp, nil
}

func (m *memStore) AddBadges(ctx context.Context, id string, badges []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addBadgesCalls++
	if m.failAddBadges != nil {
		return m.failAddBadges
	}
	u, ok := m.users[id]
	if !ok {
		return common.ErrNotFound
	}
	for _, b := range badges {
		if !u.HasBadge(model.BadgeID(b)) {
			u.Badges = append(u.Badges, b)
		}
	}
	return nil
}

func (m *memStore) ListByUser(ctx context.Context, userID string) ([]model.Solution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Solution
	for _, s := range m.solutions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) Create(ctx context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNotifyFrom > 0 && len(m.notifications)+1 >= m.failNotifyFrom {
		return errStoreDown
	}
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *memStore) badgesOf(id string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.users[id].Badges...)
}

func (m *memStore) notificationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notifications)
}

// challengeStore adapts memStore's challenge map to ChallengeStore; memStore
// itself already uses FindByID for users.
type challengeStore struct{ m *memStore }

func (c challengeStore) FindByID(ctx context.Context, id string) (*model.Challenge, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	ch, ok := c.m.challenges[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return ch, nil
}

var baseTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store     *memStore
	evaluator *Evaluator
	seq       int
}

func newFixture() *fixture {
	store := newMemStore()
	return &fixture{
		store:     store,
		evaluator: NewEvaluator(store, store, challengeStore{store}, store, NewKeyedMutex()),
	}
}

func (f *fixture) addUser(id string, points int, badges ...string) {
	f.store.users[id] = &model.User{ID: id, Role: model.RoleStudent, Points: points, Badges: badges, IsActive: true}
}

func (f *fixture) addChallenge(category model.ChallengeCategory) *model.Challenge {
	f.seq++
	c := &model.Challenge{
		ID:        "challenge-" + strconv.Itoa(f.seq),
		Category:  category,
		CreatedAt: baseTime,
		Status:    model.ChallengeStatusActive,
	}
	f.store.challenges[c.ID] = c
	return c
}

// addSolution records a solution submitted `after` the challenge was created.
func (f *fixture) addSolution(userID string, c *model.Challenge, after time.Duration, score *int) {
	f.seq++
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.solutions = append(f.store.solutions, model.Solution{
		ID:          "solution-" + strconv.Itoa(f.seq),
		ChallengeID: c.ID,
		UserID:      userID,
		SubmittedAt: c.CreatedAt.Add(after),
		Score:       score,
	})
}

func score(v int) *int { return &v }
