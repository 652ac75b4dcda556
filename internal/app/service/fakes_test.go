package service

import (
	"context"
	"errors"
	"gamification_hub/internal/common"
	"gamification_hub/internal/domain/model"
	"sort"
	"sync"
	"time"
)

var errDown = errors.New("database down")

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[string]*model.User
	listErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[string]*model.User)}
}

func (f *fakeUsers) put(u *model.User) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
	return u
}

func (f *fakeUsers) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == user.Email {
			return common.ErrConflict
		}
	}
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsers) FindByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) List(ctx context.Context, limit, offset int) ([]model.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []model.User
	for _, u := range f.byID {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (f *fakeUsers) ListActiveIDs(ctx context.Context, roles ...string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var ids []string
	for _, u := range f.byID {
		if !u.IsActive {
			continue
		}
		if len(roles) > 0 && !containsString(roles, u.Role) {
			continue
		}
		ids = append(ids, u.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeUsers) CountActive(ctx context.Context) (int, error) {
	ids, err := f.ListActiveIDs(ctx)
	return len(ids), err
}

func (f *fakeUsers) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return f.update(id, func(u *model.User) { u.LastLogin = &at })
}

func (f *fakeUsers) SetActive(ctx context.Context, id string, active bool) error {
	return f.update(id, func(u *model.User) { u.IsActive = active })
}

func (f *fakeUsers) SetPoints(ctx context.Context, id string, points int) error {
	return f.update(id, func(u *model.User) { u.Points = points })
}

func (f *fakeUsers) AddBadges(ctx context.Context, id string, badges []string) error {
	return f.update(id, func(u *model.User) {
		for _, b := range badges {
			if !u.HasBadge(model.BadgeID(b)) {
				u.Badges = append(u.Badges, b)
			}
		}
	})
}

func (f *fakeUsers) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var active []*model.User
	for _, u := range f.byID {
		if u.IsActive {
			active = append(active, u)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].Points != active[j].Points {
			return active[i].Points > active[j].Points
		}
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})
	var out []model.LeaderboardEntry
	for i, u := range active {
		if i == limit {
			break
		}
		out = append(out, model.LeaderboardEntry{Rank: i + 1, UserID: u.ID, Name: u.Name, Points: u.Points, Badges: u.Badges})
	}
	return out, nil
}

func (f *fakeUsers) update(id string, fn func(u *model.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	fn(u)
	return nil
}

type fakeChallenges struct {
	mu        sync.Mutex
	byID      map[string]*model.Challenge
	conflicts int // Create reports a slug conflict this many times first
	lastList  model.ChallengeFilter
}

func newFakeChallenges() *fakeChallenges {
	return &fakeChallenges{byID: make(map[string]*model.Challenge)}
}

func (f *fakeChallenges) put(c *model.Challenge) *model.Challenge {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[c.ID] = c
	return c
}

func (f *fakeChallenges) Create(ctx context.Context, c *model.Challenge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflicts > 0 {
		f.conflicts--
		return common.ErrConflict
	}
	for _, other := range f.byID {
		if other.Slug == c.Slug {
			return common.ErrConflict
		}
	}
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeChallenges) Update(ctx context.Context, c *model.Challenge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[c.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeChallenges) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeChallenges) FindByID(ctx context.Context, id string) (*model.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeChallenges) FindBySlug(ctx context.Context, slug string) (*model.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byID {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeChallenges) List(ctx context.Context, filter model.ChallengeFilter) ([]model.Challenge, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = filter
	var out []model.Challenge
	for _, c := range f.byID {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Category != "" && c.Category != filter.Category {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *fakeChallenges) Count(ctx context.Context, status model.ChallengeStatus) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.byID {
		if status == "" || c.Status == status {
			n++
		}
	}
	return n, nil
}

type fakeSolutions struct {
	mu    sync.Mutex
	items []*model.Solution
	users *fakeUsers // points move with evaluations
}

func (f *fakeSolutions) put(s *model.Solution) *model.Solution {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, s)
	return s
}

func (f *fakeSolutions) Create(ctx context.Context, s *model.Solution) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.items {
		if other.ChallengeID == s.ChallengeID && other.UserID == s.UserID {
			return common.ErrConflict
		}
	}
	cp := *s
	f.items = append(f.items, &cp)
	return nil
}

func (f *fakeSolutions) FindByID(ctx context.Context, id string) (*model.Solution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.items {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeSolutions) FindByChallengeAndUser(ctx context.Context, challengeID, userID string) (*model.Solution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.items {
		if s.ChallengeID == challengeID && s.UserID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeSolutions) ListByUser(ctx context.Context, userID string) ([]model.Solution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Solution
	for _, s := range f.items {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSolutions) List(ctx context.Context, filter model.SolutionFilter) ([]model.Solution, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Solution
	for _, s := range f.items {
		if filter.ChallengeID != "" && s.ChallengeID != filter.ChallengeID {
			continue
		}
		if filter.PendingOnly && s.Score != nil {
			continue
		}
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (f *fakeSolutions) RecordEvaluation(ctx context.Context, ev model.SolutionEvaluation) (*model.Solution, *int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.items {
		if s.ID != ev.SolutionID {
			continue
		}
		previous := s.Score
		score, feedback, by, at := ev.Score, ev.Feedback, ev.EvaluatedByID, ev.EvaluatedAt
		s.Score, s.Feedback, s.EvaluatedByID, s.EvaluatedAt = &score, &feedback, &by, &at

		delta := ev.Score
		if previous != nil {
			delta -= *previous
		}
		if f.users != nil {
			_ = f.users.update(s.UserID, func(u *model.User) {
				u.Points += delta
				if u.Points < 0 {
					u.Points = 0
				}
			})
		}
		cp := *s
		return &cp, previous, nil
	}
	return nil, nil, common.ErrNotFound
}

func (f *fakeSolutions) CountAll(ctx context.Context) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	evaluated := 0
	for _, s := range f.items {
		if s.Score != nil {
			evaluated++
		}
	}
	return len(f.items), evaluated, nil
}

type fakeNotifications struct {
	mu        sync.Mutex
	items     []model.Notification
	createErr error
}

func (f *fakeNotifications) Create(ctx context.Context, n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.items = append(f.items, *n)
	return nil
}

func (f *fakeNotifications) CreateMany(ctx context.Context, ns []model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.items = append(f.items, ns...)
	return nil
}

func (f *fakeNotifications) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for i := len(f.items) - 1; i >= 0 && len(out) < limit; i-- {
		n := f.items[i]
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeNotifications) CountUnread(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, item := range f.items {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) SetRead(ctx context.Context, id, userID string, read bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].UserID == userID {
			f.items[i].IsRead = read
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeNotifications) MarkAllRead(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for i := range f.items {
		if f.items[i].UserID == userID && !f.items[i].IsRead {
			f.items[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) ofType(t model.NotificationType) []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for _, n := range f.items {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// fakeEvaluator records which users were evaluated.
type fakeEvaluator struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, userID string) ([]model.BadgeID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, userID)
	return nil, f.err
}

type fakeQueue struct {
	pushed []string
	err    error
}

func (q *fakeQueue) Push(ctx context.Context, ids ...string) error {
	if q.err != nil {
		return q.err
	}
	q.pushed = append(q.pushed, ids...)
	return nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// fixedClock is 2025-03-10 12:00 UTC.
var fixedClock = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedClock }
