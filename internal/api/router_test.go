package api

import (
	"bytes"
	"context"
	"encoding/json"
	"gamification_hub/internal/app/service"
	"gamification_hub/internal/common"
	"gamification_hub/internal/common/security"
	"gamification_hub/internal/domain/model"
	"gamification_hub/internal/domain/repository"
	"gamification_hub/internal/platform/config"
	"gamification_hub/internal/platform/logger"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	config.AppConfig = &config.Config{JWTKey: []byte("test-secret"), JWTExp: time.Hour}
	security.InitJWT()
	os.Exit(m.Run())
}

// userRepo keeps just enough of UserRepository for the auth flow.
type userRepo struct {
	repository.UserRepository
	mu    sync.Mutex
	users map[string]*model.User
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.users {
		if other.Email == u.Email {
			return common.ErrConflict
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return nil
}

type notificationRepo struct {
	repository.NotificationRepository
	items []model.Notification
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	var out []model.Notification
	for _, n := range r.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	n := 0
	for _, item := range r.items {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func newTestRouter(t *testing.T) (http.Handler, *notificationRepo) {
	t.Helper()
	users := &userRepo{users: make(map[string]*model.User)}
	notifications := &notificationRepo{}
	svc := Services{
		Auth:          service.NewAuthService(users),
		Challenges:    service.NewChallengeService(nil, nil, users, notifications),
		Solutions:     service.NewSolutionService(nil, nil, notifications, nil),
		Notifications: service.NewNotificationService(notifications),
		Leaderboard:   service.NewLeaderboardService(users, 10),
		Admin:         service.NewAdminService(users, nil, nil, notifications, nil, nil),
	}
	return NewRouter(svc, logger.New("test", "test", "error", false), []string{"*"}), notifications
}

func call(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := call(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_Metrics(t *testing.T) {
	h, _ := newTestRouter(t)
	call(t, h, http.MethodGet, "/health", "", nil)

	rec := call(t, h, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gamification_http_requests_total")
}

func TestRouter_RegisterLoginMe(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := call(t, h, http.MethodPost, "/api/v1/register", "", map[string]string{
		"email": "ana@pucrs.edu.br", "name": "Ana", "password": "StudentPass123!",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var reg service.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.Equal(t, "bearer", reg.TokenType)
	assert.NotContains(t, rec.Body.String(), "hashed_password")

	rec = call(t, h, http.MethodPost, "/api/v1/register", "", map[string]string{
		"email": "ana@pucrs.edu.br", "name": "Ana", "password": "StudentPass123!",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(t, h, http.MethodPost, "/api/v1/login", "", map[string]string{
		"email": "ana@pucrs.edu.br", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(t, h, http.MethodPost, "/api/v1/login", "", map[string]string{
		"email": "ana@pucrs.edu.br", "password": "StudentPass123!",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var login service.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	rec = call(t, h, http.MethodGet, "/api/v1/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, reg.User.ID, me.ID)
	assert.Equal(t, model.RoleStudent, me.Role)
}

func TestRouter_BadPayloads(t *testing.T) {
	h, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h, http.MethodPost, "/api/v1/register", "", map[string]string{"email": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation failed")
}

func TestRouter_AccessControl(t *testing.T) {
	h, _ := newTestRouter(t)
	student, err := security.GenerateToken("s1", model.RoleStudent)
	require.NoError(t, err)

	tests := []struct {
		method, path, token string
		want                int
	}{
		{http.MethodGet, "/api/v1/challenges", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/solutions/my", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/notifications", "", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/challenges", student, http.StatusForbidden},
		{http.MethodDelete, "/api/v1/challenges/c1", student, http.StatusForbidden},
		{http.MethodGet, "/api/v1/solutions", student, http.StatusForbidden},
		{http.MethodPut, "/api/v1/solutions/evaluate", student, http.StatusForbidden},
		{http.MethodGet, "/api/v1/admin/stats", student, http.StatusForbidden},
		{http.MethodPost, "/api/v1/admin/badges/rescan", student, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := call(t, h, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouter_RescanWithoutRedis(t *testing.T) {
	h, _ := newTestRouter(t)
	admin, err := security.GenerateToken("a1", model.RoleAdmin)
	require.NoError(t, err)

	rec := call(t, h, http.MethodPost, "/api/v1/admin/badges/rescan", admin, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_Notifications(t *testing.T) {
	h, notifications := newTestRouter(t)
	notifications.items = []model.Notification{
		{ID: "n1", UserID: "s1", Title: "New badge: First Submission", Type: model.NotificationBadge},
		{ID: "n2", UserID: "s2", Title: "Solution evaluated", Type: model.NotificationEvaluation},
	}
	token, err := security.GenerateToken("s1", model.RoleStudent)
	require.NoError(t, err)

	rec := call(t, h, http.MethodGet, "/api/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "n1", list[0].ID)

	rec = call(t, h, http.MethodGet, "/api/v1/notifications/unread-count", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"unread_count":1}`, rec.Body.String())
}
