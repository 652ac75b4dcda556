package repository

import (
	"context"
	"database/sql"
	"gamification_hub/internal/common"
	"gamification_hub/internal/domain/model"
	"gamification_hub/internal/platform/database"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to TEST_DATABASE_URL and applies the schema. Tests are
// skipped when it is unset.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, db.PingContext(ctx))
	require.NoError(t, database.Migrate(ctx, db))
	return db
}

func createTestUser(t *testing.T, db *sql.DB, repo UserRepository, badges ...string) *model.User {
	t.Helper()
	id := uuid.NewString()
	u := &model.User{
		ID:             id,
		Email:          id + "@example.test",
		Name:           "Badge Tester",
		HashedPassword: "x",
		Role:           model.RoleStudent,
		Badges:         badges,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), u))
	t.Cleanup(func() { _, _ = db.Exec(`DELETE FROM users WHERE id = $1`, id) })
	return u
}

func TestPgUserRepository_AddBadgesAppendsMissingInOrder(t *testing.T) {
	db := openTestDB(t)
	repo := NewPgUserRepository(db)
	ctx := context.Background()
	u := createTestUser(t, db, repo, "first-submission")

	require.NoError(t, repo.AddBadges(ctx, u.ID, []string{"quick-solver", "first-submission", "expert-solver"}))

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"first-submission", "quick-solver", "expert-solver"}, got.Badges)

	require.NoError(t, repo.AddBadges(ctx, u.ID, []string{"expert-solver"}))
	got, err = repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"first-submission", "quick-solver", "expert-solver"}, got.Badges)
}

func TestPgUserRepository_AddBadgesUnknownUser(t *testing.T) {
	db := openTestDB(t)
	repo := NewPgUserRepository(db)

	err := repo.AddBadges(context.Background(), uuid.NewString(), []string{"quick-solver"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPgUserRepository_AddBadgesConcurrentUnion(t *testing.T) {
	db := openTestDB(t)
	repo := NewPgUserRepository(db)
	u := createTestUser(t, db, repo)

	sets := [][]string{
		{"first-submission", "expert-solver"},
		{"expert-solver", "top-performer"},
		{"quick-solver"},
		{"health-advocate", "first-submission"},
		{"top-performer", "quick-solver", "education-innovator"},
	}
	var wg sync.WaitGroup
	for round := 0; round < 4; round++ {
		for _, set := range sets {
			wg.Add(1)
			go func(badges []string) {
				defer wg.Done()
				assert.NoError(t, repo.AddBadges(context.Background(), u.ID, badges))
			}(set)
		}
	}
	wg.Wait()

	got, err := repo.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"first-submission", "expert-solver", "top-performer",
		"quick-solver", "health-advocate", "education-innovator",
	}, got.Badges)
}
