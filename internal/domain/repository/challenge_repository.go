package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"gamification_hub/internal/common"
	"gamification_hub/internal/domain/model"
	"strings"
)

type ChallengeRepository interface {
	Create(ctx context.Context, challenge *model.Challenge) error
	Update(ctx context.Context, challenge *model.Challenge) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Challenge, error)
	FindBySlug(ctx context.Context, slug string) (*model.Challenge, error)
	List(ctx context.Context, filter model.ChallengeFilter) ([]model.Challenge, int, error)
	Count(ctx context.Context, status model.ChallengeStatus) (int, error)
}

type pgChallengeRepository struct {
	db *sql.DB
}

func NewPgChallengeRepository(db *sql.DB) ChallengeRepository {
	return &pgChallengeRepository{db: db}
}

const challengeColumns = `id, title, slug, description, category, difficulty, deadline, criteria,
	points_reward, status, created_by, tags, created_at, updated_at`

func scanChallenge(row interface{ Scan(...interface{}) error }, c *model.Challenge) error {
	return row.Scan(
		&c.ID, &c.Title, &c.Slug, &c.Description, &c.Category, &c.Difficulty, &c.Deadline, &c.Criteria,
		&c.PointsReward, &c.Status, &c.CreatedByID, textArray(&c.Tags), &c.CreatedAt, &c.UpdatedAt,
	)
}

func (r *pgChallengeRepository) Create(ctx context.Context, c *model.Challenge) error {
	query := `INSERT INTO challenges (id, title, slug, description, category, difficulty, deadline, criteria,
	                                  points_reward, status, created_by, tags, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Title, c.Slug, c.Description, c.Category, c.Difficulty,
		c.Deadline, c.Criteria, c.PointsReward, c.Status, c.CreatedByID, nonNil(c.Tags), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) { // Unique constraint for slug
			return fmt.Errorf("challenge with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgChallengeRepository.Create: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields. id and created_by never change.
func (r *pgChallengeRepository) Update(ctx context.Context, c *model.Challenge) error {
	query := `UPDATE challenges SET
	                title = $1, slug = $2, description = $3, category = $4, difficulty = $5,
	                deadline = $6, criteria = $7, points_reward = $8, status = $9, tags = $10,
	                updated_at = $11
	          WHERE id = $12`
	res, err := r.db.ExecContext(ctx, query, c.Title, c.Slug, c.Description, c.Category, c.Difficulty,
		c.Deadline, c.Criteria, c.PointsReward, c.Status, nonNil(c.Tags), c.UpdatedAt, c.ID)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("challenge with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgChallengeRepository.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgChallengeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM challenges WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgChallengeRepository) FindByID(ctx context.Context, id string) (*model.Challenge, error) {
	return r.findOne(ctx, "FindByID", `SELECT `+challengeColumns+` FROM challenges WHERE id = $1`, id)
}

func (r *pgChallengeRepository) FindBySlug(ctx context.Context, slug string) (*model.Challenge, error) {
	return r.findOne(ctx, "FindBySlug", `SELECT `+challengeColumns+` FROM challenges WHERE slug = $1`, slug)
}

func (r *pgChallengeRepository) findOne(ctx context.Context, op, query string, arg string) (*model.Challenge, error) {
	c := &model.Challenge{}
	if err := scanChallenge(r.db.QueryRowContext(ctx, query, arg), c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgChallengeRepository.%s: %w", op, err)
	}
	return c, nil
}

// List builds the WHERE clause from the non-empty filter fields.
func (r *pgChallengeRepository) List(ctx context.Context, f model.ChallengeFilter) ([]model.Challenge, int, error) {
	var conditions []string
	var args []interface{}
	argID := 1

	if f.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argID))
		args = append(args, f.Category)
		argID++
	}
	if f.Difficulty != "" {
		conditions = append(conditions, fmt.Sprintf("difficulty = $%d", argID))
		args = append(args, f.Difficulty)
		argID++
	}
	if f.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, f.Status)
		argID++
	}
	if f.Tag != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(tags)", argID))
		args = append(args, f.Tag)
		argID++
	}
	if f.SearchTerm != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argID, argID))
		args = append(args, "%"+f.SearchTerm+"%")
		argID++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM challenges`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgChallengeRepository.List count: %w", err)
	}

	query := `SELECT ` + challengeColumns + ` FROM challenges` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgChallengeRepository.List query: %w", err)
	}
	defer rows.Close()

	challenges := []model.Challenge{}
	for rows.Next() {
		var c model.Challenge
		if err := scanChallenge(rows, &c); err != nil {
			return nil, 0, fmt.Errorf("pgChallengeRepository.List scan: %w", err)
		}
		challenges = append(challenges, c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgChallengeRepository.List rows.Err: %w", err)
	}
	return challenges, total, nil
}

// Count counts challenges, all of them when status is empty.
func (r *pgChallengeRepository) Count(ctx context.Context, status model.ChallengeStatus) (int, error) {
	var n int
	var err error
	if status == "" {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM challenges`).Scan(&n)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM challenges WHERE status = $1`, status).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("pgChallengeRepository.Count: %w", err)
	}
	return n, nil
}
