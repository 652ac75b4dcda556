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

type SolutionRepository interface {
	Create(ctx context.Context, solution *model.Solution) error
	FindByID(ctx context.Context, id string) (*model.Solution, error)
	FindByChallengeAndUser(ctx context.Context, challengeID, userID string) (*model.Solution, error)
	ListByUser(ctx context.Context, userID string) ([]model.Solution, error)
	List(ctx context.Context, filter model.SolutionFilter) ([]model.Solution, int, error)
	// RecordEvaluation overwrites the evaluation fields and moves the author's
	// points by the score delta in one transaction. It returns the updated
	// solution and the score it had before, if any.
	RecordEvaluation(ctx context.Context, ev model.SolutionEvaluation) (*model.Solution, *int, error)
	CountAll(ctx context.Context) (total int, evaluated int, err error)
}

type pgSolutionRepository struct {
	db *sql.DB
}

func NewPgSolutionRepository(db *sql.DB) SolutionRepository {
	return &pgSolutionRepository{db: db}
}

const solutionColumns = `id, challenge_id, user_id, content, files, file_names, submitted_at,
	score, feedback, evaluated_by, evaluated_at`

func scanSolution(row interface{ Scan(...interface{}) error }, s *model.Solution) error {
	return row.Scan(
		&s.ID, &s.ChallengeID, &s.UserID, &s.Content, textArray(&s.Files), textArray(&s.FileNames), &s.SubmittedAt,
		&s.Score, &s.Feedback, &s.EvaluatedByID, &s.EvaluatedAt,
	)
}

func (r *pgSolutionRepository) Create(ctx context.Context, s *model.Solution) error {
	query := `INSERT INTO solutions (id, challenge_id, user_id, content, files, file_names, submitted_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.ChallengeID, s.UserID, s.Content,
		nonNil(s.Files), nonNil(s.FileNames), s.SubmittedAt)
	if err != nil {
		if common.IsUniqueViolation(err) { // (challenge_id, user_id)
			return fmt.Errorf("solution already submitted for this challenge: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgSolutionRepository.Create: %w", err)
	}
	return nil
}

func (r *pgSolutionRepository) FindByID(ctx context.Context, id string) (*model.Solution, error) {
	s := &model.Solution{}
	err := scanSolution(r.db.QueryRowContext(ctx, `SELECT `+solutionColumns+` FROM solutions WHERE id = $1`, id), s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSolutionRepository.FindByID: %w", err)
	}
	return s, nil
}

func (r *pgSolutionRepository) FindByChallengeAndUser(ctx context.Context, challengeID, userID string) (*model.Solution, error) {
	query := `SELECT ` + solutionColumns + ` FROM solutions WHERE challenge_id = $1 AND user_id = $2`
	s := &model.Solution{}
	if err := scanSolution(r.db.QueryRowContext(ctx, query, challengeID, userID), s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSolutionRepository.FindByChallengeAndUser: %w", err)
	}
	return s, nil
}

func (r *pgSolutionRepository) ListByUser(ctx context.Context, userID string) ([]model.Solution, error) {
	query := `SELECT ` + solutionColumns + ` FROM solutions WHERE user_id = $1 ORDER BY submitted_at ASC`
	return r.query(ctx, "ListByUser", query, userID)
}

func (r *pgSolutionRepository) List(ctx context.Context, f model.SolutionFilter) ([]model.Solution, int, error) {
	var conditions []string
	var args []interface{}
	argID := 1

	if f.ChallengeID != "" {
		conditions = append(conditions, fmt.Sprintf("challenge_id = $%d", argID))
		args = append(args, f.ChallengeID)
		argID++
	}
	if f.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argID))
		args = append(args, f.UserID)
		argID++
	}
	if f.PendingOnly {
		conditions = append(conditions, "score IS NULL")
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM solutions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgSolutionRepository.List count: %w", err)
	}

	query := `SELECT ` + solutionColumns + ` FROM solutions` + where +
		fmt.Sprintf(" ORDER BY submitted_at DESC LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, f.Limit, f.Offset)

	solutions, err := r.query(ctx, "List", query, args...)
	if err != nil {
		return nil, 0, err
	}
	return solutions, total, nil
}

func (r *pgSolutionRepository) RecordEvaluation(ctx context.Context, ev model.SolutionEvaluation) (*model.Solution, *int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("pgSolutionRepository.RecordEvaluation begin: %w", err)
	}
	defer tx.Rollback()

	// Row lock: two admins scoring the same solution must see each other's score.
	var userID string
	var previous *int
	err = tx.QueryRowContext(ctx, `SELECT user_id, score FROM solutions WHERE id = $1 FOR UPDATE`, ev.SolutionID).
		Scan(&userID, &previous)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, common.ErrNotFound
		}
		return nil, nil, fmt.Errorf("pgSolutionRepository.RecordEvaluation lock: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE solutions SET score = $1, feedback = $2, evaluated_by = $3, evaluated_at = $4 WHERE id = $5`,
		ev.Score, ev.Feedback, ev.EvaluatedByID, ev.EvaluatedAt, ev.SolutionID)
	if err != nil {
		return nil, nil, fmt.Errorf("pgSolutionRepository.RecordEvaluation update: %w", err)
	}

	delta := ev.Score
	if previous != nil {
		delta -= *previous
	}
	if delta != 0 {
		_, err = tx.ExecContext(ctx, `UPDATE users SET points = GREATEST(points + $1, 0) WHERE id = $2`, delta, userID)
		if err != nil {
			return nil, nil, fmt.Errorf("pgSolutionRepository.RecordEvaluation points: %w", err)
		}
	}

	updated := &model.Solution{}
	err = scanSolution(tx.QueryRowContext(ctx, `SELECT `+solutionColumns+` FROM solutions WHERE id = $1`, ev.SolutionID), updated)
	if err != nil {
		return nil, nil, fmt.Errorf("pgSolutionRepository.RecordEvaluation reload: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("pgSolutionRepository.RecordEvaluation commit: %w", err)
	}
	return updated, previous, nil
}

func (r *pgSolutionRepository) CountAll(ctx context.Context) (int, int, error) {
	var total, evaluated int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(score) FROM solutions`).Scan(&total, &evaluated)
	if err != nil {
		return 0, 0, fmt.Errorf("pgSolutionRepository.CountAll: %w", err)
	}
	return total, evaluated, nil
}

func (r *pgSolutionRepository) query(ctx context.Context, op, query string, args ...interface{}) ([]model.Solution, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgSolutionRepository.%s query: %w", op, err)
	}
	defer rows.Close()

	solutions := []model.Solution{}
	for rows.Next() {
		var s model.Solution
		if err := scanSolution(rows, &s); err != nil {
			return nil, fmt.Errorf("pgSolutionRepository.%s scan: %w", op, err)
		}
		solutions = append(solutions, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSolutionRepository.%s rows.Err: %w", op, err)
	}
	return solutions, nil
}
