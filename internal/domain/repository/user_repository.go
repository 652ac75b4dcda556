package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"gamification_hub/internal/common"
	"gamification_hub/internal/domain/model"
	"time"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, limit, offset int) ([]model.User, int, error)
	ListActiveIDs(ctx context.Context, roles ...string) ([]string, error)
	CountActive(ctx context.Context) (int, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetActive(ctx context.Context, id string, active bool) error
	SetPoints(ctx context.Context, id string, points int) error
	// AddBadges appends the badges missing from the stored set in one statement,
	// so concurrent callers can never drop each other's badges.
	AddBadges(ctx context.Context, id string, badges []string) error
	Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, email, name, hashed_password, role, points, badges, is_active, created_at, last_login`

func scanUser(row interface{ Scan(...interface{}) error }, user *model.User) error {
	return row.Scan(
		&user.ID, &user.Email, &user.Name, &user.HashedPassword, &user.Role, &user.Points,
		textArray(&user.Badges), &user.IsActive, &user.CreatedAt, &user.LastLogin,
	)
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, email, name, hashed_password, role, points, badges, is_active, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.Name, user.HashedPassword, user.Role,
		user.Points, nonNil(user.Badges), user.IsActive, user.CreatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("email already registered: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user := &model.User{}
	if err := scanUser(r.db.QueryRowContext(ctx, query, email), user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user := &model.User{}
	if err := scanUser(r.db.QueryRowContext(ctx, query, id), user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) List(ctx context.Context, limit, offset int) ([]model.User, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgUserRepository.List count: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgUserRepository.List query: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, 0, fmt.Errorf("pgUserRepository.List scan: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgUserRepository.List rows.Err: %w", err)
	}
	return users, total, nil
}

// ListActiveIDs returns ids of active users, restricted to roles when given.
func (r *pgUserRepository) ListActiveIDs(ctx context.Context, roles ...string) ([]string, error) {
	query := `SELECT id FROM users WHERE is_active`
	var args []interface{}
	if len(roles) > 0 {
		query += ` AND role = ANY($1)`
		args = append(args, roles)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.ListActiveIDs query: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgUserRepository.ListActiveIDs scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.ListActiveIDs rows.Err: %w", err)
	}
	return ids, nil
}

func (r *pgUserRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE is_active`).Scan(&n); err != nil {
		return 0, fmt.Errorf("pgUserRepository.CountActive: %w", err)
	}
	return n, nil
}

func (r *pgUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.execOne(ctx, "UpdateLastLogin", `UPDATE users SET last_login = $1 WHERE id = $2`, at, id)
}

func (r *pgUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.execOne(ctx, "SetActive", `UPDATE users SET is_active = $1 WHERE id = $2`, active, id)
}

func (r *pgUserRepository) SetPoints(ctx context.Context, id string, points int) error {
	return r.execOne(ctx, "SetPoints", `UPDATE users SET points = $1 WHERE id = $2`, points, id)
}

func (r *pgUserRepository) AddBadges(ctx context.Context, id string, badges []string) error {
	if len(badges) == 0 {
		return nil
	}
	// WITH ORDINALITY keeps the caller's order for the appended ids.
	query := `UPDATE users SET badges = badges || ARRAY(
	              SELECT b.badge FROM unnest($1::text[]) WITH ORDINALITY AS b(badge, ord)
	              WHERE NOT (b.badge = ANY(users.badges))
	              ORDER BY b.ord)
	          WHERE id = $2`
	return r.execOne(ctx, "AddBadges", query, badges, id)
}

func (r *pgUserRepository) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	query := `SELECT id, name, points, badges FROM users
	          WHERE is_active
	          ORDER BY points DESC, created_at ASC
	          LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.Leaderboard query: %w", err)
	}
	defer rows.Close()

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.Points, textArray(&e.Badges)); err != nil {
			return nil, fmt.Errorf("pgUserRepository.Leaderboard scan: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.Leaderboard rows.Err: %w", err)
	}
	return entries, nil
}

func (r *pgUserRepository) execOne(ctx context.Context, op, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("pgUserRepository.%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgUserRepository.%s rows affected: %w", op, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
