package repository

import (
	"context"
	"database/sql"
	"fmt"
	"gamification_hub/internal/common"
	"gamification_hub/internal/domain/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	// CreateMany inserts all notifications in one transaction.
	CreateMany(ctx context.Context, ns []model.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	SetRead(ctx context.Context, id, userID string, read bool) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

type pgNotificationRepository struct {
	db *sql.DB
}

func NewPgNotificationRepository(db *sql.DB) NotificationRepository {
	return &pgNotificationRepository{db: db}
}

const insertNotification = `INSERT INTO notifications (id, user_id, title, message, type, is_read, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

func (r *pgNotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	_, err := r.db.ExecContext(ctx, insertNotification, n.ID, n.UserID, n.Title, n.Message, n.Type, n.IsRead, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgNotificationRepository.Create: %w", err)
	}
	return nil
}

func (r *pgNotificationRepository) CreateMany(ctx context.Context, ns []model.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgNotificationRepository.CreateMany begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertNotification)
	if err != nil {
		return fmt.Errorf("pgNotificationRepository.CreateMany prepare: %w", err)
	}
	defer stmt.Close()

	for _, n := range ns {
		if _, err := stmt.ExecContext(ctx, n.ID, n.UserID, n.Title, n.Message, n.Type, n.IsRead, n.CreatedAt); err != nil {
			return fmt.Errorf("pgNotificationRepository.CreateMany exec for %s: %w", n.UserID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pgNotificationRepository.CreateMany commit: %w", err)
	}
	return nil
}

func (r *pgNotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	query := `SELECT id, user_id, title, message, type, is_read, created_at FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND NOT is_read`
	}
	query += ` ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("pgNotificationRepository.ListByUser query: %w", err)
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgNotificationRepository.ListByUser scan: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgNotificationRepository.ListByUser rows.Err: %w", err)
	}
	return notifications, nil
}

func (r *pgNotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("pgNotificationRepository.CountUnread: %w", err)
	}
	return n, nil
}

// SetRead only touches notifications owned by userID; anything else is not found.
func (r *pgNotificationRepository) SetRead(ctx context.Context, id, userID string, read bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = $1 WHERE id = $2 AND user_id = $3`, read, id, userID)
	if err != nil {
		return fmt.Errorf("pgNotificationRepository.SetRead: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return 0, fmt.Errorf("pgNotificationRepository.MarkAllRead: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pgNotificationRepository.MarkAllRead rows affected: %w", err)
	}
	return int(n), nil
}
