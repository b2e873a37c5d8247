package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/civicmed/outbreak-engine/internal/domain"
)

// NotificationRepository implements domain.NotificationRepository: the only
// write path this engine has into the platform store.
type NotificationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewNotificationRepository creates a new PostgreSQL notification repository.
func NewNotificationRepository(db *sql.DB, logger *slog.Logger) *NotificationRepository {
	return &NotificationRepository{db: db, logger: logger}
}

// RecentExists reports whether a notification with the given title was
// already sent to the recipient on or after since.
func (r *NotificationRepository) RecentExists(ctx context.Context, recipientID int64, title string, since time.Time) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM notifications WHERE recipient_id = $1 AND title = $2 AND created_at >= $3)`
	if err := r.db.QueryRowContext(ctx, query, recipientID, title, since).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *NotificationRepository) Insert(ctx context.Context, n domain.Notification) error {
	query := `INSERT INTO notifications (id, recipient_id, title, body, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, n.ID, n.RecipientID, n.Title, n.Body, n.CreatedAt)
	return err
}
