package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/civicmed/outbreak-engine/internal/domain"
)

// AccountRepository implements domain.AccountRepository. Account management
// is owned by the platform; the engine only lists notification recipients.
type AccountRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository.
func NewAccountRepository(db *sql.DB, logger *slog.Logger) *AccountRepository {
	return &AccountRepository{db: db, logger: logger}
}

func (r *AccountRepository) ListActiveAdministrators(ctx context.Context) ([]domain.Account, error) {
	query := `
		SELECT id, name, email, role, is_active
		FROM accounts
		WHERE role = 'administrator' AND is_active = true`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.Role, &a.IsActive); err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}
