package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/civicmed/outbreak-engine/internal/domain"
)

// GeographyRepository implements domain.GeographyRepository: the lookup table
// used to render alert output.
type GeographyRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewGeographyRepository creates a new PostgreSQL geography repository.
func NewGeographyRepository(db *sql.DB, logger *slog.Logger) *GeographyRepository {
	return &GeographyRepository{db: db, logger: logger}
}

func (r *GeographyRepository) ListAll(ctx context.Context) ([]domain.GeographicUnit, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM geographic_units ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []domain.GeographicUnit
	for rows.Next() {
		var u domain.GeographicUnit
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}
