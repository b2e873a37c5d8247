package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/civicmed/outbreak-engine/internal/domain"
)

// CaseRepository implements domain.CaseRepository over the platform's
// PostgreSQL store. The engine reads case records only; ownership stays with
// the case-management subsystem.
type CaseRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewCaseRepository creates a new PostgreSQL case repository.
func NewCaseRepository(db *sql.DB, logger *slog.Logger) *CaseRepository {
	return &CaseRepository{db: db, logger: logger}
}

// ListActive returns active cases diagnosed on or after since, optionally
// restricted to one disease type.
func (r *CaseRepository) ListActive(ctx context.Context, diseaseType *domain.DiseaseType, since time.Time) ([]domain.CaseRecord, error) {
	query := `
		SELECT id, geographic_unit_id, diagnosis_date, severity, disease_type, COALESCE(custom_disease_name, ''), status
		FROM disease_cases
		WHERE status = 'active' AND diagnosis_date >= $1`
	args := []interface{}{since}
	if diseaseType != nil {
		query += ` AND disease_type = $2`
		args = append(args, string(*diseaseType))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []domain.CaseRecord
	for rows.Next() {
		var c domain.CaseRecord
		if err := rows.Scan(&c.ID, &c.GeographicUnitID, &c.DiagnosisDate, &c.Severity, &c.DiseaseType, &c.CustomDiseaseName, &c.Status); err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}
