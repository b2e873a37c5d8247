package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/civicmed/outbreak-engine/internal/domain"
)

// StatisticRepository implements domain.StatisticRepository: read-only access
// to bulk-imported and archival daily counts.
type StatisticRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStatisticRepository creates a new PostgreSQL statistic repository.
func NewStatisticRepository(db *sql.DB, logger *slog.Logger) *StatisticRepository {
	return &StatisticRepository{db: db, logger: logger}
}

// ListSince returns all historical statistics recorded on or after since.
// geographic_unit_id and severity are nullable: a NULL unit means the count
// is city-wide, a NULL severity is normalized later by the aggregator.
func (r *StatisticRepository) ListSince(ctx context.Context, since time.Time) ([]domain.HistoricalStatistic, error) {
	query := `
		SELECT id, geographic_unit_id, record_date, case_count, severity, disease_type, COALESCE(custom_disease_name, '')
		FROM historical_statistics
		WHERE record_date >= $1`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []domain.HistoricalStatistic
	for rows.Next() {
		var (
			s        domain.HistoricalStatistic
			unitID   sql.NullInt64
			severity sql.NullString
		)
		if err := rows.Scan(&s.ID, &unitID, &s.RecordDate, &s.CaseCount, &severity, &s.DiseaseType, &s.CustomDiseaseName); err != nil {
			return nil, err
		}
		if unitID.Valid {
			id := unitID.Int64
			s.GeographicUnitID = &id
		}
		if severity.Valid {
			sev := domain.Severity(severity.String)
			s.Severity = &sev
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
