package domain

import (
	"context"
	"time"
)

// CaseRepository reads individual case records from the platform data store.
type CaseRepository interface {
	// ListActive returns active cases diagnosed on or after since, optionally
	// restricted to one disease type.
	ListActive(ctx context.Context, diseaseType *DiseaseType, since time.Time) ([]CaseRecord, error)
}

// StatisticRepository reads pre-aggregated historical counts.
type StatisticRepository interface {
	// ListSince returns all historical statistics recorded on or after since.
	ListSince(ctx context.Context, since time.Time) ([]HistoricalStatistic, error)
}

// GeographyRepository reads the geographic-unit lookup table.
type GeographyRepository interface {
	ListAll(ctx context.Context) ([]GeographicUnit, error)
}

// AccountRepository reads administrator accounts for notification fan-out.
type AccountRepository interface {
	ListActiveAdministrators(ctx context.Context) ([]Account, error)
}

// NotificationRepository persists outbreak notifications and answers the
// dedup lookback query.
type NotificationRepository interface {
	// RecentExists reports whether a notification with the given title was
	// already sent to the recipient on or after since.
	RecentExists(ctx context.Context, recipientID int64, title string, since time.Time) (bool, error)

	Insert(ctx context.Context, n Notification) error
}
