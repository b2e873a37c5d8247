package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/civicmed/outbreak-engine/internal/adapter/metrics"
	"github.com/civicmed/outbreak-engine/internal/domain"
)

// Dispatcher delivers outbreak notifications to administrator accounts.
// Delivery is best-effort: every failure is logged and counted, and none of
// them ever affects the alert list returned to the caller.
type Dispatcher struct {
	accounts      domain.AccountRepository
	notifications domain.NotificationRepository
	dedupWindow   time.Duration
	logger        *slog.Logger
	metrics       *metrics.EngineMetrics
	now           func() time.Time
}

// NewDispatcher creates a notification dispatcher. The dedup window is the
// lookback period within which an identical (recipient, title) notification
// is skipped; m may be nil.
func NewDispatcher(accounts domain.AccountRepository, notifications domain.NotificationRepository, dedupWindow time.Duration, logger *slog.Logger, m *metrics.EngineMetrics) *Dispatcher {
	return &Dispatcher{
		accounts:      accounts,
		notifications: notifications,
		dedupWindow:   dedupWindow,
		logger:        logger.With("component", "dispatcher"),
		metrics:       m,
		now:           time.Now,
	}
}

// Dispatch creates one notification per (administrator, alert), skipping
// pairs already notified within the dedup window. Recipients are processed
// concurrently and fault-isolated: one recipient's failure never aborts the
// others.
func (d *Dispatcher) Dispatch(ctx context.Context, alerts []domain.OutbreakAlert) {
	if len(alerts) == 0 {
		return
	}

	admins, err := d.accounts.ListActiveAdministrators(ctx)
	if err != nil {
		d.logger.Error("failed to list administrators, skipping notification dispatch", "error", err)
		return
	}
	if len(admins) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, alert := range alerts {
		title := notificationTitle(alert)
		body := notificationBody(alert)
		for _, admin := range admins {
			wg.Add(1)
			go func(recipientID int64) {
				defer wg.Done()
				d.deliver(ctx, recipientID, title, body)
			}(admin.ID)
		}
	}
	wg.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, recipientID int64, title, body string) {
	since := d.now().Add(-d.dedupWindow)
	exists, err := d.notifications.RecentExists(ctx, recipientID, title, since)
	if err != nil {
		d.logger.Error("notification dedup lookup failed", "error", err, "recipient_id", recipientID)
		d.countNotification("failed")
		return
	}
	if exists {
		d.countNotification("deduplicated")
		return
	}

	n := domain.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		Title:       title,
		Body:        body,
		CreatedAt:   d.now().UTC(),
	}
	if err := d.notifications.Insert(ctx, n); err != nil {
		d.logger.Error("failed to insert notification", "error", err, "recipient_id", recipientID, "title", title)
		d.countNotification("failed")
		return
	}
	d.countNotification("sent")
}

func (d *Dispatcher) countNotification(status string) {
	if d.metrics != nil {
		d.metrics.NotificationsTotal.WithLabelValues(status).Inc()
	}
}

// notificationTitle derives the stable title used both for display and for
// the dedup lookback; changing its shape resets dedup history.
func notificationTitle(a domain.OutbreakAlert) string {
	name := string(a.DiseaseType)
	if a.DiseaseType == domain.DiseaseOther && a.CustomDiseaseName != "" {
		name = a.CustomDiseaseName
	}
	return fmt.Sprintf("Outbreak alert: %s in %s", name, a.GeographicUnitName)
}

func notificationBody(a domain.OutbreakAlert) string {
	return fmt.Sprintf(
		"%d active cases detected (%s risk). Severe: %d, critical: %d. First case %s, latest case %s.",
		a.CaseCount,
		a.RiskLevel,
		a.SeverityBreakdown.Severe,
		a.SeverityBreakdown.Critical,
		a.FirstCaseDate.Format("2006-01-02"),
		a.LatestCaseDate.Format("2006-01-02"),
	)
}
