package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/civicmed/outbreak-engine/internal/adapter/cache"
	"github.com/civicmed/outbreak-engine/internal/domain"
	"github.com/civicmed/outbreak-engine/internal/domain/mocks"
)

type scanEnv struct {
	svc           *ScanService
	cases         *mocks.MockCaseRepository
	stats         *mocks.MockStatisticRepository
	geo           *mocks.MockGeographyRepository
	accounts      *mocks.MockAccountRepository
	notifications *mocks.MockNotificationRepository
	cache         *cache.Memory
}

func newScanEnv(cacheTTL time.Duration) *scanEnv {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	env := &scanEnv{
		cases:         &mocks.MockCaseRepository{},
		stats:         &mocks.MockStatisticRepository{},
		geo:           &mocks.MockGeographyRepository{Units: []domain.GeographicUnit{{ID: 1, Name: "Riverside"}, {ID: 2, Name: "Old Town"}}},
		accounts:      &mocks.MockAccountRepository{Admins: []domain.Account{{ID: 100, Name: "Admin", Role: "administrator", IsActive: true}}},
		notifications: &mocks.MockNotificationRepository{},
		cache:         cache.NewMemory(cacheTTL, 8, nil),
	}

	rules := DefaultRules()
	aggregator := NewAggregator(env.cases, env.stats, env.geo, logger)
	detector := NewDetector(rules, DefaultRiskConfig())
	dispatcher := NewDispatcher(env.accounts, env.notifications, 24*time.Hour, logger, nil)
	env.svc = NewScanService(aggregator, detector, dispatcher, env.cache, rules, logger, nil)
	return env
}

// recentDengueCases returns n active dengue cases in the given unit, all
// diagnosed within the last 2 days.
func recentDengueCases(unitID int64, severity domain.Severity, n int) []domain.CaseRecord {
	cases := make([]domain.CaseRecord, n)
	for i := range cases {
		cases[i] = domain.CaseRecord{
			ID:               int64(i + 1),
			GeographicUnitID: unitID,
			DiagnosisDate:    time.Now().Add(-40 * time.Hour),
			Severity:         severity,
			DiseaseType:      domain.DiseaseDengue,
			Status:           domain.CaseStatusActive,
		}
	}
	return cases
}

func TestScanService_Scan(t *testing.T) {
	ctx := context.Background()

	t.Run("Dengue Spike Fires Both Rules", func(t *testing.T) {
		env := newScanEnv(5 * time.Minute)
		env.cases.Cases = recentDengueCases(1, domain.SeverityModerate, 6)

		result, err := env.svc.Scan(ctx, domain.ScanFilter{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(result.Alerts) != 1 {
			t.Fatalf("expected 1 consolidated alert, got %d", len(result.Alerts))
		}
		a := result.Alerts[0]
		if a.CaseCount != 6 {
			t.Errorf("expected case count 6, got %d", a.CaseCount)
		}
		if len(a.ThresholdsExceeded) != 2 {
			t.Fatalf("expected both dengue rules to fire, got %d hits", len(a.ThresholdsExceeded))
		}
		if a.ThresholdsExceeded[0].WindowDays != 3 {
			t.Errorf("expected the 3-day rule listed first, got window %d", a.ThresholdsExceeded[0].WindowDays)
		}
		// 6 < 1.5*5 and all cases moderate: exactly medium.
		if a.RiskLevel != domain.RiskMedium {
			t.Errorf("expected medium risk, got %s", a.RiskLevel)
		}
		if a.GeographicUnitName != "Riverside" {
			t.Errorf("expected unit name Riverside, got %q", a.GeographicUnitName)
		}
		if result.Metadata.TotalOutbreaks != 1 || result.Metadata.MediumCount != 1 {
			t.Errorf("unexpected metadata: %+v", result.Metadata)
		}
	})

	t.Run("Critical Severities Raise Risk", func(t *testing.T) {
		env := newScanEnv(5 * time.Minute)
		env.cases.Cases = append(
			recentDengueCases(1, domain.SeverityModerate, 3),
			recentDengueCases(1, domain.SeverityCritical, 3)...,
		)

		result, err := env.svc.Scan(ctx, domain.ScanFilter{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Alerts[0].RiskLevel != domain.RiskCritical {
			t.Errorf("expected critical risk with 3 critical cases, got %s", result.Alerts[0].RiskLevel)
		}
		if result.Metadata.CriticalCount != 1 {
			t.Errorf("expected critical count 1, got %d", result.Metadata.CriticalCount)
		}
	})

	t.Run("Cache Idempotence", func(t *testing.T) {
		env := newScanEnv(5 * time.Minute)
		env.cases.Cases = recentDengueCases(1, domain.SeverityModerate, 6)
		filter := domain.ScanFilter{AutoNotify: true}

		first, err := env.svc.Scan(ctx, filter)
		if err != nil {
			t.Fatalf("first scan: %v", err)
		}
		second, err := env.svc.Scan(ctx, filter)
		if err != nil {
			t.Fatalf("second scan: %v", err)
		}

		if env.cases.ListCalls != 1 {
			t.Errorf("expected the second scan to hit the cache, got %d case reads", env.cases.ListCalls)
		}

		firstJSON, _ := json.Marshal(first)
		secondJSON, _ := json.Marshal(second)
		if !bytes.Equal(firstJSON, secondJSON) {
			t.Error("cached scan payload differs from the computed one")
		}

		// Dispatch ran once: one notification per administrator total.
		if got := len(env.notifications.Sent()); got != 1 {
			t.Errorf("expected exactly 1 notification across both scans, got %d", got)
		}
	})

	t.Run("Empty Result Is Still Cached", func(t *testing.T) {
		env := newScanEnv(5 * time.Minute)
		measles := domain.DiseaseMeasles
		filter := domain.ScanFilter{DiseaseType: &measles, AutoNotify: true}

		result, err := env.svc.Scan(ctx, filter)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(result.Alerts) != 0 {
			t.Fatalf("expected no alerts, got %d", len(result.Alerts))
		}
		if len(env.notifications.Sent()) != 0 {
			t.Error("no alerts must mean no notifications")
		}
		if env.cache.Len() != 1 {
			t.Errorf("empty alert list should still be cached, cache has %d entries", env.cache.Len())
		}

		if _, err := env.svc.Scan(ctx, filter); err != nil {
			t.Fatalf("second scan: %v", err)
		}
		if env.cases.ListCalls != 1 {
			t.Errorf("expected cache hit for the empty result, got %d case reads", env.cases.ListCalls)
		}
	})

	t.Run("Degraded Case Read Still Scans Statistics", func(t *testing.T) {
		env := newScanEnv(5 * time.Minute)
		env.cases.ListErr = errors.New("case store unavailable")
		unitID := int64(1)
		env.stats.Statistics = []domain.HistoricalStatistic{
			{GeographicUnitID: &unitID, RecordDate: time.Now().Add(-24 * time.Hour), CaseCount: 6, DiseaseType: domain.DiseaseDengue},
		}

		result, err := env.svc.Scan(ctx, domain.ScanFilter{})
		if err != nil {
			t.Fatalf("a failed read must degrade, not fail the scan: %v", err)
		}
		if len(result.Alerts) != 1 {
			t.Fatalf("expected an alert from statistics alone, got %d", len(result.Alerts))
		}
		if result.Alerts[0].CaseCount != 6 {
			t.Errorf("expected 6 cases from statistics, got %d", result.Alerts[0].CaseCount)
		}
	})

	t.Run("Unit Filter Restricts Output", func(t *testing.T) {
		env := newScanEnv(5 * time.Minute)
		env.cases.Cases = append(
			recentDengueCases(1, domain.SeverityModerate, 6),
			recentDengueCases(2, domain.SeverityModerate, 7)...,
		)
		unitID := int64(2)

		result, err := env.svc.Scan(ctx, domain.ScanFilter{GeographicUnitID: &unitID})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(result.Alerts) != 1 {
			t.Fatalf("expected 1 alert for unit 2, got %d", len(result.Alerts))
		}
		if result.Alerts[0].GeographicUnitName != "Old Town" {
			t.Errorf("expected Old Town alert, got %q", result.Alerts[0].GeographicUnitName)
		}
	})

	t.Run("No Notify Without Opt-In", func(t *testing.T) {
		env := newScanEnv(5 * time.Minute)
		env.cases.Cases = recentDengueCases(1, domain.SeverityModerate, 6)

		if _, err := env.svc.Scan(ctx, domain.ScanFilter{}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(env.notifications.Sent()) != 0 {
			t.Error("notifications dispatched without auto_notify")
		}
	})

	t.Run("Notification Dedup Across Cache Expiry", func(t *testing.T) {
		env := newScanEnv(time.Nanosecond) // every scan recomputes
		env.cases.Cases = recentDengueCases(1, domain.SeverityModerate, 6)
		filter := domain.ScanFilter{AutoNotify: true}

		for i := 0; i < 3; i++ {
			if _, err := env.svc.Scan(ctx, filter); err != nil {
				t.Fatalf("scan %d: %v", i, err)
			}
		}
		if env.cases.ListCalls != 3 {
			t.Fatalf("expected every scan to recompute, got %d reads", env.cases.ListCalls)
		}
		if got := len(env.notifications.Sent()); got != 1 {
			t.Errorf("expected the 24h dedup window to keep notifications at 1, got %d", got)
		}
	})

	t.Run("Concurrent Identical Scans Compute Once", func(t *testing.T) {
		env := newScanEnv(5 * time.Minute)
		env.cases.Cases = recentDengueCases(1, domain.SeverityModerate, 6)
		filter := domain.ScanFilter{AutoNotify: true}

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := env.svc.Scan(ctx, filter); err != nil {
					t.Errorf("concurrent scan: %v", err)
				}
			}()
		}
		wg.Wait()

		if env.cases.ListCalls != 1 {
			t.Errorf("expected singleflight to collapse to one computation, got %d reads", env.cases.ListCalls)
		}
		if got := len(env.notifications.Sent()); got != 1 {
			t.Errorf("expected one notification total under concurrent identical scans, got %d", got)
		}
	})
}
