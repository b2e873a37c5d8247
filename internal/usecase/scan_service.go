package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/civicmed/outbreak-engine/internal/adapter/metrics"
	"github.com/civicmed/outbreak-engine/internal/domain"
)

// ScanService orchestrates one outbreak scan: cache lookup, concurrent
// signal aggregation, detection, consolidation, optional notification
// dispatch, cache store.
//
// Concurrent scans for the same filter key are collapsed through
// singleflight so a result is computed, and notifications dispatched, at
// most once per key per TTL window; scans for different keys proceed in
// parallel.
type ScanService struct {
	aggregator *Aggregator
	detector   *Detector
	dispatcher *Dispatcher
	cache      domain.ResultCache
	rules      []domain.ThresholdRule
	maxWindow  int
	flight     singleflight.Group
	logger     *slog.Logger
	metrics    *metrics.EngineMetrics
	now        func() time.Time
}

// NewScanService wires the scan pipeline. m may be nil.
func NewScanService(
	aggregator *Aggregator,
	detector *Detector,
	dispatcher *Dispatcher,
	cache domain.ResultCache,
	rules []domain.ThresholdRule,
	logger *slog.Logger,
	m *metrics.EngineMetrics,
) *ScanService {
	return &ScanService{
		aggregator: aggregator,
		detector:   detector,
		dispatcher: dispatcher,
		cache:      cache,
		rules:      rules,
		maxWindow:  MaxWindowDays(rules),
		logger:     logger.With("component", "scan"),
		metrics:    m,
		now:        time.Now,
	}
}

// Scan runs one detection pass for the given filter. A fresh cache entry
// short-circuits the whole pipeline, including notification dispatch: cached
// results never re-notify. On a miss the full pipeline runs; collaborator
// read failures degrade to partial data inside the aggregator, so a scan
// always returns a best-effort alert list.
func (s *ScanService) Scan(ctx context.Context, filter domain.ScanFilter) (domain.ScanResult, error) {
	key := filter.CacheKey()

	if entry, ok := s.cache.Get(ctx, key); ok {
		s.countScan("cache_hit")
		return entry.Result, nil
	}

	v, err, _ := s.flight.Do(key, func() (interface{}, error) {
		// Another caller may have finished while this one waited on the flight.
		if entry, ok := s.cache.Get(ctx, key); ok {
			s.countScan("cache_hit")
			return entry.Result, nil
		}
		return s.compute(ctx, filter, key), nil
	})
	if err != nil {
		return domain.ScanResult{}, err
	}
	return v.(domain.ScanResult), nil
}

func (s *ScanService) compute(ctx context.Context, filter domain.ScanFilter, key string) domain.ScanResult {
	started := s.now()
	since := startOfDay(started).AddDate(0, 0, -s.maxWindow)

	idx := s.aggregator.Fetch(ctx, filter.DiseaseType, since)
	candidates := s.detector.Evaluate(idx, filter.DiseaseType, started)
	alerts := Consolidate(candidates, idx.UnitNames)
	alerts = filterByUnit(alerts, filter.GeographicUnitID)

	result := domain.ScanResult{
		Alerts:   alerts,
		Metadata: buildMetadata(alerts, filter.AutoNotify, started, s.now().Sub(started)),
	}

	if filter.AutoNotify {
		s.dispatcher.Dispatch(ctx, alerts)
	}

	// An empty alert list is still a valid cached value.
	s.cache.Put(ctx, key, &domain.CacheEntry{Result: result, ComputedAt: started})

	s.countScan("computed")
	if s.metrics != nil {
		s.metrics.ScanDuration.Observe(s.now().Sub(started).Seconds())
		for _, a := range alerts {
			s.metrics.AlertsEmitted.WithLabelValues(string(a.RiskLevel)).Inc()
		}
	}

	s.logger.Info("scan computed",
		"key", key,
		"alerts", len(alerts),
		"auto_notify", filter.AutoNotify,
		"duration_ms", result.Metadata.ExecutionTimeMS,
	)
	return result
}

func (s *ScanService) countScan(outcome string) {
	if s.metrics != nil {
		s.metrics.ScansTotal.WithLabelValues(outcome).Inc()
	}
}

// filterByUnit restricts output to one geographic unit when requested.
// Distributed (city-wide) alerts carry no unit and are excluded by a unit
// filter.
func filterByUnit(alerts []domain.OutbreakAlert, unitID *int64) []domain.OutbreakAlert {
	if unitID == nil {
		return alerts
	}
	out := make([]domain.OutbreakAlert, 0, len(alerts))
	for _, a := range alerts {
		if a.GeographicUnitID != nil && *a.GeographicUnitID == *unitID {
			out = append(out, a)
		}
	}
	return out
}

func buildMetadata(alerts []domain.OutbreakAlert, autoNotify bool, checkedAt time.Time, elapsed time.Duration) domain.ScanMetadata {
	md := domain.ScanMetadata{
		TotalOutbreaks:    len(alerts),
		AutoNotifyEnabled: autoNotify,
		CheckedAt:         checkedAt.UTC(),
		ExecutionTimeMS:   elapsed.Milliseconds(),
	}
	for _, a := range alerts {
		switch a.RiskLevel {
		case domain.RiskCritical:
			md.CriticalCount++
		case domain.RiskHigh:
			md.HighCount++
		case domain.RiskMedium:
			md.MediumCount++
		}
	}
	return md
}
