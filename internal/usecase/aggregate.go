package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/civicmed/outbreak-engine/internal/domain"
)

// cityWideUnitID keys signals that carry no geographic unit (city-wide
// historical statistics). Real unit IDs are always positive.
const cityWideUnitID int64 = 0

// groupKey identifies one detection group. Custom is set only for
// domain.DiseaseOther, so distinct user-defined diseases never merge.
type groupKey struct {
	Disease domain.DiseaseType
	UnitID  int64
	Custom  string
}

// statPoint is one historical statistic normalized into the shape rule
// evaluation consumes: a dated severity breakdown. Keeping per-date
// granularity lets narrower rule windows intersect correctly.
type statPoint struct {
	Date      time.Time
	Breakdown domain.SeverityBreakdown
}

// SignalIndex is the aggregator's output: both sources grouped by
// (disease, unit, custom name), plus the unit name lookup. Rule evaluation
// is a map lookup plus a window filter, never a rescan of the raw reads.
type SignalIndex struct {
	Cases     map[groupKey][]domain.CaseRecord
	Stats     map[groupKey][]statPoint
	UnitNames map[int64]string
}

// Aggregator fetches raw signals for the union of all rule windows in three
// concurrent reads and indexes them for detection.
type Aggregator struct {
	cases  domain.CaseRepository
	stats  domain.StatisticRepository
	geo    domain.GeographyRepository
	logger *slog.Logger
}

// NewAggregator creates a signal aggregator over the platform data store.
func NewAggregator(cases domain.CaseRepository, stats domain.StatisticRepository, geo domain.GeographyRepository, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		cases:  cases,
		stats:  stats,
		geo:    geo,
		logger: logger.With("component", "aggregator"),
	}
}

// Fetch issues the three source reads concurrently and joins them into a
// SignalIndex. A failed read degrades to an empty result for that source:
// outbreak detection continues with partial data rather than failing the
// scan, so the group never propagates an error.
func (a *Aggregator) Fetch(ctx context.Context, diseaseType *domain.DiseaseType, since time.Time) *SignalIndex {
	var (
		caseRecords []domain.CaseRecord
		statRecords []domain.HistoricalStatistic
		units       []domain.GeographicUnit
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := a.cases.ListActive(gctx, diseaseType, since)
		if err != nil {
			a.logger.Error("case read failed, continuing without individual cases", "error", err)
			return nil
		}
		caseRecords = records
		return nil
	})
	g.Go(func() error {
		records, err := a.stats.ListSince(gctx, since)
		if err != nil {
			a.logger.Error("statistic read failed, continuing without historical counts", "error", err)
			return nil
		}
		statRecords = records
		return nil
	})
	g.Go(func() error {
		all, err := a.geo.ListAll(gctx)
		if err != nil {
			a.logger.Error("geographic unit read failed, alerts will carry unnamed units", "error", err)
			return nil
		}
		units = all
		return nil
	})
	_ = g.Wait() // closures never return errors

	return buildIndex(caseRecords, statRecords, units)
}

func buildIndex(cases []domain.CaseRecord, stats []domain.HistoricalStatistic, units []domain.GeographicUnit) *SignalIndex {
	idx := &SignalIndex{
		Cases:     make(map[groupKey][]domain.CaseRecord),
		Stats:     make(map[groupKey][]statPoint),
		UnitNames: make(map[int64]string, len(units)),
	}

	for _, u := range units {
		idx.UnitNames[u.ID] = u.Name
	}

	for _, c := range cases {
		if c.Status != domain.CaseStatusActive {
			continue
		}
		key := groupKey{Disease: c.DiseaseType, UnitID: c.GeographicUnitID}
		if c.DiseaseType == domain.DiseaseOther {
			key.Custom = c.CustomDiseaseName
		}
		idx.Cases[key] = append(idx.Cases[key], c)
	}

	for _, s := range stats {
		key := groupKey{Disease: s.DiseaseType, UnitID: cityWideUnitID}
		if s.GeographicUnitID != nil {
			key.UnitID = *s.GeographicUnitID
		}
		if s.DiseaseType == domain.DiseaseOther {
			key.Custom = s.CustomDiseaseName
		}
		idx.Stats[key] = append(idx.Stats[key], normalizeStatistic(s))
	}

	return idx
}

// normalizeStatistic folds one historical row into a dated severity
// breakdown. Rows that omit severity count as moderate; the counts are kept,
// not dropped.
func normalizeStatistic(s domain.HistoricalStatistic) statPoint {
	severity := domain.SeverityModerate
	if s.Severity != nil {
		severity = *s.Severity
	}

	p := statPoint{Date: s.RecordDate}
	switch severity {
	case domain.SeverityMild:
		p.Breakdown.Mild = s.CaseCount
	case domain.SeveritySevere:
		p.Breakdown.Severe = s.CaseCount
	case domain.SeverityCritical:
		p.Breakdown.Critical = s.CaseCount
	default:
		p.Breakdown.Moderate = s.CaseCount
	}
	return p
}
