package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/civicmed/outbreak-engine/internal/domain"
	"github.com/civicmed/outbreak-engine/internal/domain/mocks"
)

func TestAggregatorFetch(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("All Reads Failing Yields Empty Index", func(t *testing.T) {
		agg := NewAggregator(
			&mocks.MockCaseRepository{ListErr: errors.New("cases down")},
			&mocks.MockStatisticRepository{ListErr: errors.New("stats down")},
			&mocks.MockGeographyRepository{ListErr: errors.New("geo down")},
			logger,
		)

		idx := agg.Fetch(context.Background(), nil, since)
		if idx == nil {
			t.Fatal("expected an index even when every read fails")
		}
		if len(idx.Cases) != 0 || len(idx.Stats) != 0 || len(idx.UnitNames) != 0 {
			t.Errorf("expected empty index, got %d case groups, %d stat groups, %d units",
				len(idx.Cases), len(idx.Stats), len(idx.UnitNames))
		}
	})

	t.Run("One Failed Source Keeps The Others", func(t *testing.T) {
		cases := &mocks.MockCaseRepository{Cases: []domain.CaseRecord{
			{ID: 1, GeographicUnitID: 4, DiseaseType: domain.DiseaseDengue, Status: domain.CaseStatusActive, DiagnosisDate: since.AddDate(0, 0, 2)},
		}}
		agg := NewAggregator(
			cases,
			&mocks.MockStatisticRepository{ListErr: errors.New("stats down")},
			&mocks.MockGeographyRepository{Units: []domain.GeographicUnit{{ID: 4, Name: "Riverside"}}},
			logger,
		)

		idx := agg.Fetch(context.Background(), nil, since)
		key := groupKey{Disease: domain.DiseaseDengue, UnitID: 4}
		if len(idx.Cases[key]) != 1 {
			t.Errorf("expected 1 dengue case in unit 4, got %d", len(idx.Cases[key]))
		}
		if len(idx.Stats) != 0 {
			t.Errorf("expected no stat groups, got %d", len(idx.Stats))
		}
		if idx.UnitNames[4] != "Riverside" {
			t.Errorf("expected unit name Riverside, got %q", idx.UnitNames[4])
		}
	})

	t.Run("Disease Filter Passes Through To The Case Read", func(t *testing.T) {
		cases := &mocks.MockCaseRepository{Cases: []domain.CaseRecord{
			{ID: 1, GeographicUnitID: 1, DiseaseType: domain.DiseaseDengue, Status: domain.CaseStatusActive, DiagnosisDate: since.AddDate(0, 0, 1)},
			{ID: 2, GeographicUnitID: 1, DiseaseType: domain.DiseaseMeasles, Status: domain.CaseStatusActive, DiagnosisDate: since.AddDate(0, 0, 1)},
		}}
		agg := NewAggregator(cases, &mocks.MockStatisticRepository{}, &mocks.MockGeographyRepository{}, logger)

		dt := domain.DiseaseMeasles
		idx := agg.Fetch(context.Background(), &dt, since)
		if len(idx.Cases) != 1 {
			t.Fatalf("expected 1 case group, got %d", len(idx.Cases))
		}
		if _, ok := idx.Cases[groupKey{Disease: domain.DiseaseMeasles, UnitID: 1}]; !ok {
			t.Error("expected the measles group to survive the filter")
		}
	})
}

func TestBuildIndex(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("Custom Name Keys Only Other", func(t *testing.T) {
		idx := buildIndex([]domain.CaseRecord{
			{ID: 1, GeographicUnitID: 2, DiseaseType: domain.DiseaseDengue, CustomDiseaseName: "ignored", Status: domain.CaseStatusActive, DiagnosisDate: day},
			{ID: 2, GeographicUnitID: 2, DiseaseType: domain.DiseaseOther, CustomDiseaseName: "hantavirus", Status: domain.CaseStatusActive, DiagnosisDate: day},
			{ID: 3, GeographicUnitID: 2, DiseaseType: domain.DiseaseOther, CustomDiseaseName: "leptospirosis", Status: domain.CaseStatusActive, DiagnosisDate: day},
		}, nil, nil)

		if len(idx.Cases[groupKey{Disease: domain.DiseaseDengue, UnitID: 2}]) != 1 {
			t.Error("dengue case should be keyed without a custom name")
		}
		if len(idx.Cases[groupKey{Disease: domain.DiseaseOther, UnitID: 2, Custom: "hantavirus"}]) != 1 {
			t.Error("hantavirus should have its own group")
		}
		if len(idx.Cases[groupKey{Disease: domain.DiseaseOther, UnitID: 2, Custom: "leptospirosis"}]) != 1 {
			t.Error("leptospirosis should not merge with hantavirus")
		}
	})

	t.Run("Inactive Cases Are Skipped", func(t *testing.T) {
		idx := buildIndex([]domain.CaseRecord{
			{ID: 1, GeographicUnitID: 2, DiseaseType: domain.DiseaseDengue, Status: domain.CaseStatusRecovered, DiagnosisDate: day},
		}, nil, nil)
		if len(idx.Cases) != 0 {
			t.Errorf("expected no groups from a resolved case, got %d", len(idx.Cases))
		}
	})

	t.Run("Nil Unit Statistic Keys City Wide", func(t *testing.T) {
		unit := int64(7)
		idx := buildIndex(nil, []domain.HistoricalStatistic{
			{ID: 1, DiseaseType: domain.DiseaseInfluenza, RecordDate: day, CaseCount: 12},
			{ID: 2, GeographicUnitID: &unit, DiseaseType: domain.DiseaseInfluenza, RecordDate: day, CaseCount: 3},
		}, nil)

		cityWide := idx.Stats[groupKey{Disease: domain.DiseaseInfluenza, UnitID: cityWideUnitID}]
		if len(cityWide) != 1 || cityWide[0].Breakdown.Total() != 12 {
			t.Errorf("expected one city-wide point of 12 cases, got %+v", cityWide)
		}
		scoped := idx.Stats[groupKey{Disease: domain.DiseaseInfluenza, UnitID: 7}]
		if len(scoped) != 1 || scoped[0].Breakdown.Total() != 3 {
			t.Errorf("expected one unit-7 point of 3 cases, got %+v", scoped)
		}
	})
}

func TestNormalizeStatistic(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	sev := func(s domain.Severity) *domain.Severity { return &s }

	tests := []struct {
		name     string
		severity *domain.Severity
		want     domain.SeverityBreakdown
	}{
		{"Nil Severity Counts As Moderate", nil, domain.SeverityBreakdown{Moderate: 5}},
		{"Mild", sev(domain.SeverityMild), domain.SeverityBreakdown{Mild: 5}},
		{"Severe", sev(domain.SeveritySevere), domain.SeverityBreakdown{Severe: 5}},
		{"Critical", sev(domain.SeverityCritical), domain.SeverityBreakdown{Critical: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := normalizeStatistic(domain.HistoricalStatistic{RecordDate: day, CaseCount: 5, Severity: tt.severity})
			if p.Breakdown != tt.want {
				t.Errorf("expected breakdown %+v, got %+v", tt.want, p.Breakdown)
			}
			if !p.Date.Equal(day) {
				t.Errorf("expected date preserved, got %v", p.Date)
			}
		})
	}
}
