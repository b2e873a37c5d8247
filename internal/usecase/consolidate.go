package usecase

import (
	"fmt"
	"sort"

	"github.com/civicmed/outbreak-engine/internal/domain"
)

// cityWideUnitName renders distributed alerts in place of a unit name.
const cityWideUnitName = "City-wide"

type diseasePair struct {
	disease domain.DiseaseType
	custom  string
}

// Consolidate merges raw candidates that describe the same real-world
// cluster into final alerts:
//
//   - a distributed (city-wide) candidate is suppressed when any localized
//     candidate exists for the same (disease, custom name) pair, since the
//     local cluster already explains the distributed total;
//   - candidates sharing (disease, unit, custom name) across rules merge
//     into one alert whose primary fields come from the highest-risk,
//     highest-count candidate, with every fired rule listed in
//     ThresholdsExceeded ordered by window ascending.
//
// Output is sorted by risk level descending, then case count descending;
// callers must preserve this order when rendering.
func Consolidate(candidates []Candidate, unitNames map[int64]string) []domain.OutbreakAlert {
	localized := make(map[diseasePair]bool)
	for _, c := range candidates {
		if c.UnitID != cityWideUnitID {
			localized[diseasePair{c.Disease, c.Custom}] = true
		}
	}

	groups := make(map[groupKey][]Candidate)
	var order []groupKey
	for _, c := range candidates {
		if c.UnitID == cityWideUnitID && localized[diseasePair{c.Disease, c.Custom}] {
			continue
		}
		key := groupKey{Disease: c.Disease, UnitID: c.UnitID, Custom: c.Custom}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], c)
	}

	alerts := make([]domain.OutbreakAlert, 0, len(order))
	for _, key := range order {
		alerts = append(alerts, mergeGroup(key, groups[key], unitNames))
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if a.RiskLevel.Rank() != b.RiskLevel.Rank() {
			return a.RiskLevel.Rank() > b.RiskLevel.Rank()
		}
		if a.CaseCount != b.CaseCount {
			return a.CaseCount > b.CaseCount
		}
		// Stable tail order so identical scans serialize identically.
		if a.DiseaseType != b.DiseaseType {
			return a.DiseaseType < b.DiseaseType
		}
		if a.CustomDiseaseName != b.CustomDiseaseName {
			return a.CustomDiseaseName < b.CustomDiseaseName
		}
		return unitID(a.GeographicUnitID) < unitID(b.GeographicUnitID)
	})

	return alerts
}

func mergeGroup(key groupKey, group []Candidate, unitNames map[int64]string) domain.OutbreakAlert {
	// Primary fields come from the highest-risk candidate, ties broken by
	// case count descending.
	primary := group[0]
	for _, c := range group[1:] {
		if c.Risk.Rank() > primary.Risk.Rank() ||
			(c.Risk.Rank() == primary.Risk.Rank() && c.CaseCount > primary.CaseCount) {
			primary = c
		}
	}

	hits := make([]domain.ThresholdHit, 0, len(group))
	first, latest := primary.FirstDate, primary.LatestDate
	for _, c := range group {
		hits = append(hits, domain.ThresholdHit{
			Threshold:   c.Rule.Threshold,
			WindowDays:  c.Rule.WindowDays,
			Description: c.Rule.Description,
			CaseCount:   c.CaseCount,
		})
		if !c.FirstDate.IsZero() && c.FirstDate.Before(first) {
			first = c.FirstDate
		}
		if c.LatestDate.After(latest) {
			latest = c.LatestDate
		}
	}
	// Shortest window first: the most urgent signal leads.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].WindowDays < hits[j].WindowDays })

	alert := domain.OutbreakAlert{
		DiseaseType:        key.Disease,
		CustomDiseaseName:  key.Custom,
		CaseCount:          primary.CaseCount,
		SeverityBreakdown:  primary.Breakdown,
		RiskLevel:          primary.Risk,
		ThresholdsExceeded: hits,
		FirstCaseDate:      first,
		LatestCaseDate:     latest,
	}

	if key.UnitID == cityWideUnitID {
		alert.GeographicUnitName = cityWideUnitName
	} else {
		id := key.UnitID
		alert.GeographicUnitID = &id
		if name, ok := unitNames[id]; ok {
			alert.GeographicUnitName = name
		} else {
			alert.GeographicUnitName = fmt.Sprintf("Unit %d", id)
		}
	}
	return alert
}

func unitID(p *int64) int64 {
	if p == nil {
		return cityWideUnitID
	}
	return *p
}
