package usecase

import (
	"time"

	"github.com/civicmed/outbreak-engine/internal/domain"
)

// Candidate is one rule's evaluation result for one detection group, before
// consolidation. UnitID == cityWideUnitID marks a distributed candidate.
type Candidate struct {
	Disease    domain.DiseaseType
	Custom     string
	UnitID     int64
	CaseCount  int
	Breakdown  domain.SeverityBreakdown
	FirstDate  time.Time
	LatestDate time.Time
	Risk       domain.RiskLevel
	Rule       domain.ThresholdRule
}

// Detector evaluates the threshold rule set against an aggregated signal
// index. It is pure computation: no I/O, no shared state.
type Detector struct {
	rules []domain.ThresholdRule
	risk  RiskConfig
}

// NewDetector creates a detector over the given rule set and risk cutoffs.
func NewDetector(rules []domain.ThresholdRule, risk RiskConfig) *Detector {
	return &Detector{rules: rules, risk: risk}
}

// tally accumulates one group's contributions within a rule window.
type tally struct {
	count     int
	breakdown domain.SeverityBreakdown
	first     time.Time
	latest    time.Time
}

func (t *tally) addDate(d time.Time) {
	if t.first.IsZero() || d.Before(t.first) {
		t.first = d
	}
	if d.After(t.latest) {
		t.latest = d
	}
}

// Evaluate runs every rule against the index and returns the raw candidates
// at both granularities. diseaseType, when set, restricts evaluation to that
// disease's rules. Groups with zero cases in a window emit nothing: absence
// of data is not a signal.
func (d *Detector) Evaluate(idx *SignalIndex, diseaseType *domain.DiseaseType, now time.Time) []Candidate {
	var candidates []Candidate
	for _, rule := range d.rules {
		if diseaseType != nil && rule.DiseaseType != *diseaseType {
			continue
		}
		candidates = append(candidates, d.evaluateRule(idx, rule, now)...)
	}
	return candidates
}

func (d *Detector) evaluateRule(idx *SignalIndex, rule domain.ThresholdRule, now time.Time) []Candidate {
	windowStart := startOfDay(now).AddDate(0, 0, -rule.WindowDays)

	// Tally the rule's window per (custom partition, unit). The city-wide
	// bucket (unit 0) holds statistics that carry no unit and only ever
	// feeds the distributed total.
	partitions := make(map[string]map[int64]*tally)
	unitTally := func(custom string, unitID int64) *tally {
		units, ok := partitions[custom]
		if !ok {
			units = make(map[int64]*tally)
			partitions[custom] = units
		}
		t, ok := units[unitID]
		if !ok {
			t = &tally{}
			units[unitID] = t
		}
		return t
	}

	for key, cases := range idx.Cases {
		if key.Disease != rule.DiseaseType {
			continue
		}
		for _, c := range cases {
			if !inWindow(c.DiagnosisDate, windowStart, now) {
				continue
			}
			t := unitTally(key.Custom, key.UnitID)
			t.count++
			t.addDate(c.DiagnosisDate)
			switch c.Severity {
			case domain.SeverityMild:
				t.breakdown.Mild++
			case domain.SeveritySevere:
				t.breakdown.Severe++
			case domain.SeverityCritical:
				t.breakdown.Critical++
			default:
				t.breakdown.Moderate++
			}
		}
	}

	for key, points := range idx.Stats {
		if key.Disease != rule.DiseaseType {
			continue
		}
		for _, p := range points {
			if !inWindow(p.Date, windowStart, now) {
				continue
			}
			t := unitTally(key.Custom, key.UnitID)
			t.count += p.Breakdown.Total()
			t.breakdown.Mild += p.Breakdown.Mild
			t.breakdown.Moderate += p.Breakdown.Moderate
			t.breakdown.Severe += p.Breakdown.Severe
			t.breakdown.Critical += p.Breakdown.Critical
			t.addDate(p.Date)
		}
	}

	var candidates []Candidate
	for custom, units := range partitions {
		var (
			localized bool
			citywide  tally
		)
		for unitID, t := range units {
			citywide.count += t.count
			citywide.breakdown.Mild += t.breakdown.Mild
			citywide.breakdown.Moderate += t.breakdown.Moderate
			citywide.breakdown.Severe += t.breakdown.Severe
			citywide.breakdown.Critical += t.breakdown.Critical
			if !t.first.IsZero() {
				citywide.addDate(t.first)
				citywide.addDate(t.latest)
			}

			if unitID == cityWideUnitID || t.count < rule.Threshold {
				continue
			}
			localized = true
			candidates = append(candidates, Candidate{
				Disease:    rule.DiseaseType,
				Custom:     custom,
				UnitID:     unitID,
				CaseCount:  t.count,
				Breakdown:  t.breakdown,
				FirstDate:  t.first,
				LatestDate: t.latest,
				Risk:       d.risk.Classify(t.count, t.breakdown, rule.Threshold),
				Rule:       rule,
			})
		}

		// Distributed pattern: the cross-unit total meets the threshold even
		// though no single unit does. Surfaces dispersed outbreaks without
		// inflating any one unit's count.
		if !localized && citywide.count > 0 && citywide.count >= rule.Threshold {
			candidates = append(candidates, Candidate{
				Disease:    rule.DiseaseType,
				Custom:     custom,
				UnitID:     cityWideUnitID,
				CaseCount:  citywide.count,
				Breakdown:  citywide.breakdown,
				FirstDate:  citywide.first,
				LatestDate: citywide.latest,
				Risk:       d.risk.Classify(citywide.count, citywide.breakdown, rule.Threshold),
				Rule:       rule,
			})
		}
	}
	return candidates
}

func inWindow(d, start, now time.Time) bool {
	return !d.Before(start) && !d.After(now)
}

func startOfDay(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, t.Location())
}
