package usecase

import "github.com/civicmed/outbreak-engine/internal/domain"

// RiskConfig holds the risk-classification cutoffs. The numbers are
// deployment configuration, not hard-coded law: classification is
//
//	critical  when critical cases >= CriticalCases
//	high      when severe cases >= SevereCases, or
//	          case count >= HighMultiplier * rule threshold
//	medium    otherwise
type RiskConfig struct {
	CriticalCases  int
	SevereCases    int
	HighMultiplier float64
}

// DefaultRiskConfig returns the canonical cutoffs.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		CriticalCases:  3,
		SevereCases:    5,
		HighMultiplier: 1.5,
	}
}

// Classify computes the risk level for a candidate's counts under one rule.
func (rc RiskConfig) Classify(caseCount int, breakdown domain.SeverityBreakdown, threshold int) domain.RiskLevel {
	if breakdown.Critical >= rc.CriticalCases {
		return domain.RiskCritical
	}
	if breakdown.Severe >= rc.SevereCases || float64(caseCount) >= rc.HighMultiplier*float64(threshold) {
		return domain.RiskHigh
	}
	return domain.RiskMedium
}

// DefaultRules returns the static threshold rule set. Rules are ordered;
// diseases may appear more than once with different windows so that both
// slow-burn accumulation and rapid spikes surface.
func DefaultRules() []domain.ThresholdRule {
	return []domain.ThresholdRule{
		{DiseaseType: domain.DiseaseDengue, Threshold: 5, WindowDays: 14, Description: "5+ dengue cases within 14 days"},
		{DiseaseType: domain.DiseaseDengue, Threshold: 5, WindowDays: 3, Description: "5+ dengue cases within 3 days (rapid spike)"},
		{DiseaseType: domain.DiseaseMeasles, Threshold: 3, WindowDays: 7, Description: "3+ measles cases within 7 days"},
		{DiseaseType: domain.DiseaseInfluenza, Threshold: 10, WindowDays: 7, Description: "10+ influenza cases within 7 days"},
		{DiseaseType: domain.DiseaseTuberculosis, Threshold: 3, WindowDays: 30, Description: "3+ tuberculosis cases within 30 days"},
		{DiseaseType: domain.DiseaseCovid19, Threshold: 10, WindowDays: 7, Description: "10+ covid-19 cases within 7 days"},
		{DiseaseType: domain.DiseaseZika, Threshold: 2, WindowDays: 14, Description: "2+ zika cases within 14 days"},
		{DiseaseType: domain.DiseaseChikungunya, Threshold: 3, WindowDays: 14, Description: "3+ chikungunya cases within 14 days"},
		{DiseaseType: domain.DiseaseOther, Threshold: 5, WindowDays: 14, Description: "5+ cases of a custom disease within 14 days"},
	}
}

// MaxWindowDays returns the widest window across the rule set, which bounds
// the single fetch the aggregator issues per source.
func MaxWindowDays(rules []domain.ThresholdRule) int {
	max := 0
	for _, r := range rules {
		if r.WindowDays > max {
			max = r.WindowDays
		}
	}
	return max
}
