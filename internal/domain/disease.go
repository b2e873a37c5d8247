package domain

import "fmt"

// DiseaseType identifies one of the notifiable diseases tracked by the platform.
// DiseaseOther covers user-defined diseases, which carry their own name in
// CaseRecord.CustomDiseaseName and must never be merged across distinct names.
type DiseaseType string

const (
	DiseaseDengue       DiseaseType = "dengue"
	DiseaseMeasles      DiseaseType = "measles"
	DiseaseInfluenza    DiseaseType = "influenza"
	DiseaseTuberculosis DiseaseType = "tuberculosis"
	DiseaseCovid19      DiseaseType = "covid19"
	DiseaseZika         DiseaseType = "zika"
	DiseaseChikungunya  DiseaseType = "chikungunya"
	DiseaseOther        DiseaseType = "other"
)

// ParseDiseaseType validates a caller-supplied disease type string.
func ParseDiseaseType(s string) (DiseaseType, error) {
	switch dt := DiseaseType(s); dt {
	case DiseaseDengue, DiseaseMeasles, DiseaseInfluenza, DiseaseTuberculosis,
		DiseaseCovid19, DiseaseZika, DiseaseChikungunya, DiseaseOther:
		return dt, nil
	}
	return "", fmt.Errorf("%w: unknown disease type %q", ErrInvalidFilter, s)
}

// Severity is the clinical severity recorded for a case.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityCritical Severity = "critical"
)

// CaseStatus tracks the lifecycle of a case record. Only active cases
// participate in outbreak detection.
type CaseStatus string

const (
	CaseStatusActive    CaseStatus = "active"
	CaseStatusRecovered CaseStatus = "recovered"
	CaseStatusClosed    CaseStatus = "closed"
)

// RiskLevel classifies the urgency of an outbreak alert.
type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
)

// Rank orders risk levels for sorting: higher is more urgent.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskCritical:
		return 3
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}
