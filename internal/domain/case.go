package domain

import "time"

// CaseRecord is an individual, real-time disease case owned by the
// case-management subsystem. The engine reads these records only.
type CaseRecord struct {
	ID                int64       `json:"id"`
	GeographicUnitID  int64       `json:"geographic_unit_id"`
	DiagnosisDate     time.Time   `json:"diagnosis_date"`
	Severity          Severity    `json:"severity"`
	DiseaseType       DiseaseType `json:"disease_type"`
	CustomDiseaseName string      `json:"custom_disease_name,omitempty"`
	Status            CaseStatus  `json:"status"`
}

// HistoricalStatistic is a pre-aggregated daily count, typically bulk-imported
// or archival, that cannot be exploded into individual cases.
// A nil GeographicUnitID means the count is city-wide. A nil Severity is
// treated as moderate during aggregation.
type HistoricalStatistic struct {
	ID                int64       `json:"id"`
	GeographicUnitID  *int64      `json:"geographic_unit_id,omitempty"`
	RecordDate        time.Time   `json:"record_date"`
	CaseCount         int         `json:"case_count"`
	Severity          *Severity   `json:"severity,omitempty"`
	DiseaseType       DiseaseType `json:"disease_type"`
	CustomDiseaseName string      `json:"custom_disease_name,omitempty"`
}

// GeographicUnit is the smallest administrative area cases are attributed to.
type GeographicUnit struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
