package domain

import (
	"context"
	"fmt"
	"time"
)

// ThresholdRule is one entry of the static detection rule set: fire when at
// least Threshold cases of DiseaseType occur within the trailing WindowDays.
// Several rules may share a disease type with different windows (e.g. a
// slow-burn 14-day rule and a rapid-spike 3-day rule).
type ThresholdRule struct {
	DiseaseType DiseaseType `json:"disease_type"`
	Threshold   int         `json:"case_count_threshold"`
	WindowDays  int         `json:"window_days"`
	Description string      `json:"description"`
}

// SeverityBreakdown holds per-severity case counts for an alert.
type SeverityBreakdown struct {
	Mild     int `json:"mild"`
	Moderate int `json:"moderate"`
	Severe   int `json:"severe"`
	Critical int `json:"critical"`
}

// Total returns the sum of all severity buckets.
func (b SeverityBreakdown) Total() int {
	return b.Mild + b.Moderate + b.Severe + b.Critical
}

// ThresholdHit records one rule that fired for a consolidated alert, with the
// case count observed within that rule's own window.
type ThresholdHit struct {
	Threshold   int    `json:"threshold"`
	WindowDays  int    `json:"window_days"`
	Description string `json:"description"`
	CaseCount   int    `json:"case_count"`
}

// OutbreakAlert is the consolidated detection result surfaced to callers.
// Alerts are never persisted; they are recomputed on every scan.
// A nil GeographicUnitID marks a distributed (city-wide) alert.
type OutbreakAlert struct {
	DiseaseType        DiseaseType       `json:"disease_type"`
	CustomDiseaseName  string            `json:"custom_disease_name,omitempty"`
	GeographicUnitID   *int64            `json:"geographic_unit_id"`
	GeographicUnitName string            `json:"geographic_unit_name"`
	CaseCount          int               `json:"case_count"`
	SeverityBreakdown  SeverityBreakdown `json:"severity_breakdown"`
	RiskLevel          RiskLevel         `json:"risk_level"`
	ThresholdsExceeded []ThresholdHit    `json:"thresholds_exceeded"`
	FirstCaseDate      time.Time         `json:"first_case_date"`
	LatestCaseDate     time.Time         `json:"latest_case_date"`
}

// ScanFilter carries the caller-supplied scan parameters. Nil fields mean
// "all". AutoNotify opts in to notification dispatch and is deliberately not
// part of the cache key: cached results never re-notify.
type ScanFilter struct {
	DiseaseType      *DiseaseType
	GeographicUnitID *int64
	AutoNotify       bool
}

// CacheKey derives the deterministic result-cache key for the filter.
// Unfiltered dimensions normalize to the sentinel "all".
func (f ScanFilter) CacheKey() string {
	disease := "all"
	if f.DiseaseType != nil {
		disease = string(*f.DiseaseType)
	}
	unit := "all"
	if f.GeographicUnitID != nil {
		unit = fmt.Sprintf("%d", *f.GeographicUnitID)
	}
	return disease + "|" + unit
}

// ScanMetadata summarizes one scan for the response envelope.
type ScanMetadata struct {
	TotalOutbreaks    int       `json:"total_outbreaks"`
	CriticalCount     int       `json:"critical_count"`
	HighCount         int       `json:"high_count"`
	MediumCount       int       `json:"medium_count"`
	AutoNotifyEnabled bool      `json:"auto_notify_enabled"`
	CheckedAt         time.Time `json:"checked_at"`
	ExecutionTimeMS   int64     `json:"execution_time_ms"`
}

// ScanResult is the full response payload of one outbreak scan.
type ScanResult struct {
	Alerts   []OutbreakAlert `json:"alerts"`
	Metadata ScanMetadata    `json:"metadata"`
}

// CacheEntry is a memoized scan result together with its computation time,
// used for TTL checks and oldest-first eviction.
type CacheEntry struct {
	Result     ScanResult `json:"result"`
	ComputedAt time.Time  `json:"computed_at"`
}

// ResultCache memoizes scan results by filter key. Implementations must be
// safe for concurrent use. TTL and capacity handling are implementation
// concerns; Get must return ok=false for expired entries.
type ResultCache interface {
	Get(ctx context.Context, key string) (*CacheEntry, bool)
	Put(ctx context.Context, key string, entry *CacheEntry)
}
