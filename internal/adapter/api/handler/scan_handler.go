package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/civicmed/outbreak-engine/internal/domain"
)

// ScanRunner runs one outbreak scan. Implemented by usecase.ScanService.
type ScanRunner interface {
	Scan(ctx context.Context, filter domain.ScanFilter) (domain.ScanResult, error)
}

// ScanHandler handles HTTP requests for outbreak scans.
type ScanHandler struct {
	runner ScanRunner
	logger *slog.Logger
}

// NewScanHandler creates a new ScanHandler.
func NewScanHandler(runner ScanRunner, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{runner: runner, logger: logger}
}

// ServeHTTP processes a scan request. Malformed filter parameters are
// rejected with 400 rather than silently defaulted.
func (h *ScanHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.runner.Scan(r.Context(), filter)
	if err != nil {
		h.logger.Error("scan failed", "error", err)
		writeError(w, http.StatusInternalServerError, "scan failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func parseFilter(r *http.Request) (domain.ScanFilter, error) {
	var filter domain.ScanFilter
	q := r.URL.Query()

	if raw := q.Get("disease_type"); raw != "" {
		dt, err := domain.ParseDiseaseType(raw)
		if err != nil {
			return filter, err
		}
		filter.DiseaseType = &dt
	}

	if raw := q.Get("geographic_unit_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return filter, domain.ErrInvalidFilter
		}
		filter.GeographicUnitID = &id
	}

	if raw := q.Get("auto_notify"); raw != "" {
		notify, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, domain.ErrInvalidFilter
		}
		filter.AutoNotify = notify
	}

	return filter, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
