package api

import (
	"log/slog"
	"net/http"

	"github.com/civicmed/outbreak-engine/internal/adapter/api/handler"
)

// NewRouter creates and configures the HTTP router for the outbreak engine.
// The scan endpoint is rate limited: a scan is an expensive multi-source
// aggregation even with the result cache in front of it.
func NewRouter(
	logger *slog.Logger,
	scanHandler *handler.ScanHandler,
	limit func(http.Handler) http.Handler,
) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /api/v1/outbreaks/scan", limit(scanHandler))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return mux
}
