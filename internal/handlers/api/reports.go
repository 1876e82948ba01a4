package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/lojatax/api/internal/fiscal"
	"github.com/lojatax/api/internal/ledger"
	"github.com/lojatax/api/internal/observability"
	"github.com/lojatax/api/internal/services/report"
)

// defaultTopCategories caps the income-category breakdown.
const defaultTopCategories = 5

// ReportBuilder computes monthly summaries.
type ReportBuilder interface {
	BuildMonthly(ctx context.Context, tenantID uuid.UUID, year, month, topN int) (report.MonthlySummary, error)
}

// ReportHandler serves monthly report summaries.
type ReportHandler struct {
	reports ReportBuilder
	logger  *slog.Logger
}

// NewReportHandler creates a report handler.
func NewReportHandler(reports ReportBuilder, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{reports: reports, logger: logger}
}

// RegisterRoutes registers all report routes on the given mux.
func (h *ReportHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/reports/monthly", h.GetMonthly)
}

// GetMonthly handles GET /api/v1/reports/monthly
func (h *ReportHandler) GetMonthly(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "year is required"})
		return
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "month is required"})
		return
	}

	topN := defaultTopCategories
	if v := q.Get("top"); v != "" {
		if n, convErr := strconv.Atoi(v); convErr == nil && n > 0 {
			topN = n
		}
	}

	summary, err := h.reports.BuildMonthly(r.Context(), tenantID, year, month, topN)
	if err != nil {
		observability.IncReportBuild(observability.ResultError)
		switch {
		case errors.Is(err, fiscal.ErrInvalidPeriod):
			writeJSON(w, http.StatusBadRequest, errorJSON{Error: err.Error()})
		case errors.Is(err, ledger.ErrQueryFailed):
			h.logger.Error("ledger query failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, errorJSON{Error: "ledger temporarily unavailable"})
		default:
			h.logger.Error("building monthly report", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
		}
		return
	}
	observability.IncReportBuild(observability.ResultSuccess)

	writeJSON(w, http.StatusOK, summary)
}
