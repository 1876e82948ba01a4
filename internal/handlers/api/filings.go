// Package api contains the JSON/file HTTP handlers.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lojatax/api/internal/fiscal"
	"github.com/lojatax/api/internal/ledger"
	"github.com/lojatax/api/internal/middleware"
	"github.com/lojatax/api/internal/observability"
	"github.com/lojatax/api/internal/render"
	"github.com/lojatax/api/internal/saft"
	"github.com/lojatax/api/internal/services/settings"
	"github.com/lojatax/api/internal/services/vatreturn"
)

// ReturnBuilder computes filing data for a tenant and period.
type ReturnBuilder interface {
	Build(ctx context.Context, tenantID uuid.UUID, period fiscal.FilingPeriod) (vatreturn.ReturnData, error)
	Records(ctx context.Context, tenantID uuid.UUID, period fiscal.FilingPeriod) ([]ledger.Transaction, error)
}

// ProfileReader resolves the business identity printed on documents.
type ProfileReader interface {
	GetProfile(ctx context.Context, tenantID uuid.UUID) (settings.Profile, error)
}

// FilingHandler serves VAT returns and audit exports.
type FilingHandler struct {
	returns      ReturnBuilder
	profiles     ProfileReader
	businessZone *time.Location
	logger       *slog.Logger
}

// NewFilingHandler creates a filing handler.
func NewFilingHandler(returns ReturnBuilder, profiles ProfileReader, businessZone *time.Location, logger *slog.Logger) *FilingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FilingHandler{
		returns:      returns,
		profiles:     profiles,
		businessZone: businessZone,
		logger:       logger,
	}
}

// RegisterRoutes registers all filing routes on the given mux.
func (h *FilingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/filings/vat-return", h.GetReturn)
	mux.HandleFunc("GET /api/v1/filings/vat-return/text", h.GetReturnText)
	mux.HandleFunc("GET /api/v1/filings/vat-return/document", h.GetReturnDocument)
	mux.HandleFunc("GET /api/v1/filings/vat-return/xlsx", h.GetReturnXLSX)
	mux.HandleFunc("GET /api/v1/filings/saft", h.GetAuditExport)
}

// returnJSON is the wire form of a computed return. All money is
// serialized as fixed two-decimal strings.
type returnJSON struct {
	Period           string `json:"period"`
	PeriodLabel      string `json:"period_label"`
	TaxableSales     string `json:"taxable_sales"`
	StandardRateVAT  string `json:"standard_rate_vat"`
	ReducedRateSales string `json:"reduced_rate_sales"`
	ZeroRatedSales   string `json:"zero_rated_sales"`
	ExemptSales      string `json:"exempt_sales"`
	TotalOutputVAT   string `json:"total_output_vat"`
	TaxablePurchases string `json:"taxable_purchases"`
	TotalInputVAT    string `json:"total_input_vat"`
	NetVATPayable    string `json:"net_vat_payable"`
	Refundable       bool   `json:"refundable"`
	TotalRevenue     string `json:"total_revenue"`
	TotalExpenses    string `json:"total_expenses"`
	TransactionCount int    `json:"transaction_count"`
	StandardRate     string `json:"standard_rate"`
	FilingDeadline   string `json:"filing_deadline"`
}

func toReturnJSON(d vatreturn.ReturnData) returnJSON {
	return returnJSON{
		Period:           d.Period.String(),
		PeriodLabel:      d.Period.Label(),
		TaxableSales:     d.TaxableSales.StringFixed(2),
		StandardRateVAT:  d.StandardRateVAT.StringFixed(2),
		ReducedRateSales: d.ReducedRateSales.StringFixed(2),
		ZeroRatedSales:   d.ZeroRatedSales.StringFixed(2),
		ExemptSales:      d.ExemptSales.StringFixed(2),
		TotalOutputVAT:   d.TotalOutputVAT.StringFixed(2),
		TaxablePurchases: d.TaxablePurchases.StringFixed(2),
		TotalInputVAT:    d.TotalInputVAT.StringFixed(2),
		NetVATPayable:    d.NetVATPayable.StringFixed(2),
		Refundable:       d.Refundable(),
		TotalRevenue:     d.TotalRevenue.StringFixed(2),
		TotalExpenses:    d.TotalExpenses.StringFixed(2),
		TransactionCount: d.TransactionCount,
		StandardRate:     d.StandardRate.StringFixed(2),
		FilingDeadline:   d.FilingDeadline.Format("2006-01-02"),
	}
}

// GetReturn handles GET /api/v1/filings/vat-return
func (h *FilingHandler) GetReturn(w http.ResponseWriter, r *http.Request) {
	data, ok := h.buildReturn(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toReturnJSON(data))
}

// GetReturnText handles GET /api/v1/filings/vat-return/text
func (h *FilingHandler) GetReturnText(w http.ResponseWriter, r *http.Request) {
	data, ok := h.buildReturn(w, r)
	if !ok {
		return
	}

	text, err := render.ReturnText(data)
	if err != nil {
		h.renderError(w, err)
		observability.IncExport("text", observability.ResultError)
		return
	}
	observability.IncExport("text", observability.ResultSuccess)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, text)
}

// GetReturnDocument handles GET /api/v1/filings/vat-return/document
func (h *FilingHandler) GetReturnDocument(w http.ResponseWriter, r *http.Request) {
	data, ok := h.buildReturn(w, r)
	if !ok {
		return
	}

	doc, err := render.ReturnDocument(data)
	if err != nil {
		h.renderError(w, err)
		observability.IncExport("document", observability.ResultError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := render.WriteHTML(w, doc); err != nil {
		h.logger.Error("writing return document", "error", err)
	}
	observability.IncExport("document", observability.ResultSuccess)
}

// GetReturnXLSX handles GET /api/v1/filings/vat-return/xlsx
func (h *FilingHandler) GetReturnXLSX(w http.ResponseWriter, r *http.Request) {
	data, ok := h.buildReturn(w, r)
	if !ok {
		return
	}

	workbook, err := render.ReturnXLSX(data)
	if err != nil {
		h.renderError(w, err)
		observability.IncExport("xlsx", observability.ResultError)
		return
	}
	observability.IncExport("xlsx", observability.ResultSuccess)

	w.Header().Set("Content-Type", render.XLSXMIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", render.XLSXFilename(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(workbook)
}

// GetAuditExport handles GET /api/v1/filings/saft
func (h *FilingHandler) GetAuditExport(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	records, err := h.returns.Records(r.Context(), tenantID, period)
	if err != nil {
		h.queryError(w, err)
		observability.IncExport("saft", observability.ResultError)
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("loading business profile", "error", err, "tenant_id", tenantID.String())
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
		observability.IncExport("saft", observability.ResultError)
		return
	}

	export := saft.Build(profile, tenantID.String(), period, records, h.businessZone)
	observability.IncExport("saft", observability.ResultSuccess)

	w.Header().Set("Content-Type", saft.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", saft.Filename(period.Year)))
	w.WriteHeader(http.StatusOK)
	w.Write(saft.Serialize(export))
}

// buildReturn resolves tenant and period from the request and computes
// the return, writing the error response itself on failure.
func (h *FilingHandler) buildReturn(w http.ResponseWriter, r *http.Request) (vatreturn.ReturnData, bool) {
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return vatreturn.ReturnData{}, false
	}
	period, ok := parsePeriod(w, r)
	if !ok {
		return vatreturn.ReturnData{}, false
	}

	start := time.Now()
	data, err := h.returns.Build(r.Context(), tenantID, period)
	if err != nil {
		observability.ObserveFilingBuild(observability.ResultError, time.Since(start))
		h.queryError(w, err)
		return vatreturn.ReturnData{}, false
	}
	observability.ObserveFilingBuild(observability.ResultSuccess, time.Since(start))

	return data, true
}

// queryError maps ledger and aggregation failures to status codes. A
// failed ledger read is retryable (503); an unclassified record is an
// upstream data bug (500).
func (h *FilingHandler) queryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrQueryFailed):
		h.logger.Error("ledger query failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorJSON{Error: "ledger temporarily unavailable"})
	case errors.Is(err, vatreturn.ErrUnclassified):
		h.logger.Error("unclassified ledger record", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
	default:
		h.logger.Error("building return", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
	}
}

func (h *FilingHandler) renderError(w http.ResponseWriter, err error) {
	if errors.Is(err, render.ErrFormatting) {
		h.logger.Error("formatting filing document", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
		return
	}
	h.logger.Error("rendering filing document", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
}

// parsePeriod reads year plus either month or quarter from the query.
func parsePeriod(w http.ResponseWriter, r *http.Request) (fiscal.FilingPeriod, bool) {
	q := r.URL.Query()

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "year is required"})
		return fiscal.FilingPeriod{}, false
	}

	monthStr, quarterStr := q.Get("month"), q.Get("quarter")
	if (monthStr == "") == (quarterStr == "") {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "exactly one of month or quarter is required"})
		return fiscal.FilingPeriod{}, false
	}

	var period fiscal.FilingPeriod
	if monthStr != "" {
		month, convErr := strconv.Atoi(monthStr)
		if convErr != nil {
			writeJSON(w, http.StatusBadRequest, errorJSON{Error: "month must be a number"})
			return fiscal.FilingPeriod{}, false
		}
		period, err = fiscal.Monthly(year, month)
	} else {
		quarter, convErr := strconv.Atoi(quarterStr)
		if convErr != nil {
			writeJSON(w, http.StatusBadRequest, errorJSON{Error: "quarter must be a number"})
			return fiscal.FilingPeriod{}, false
		}
		period, err = fiscal.Quarterly(year, quarter)
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: err.Error()})
		return fiscal.FilingPeriod{}, false
	}

	return period, true
}

// tenantFrom pulls the tenant id the middleware stored in the context.
func tenantFrom(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "missing tenant"})
		return uuid.Nil, false
	}
	return id, true
}
