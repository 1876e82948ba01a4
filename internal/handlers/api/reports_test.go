package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lojatax/api/internal/fiscal"
	"github.com/lojatax/api/internal/handlers/api"
	"github.com/lojatax/api/internal/middleware"
	"github.com/lojatax/api/internal/services/report"
)

type fakeReports struct {
	summary report.MonthlySummary
	topN    int
}

func (f *fakeReports) BuildMonthly(_ context.Context, _ uuid.UUID, year, month, topN int) (report.MonthlySummary, error) {
	if _, err := fiscal.Monthly(year, month); err != nil {
		return report.MonthlySummary{}, err
	}
	f.topN = topN
	return f.summary, nil
}

func reportMux(reports *fakeReports) http.Handler {
	mux := http.NewServeMux()
	api.NewReportHandler(reports, nil).RegisterRoutes(mux)
	return middleware.Tenant(mux)
}

func TestGetMonthly(t *testing.T) {
	reports := &fakeReports{summary: report.MonthlySummary{
		Year:             2026,
		Month:            2,
		TotalIncome:      decimal.NewFromFloat(330),
		TotalExpense:     decimal.NewFromFloat(55),
		Profit:           decimal.NewFromFloat(275),
		VATCollected:     decimal.NewFromFloat(30),
		TransactionCount: 3,
	}}
	handler := reportMux(reports)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/monthly?year=2026&month=2", nil)
	req.Header.Set("X-Tenant-ID", uuid.NewString())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d\nbody: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Year             int    `json:"year"`
		TransactionCount int    `json:"transaction_count"`
		Profit           string `json:"profit"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Year != 2026 || resp.TransactionCount != 3 {
		t.Errorf("summary fields: %+v", resp)
	}
	if reports.topN != 5 {
		t.Errorf("default top-N: got %d, want 5", reports.topN)
	}
}

func TestGetMonthly_TopOverride(t *testing.T) {
	reports := &fakeReports{}
	handler := reportMux(reports)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/monthly?year=2026&month=2&top=3", nil)
	req.Header.Set("X-Tenant-ID", uuid.NewString())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if reports.topN != 3 {
		t.Errorf("top-N: got %d, want 3", reports.topN)
	}
}

func TestGetMonthly_BadParams(t *testing.T) {
	handler := reportMux(&fakeReports{})

	cases := map[string]string{
		"missing year":  "/api/v1/reports/monthly?month=2",
		"missing month": "/api/v1/reports/monthly?year=2026",
		"invalid month": "/api/v1/reports/monthly?year=2026&month=13",
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			req.Header.Set("X-Tenant-ID", uuid.NewString())
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", rr.Code)
			}
		})
	}
}
