package vatreturn

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lojatax/api/internal/fiscal"
	"github.com/lojatax/api/internal/ledger"
)

// Reader is the ledger collaborator boundary: all transactions for a
// tenant in a half-open interval, or an error. Implemented by
// *ledger.Store.
type Reader interface {
	QueryRange(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]ledger.Transaction, error)
}

// Service builds VAT return snapshots from the ledger.
type Service struct {
	reader       Reader
	defaultRate  decimal.Decimal
	businessZone *time.Location
	logger       *slog.Logger
}

// NewService creates a VAT return service. defaultStandardRate is the
// rate reported when a period contains no standard-rated sale.
func NewService(reader Reader, defaultStandardRate decimal.Decimal, businessZone *time.Location, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		reader:       reader,
		defaultRate:  defaultStandardRate,
		businessZone: businessZone,
		logger:       logger,
	}
}

// Build resolves the period, fetches the tenant's transactions once,
// and reduces them into a ReturnData snapshot. Safe to call repeatedly
// and concurrently; results differ only if the ledger itself changed
// between reads.
func (s *Service) Build(ctx context.Context, tenantID uuid.UUID, period fiscal.FilingPeriod) (ReturnData, error) {
	start, end := period.Range(s.businessZone)

	records, err := s.reader.QueryRange(ctx, tenantID, start, end)
	if err != nil {
		return ReturnData{}, fmt.Errorf("reading ledger for %s: %w", period, err)
	}

	data, err := Aggregate(period, records, s.defaultRate, s.businessZone)
	if err != nil {
		return ReturnData{}, fmt.Errorf("aggregating %s: %w", period, err)
	}

	s.logger.Debug("vat return built",
		"tenant_id", tenantID.String(),
		"period", period.String(),
		"transactions", data.TransactionCount,
		"net_payable", data.NetVATPayable.String(),
	)

	return data, nil
}

// Records fetches the raw snapshot behind a period, for emitters that
// need per-transaction detail (the audit export).
func (s *Service) Records(ctx context.Context, tenantID uuid.UUID, period fiscal.FilingPeriod) ([]ledger.Transaction, error) {
	start, end := period.Range(s.businessZone)
	records, err := s.reader.QueryRange(ctx, tenantID, start, end)
	if err != nil {
		return nil, fmt.Errorf("reading ledger for %s: %w", period, err)
	}
	return records, nil
}
