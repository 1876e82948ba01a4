// Package report produces calendar-month business summaries: income,
// expense, profit, VAT collected, top income categories, and a
// comparison against the preceding month.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lojatax/api/internal/fiscal"
	"github.com/lojatax/api/internal/ledger"
)

// Reader is the ledger collaborator boundary, shared with the VAT
// return service.
type Reader interface {
	QueryRange(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]ledger.Transaction, error)
}

// CategoryAmount is one row of the income-category breakdown.
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Comparison relates a month's profit to the immediately preceding
// month. It is omitted (nil) when the prior month has no data at all.
type Comparison struct {
	PreviousProfit decimal.Decimal `json:"previous_profit"`
	Delta          decimal.Decimal `json:"delta"`
	PercentChange  decimal.Decimal `json:"percent_change"`
}

// MonthlySummary is the derived month snapshot.
type MonthlySummary struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`

	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Profit       decimal.Decimal `json:"profit"`
	VATCollected decimal.Decimal `json:"vat_collected"`

	TopIncomeCategories []CategoryAmount `json:"top_income_categories"`
	TransactionCount    int              `json:"transaction_count"`

	Comparison *Comparison `json:"comparison,omitempty"`
}

// Service builds monthly summaries from the ledger.
type Service struct {
	reader       Reader
	businessZone *time.Location
	logger       *slog.Logger
}

// NewService creates a report service.
func NewService(reader Reader, businessZone *time.Location, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{reader: reader, businessZone: businessZone, logger: logger}
}

// BuildMonthly summarizes one calendar month and compares it with the
// preceding month. topN caps the income-category breakdown.
func (s *Service) BuildMonthly(ctx context.Context, tenantID uuid.UUID, year, month, topN int) (MonthlySummary, error) {
	period, err := fiscal.Monthly(year, month)
	if err != nil {
		return MonthlySummary{}, err
	}
	start, end := period.Range(s.businessZone)

	records, err := s.reader.QueryRange(ctx, tenantID, start, end)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("reading ledger for %s: %w", period, err)
	}

	summary := summarize(records)
	summary.Year = year
	summary.Month = time.Month(month)
	summary.TopIncomeCategories = topCategories(records, topN)

	// Prior-month comparison. time.Date normalizes month 0 to December
	// of the previous year.
	prevStart := time.Date(year, time.Month(month-1), 1, 0, 0, 0, 0, s.businessZone)
	prevRecords, err := s.reader.QueryRange(ctx, tenantID, prevStart, start)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("reading prior month ledger: %w", err)
	}
	if len(prevRecords) > 0 {
		prev := summarize(prevRecords)
		summary.Comparison = compareProfit(summary.Profit, prev.Profit)
	}

	return summary, nil
}

// summarize reduces one month's records to totals.
func summarize(records []ledger.Transaction) MonthlySummary {
	var income, expense, vat decimal.Decimal
	for _, t := range records {
		switch t.Direction {
		case ledger.DirectionIn:
			income = income.Add(t.Amount)
			vat = vat.Add(t.VATAmount)
		case ledger.DirectionOut:
			expense = expense.Add(t.Amount)
		}
	}

	return MonthlySummary{
		TotalIncome:      ledger.RoundMoney(income),
		TotalExpense:     ledger.RoundMoney(expense),
		Profit:           ledger.RoundMoney(income.Sub(expense)),
		VATCollected:     ledger.RoundMoney(vat),
		TransactionCount: len(records),
	}
}

// topCategories ranks income categories by gross amount, descending,
// ties broken by name for deterministic output.
func topCategories(records []ledger.Transaction, n int) []CategoryAmount {
	sums := make(map[string]decimal.Decimal)
	for _, t := range records {
		if t.Direction != ledger.DirectionIn {
			continue
		}
		sums[t.Category] = sums[t.Category].Add(t.Amount)
	}

	out := make([]CategoryAmount, 0, len(sums))
	for category, amount := range sums {
		out = append(out, CategoryAmount{Category: category, Amount: ledger.RoundMoney(amount)})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Category < out[j].Category
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// compareProfit builds the period-over-period comparison. A prior
// profit of exactly zero reports a 0 percentage instead of dividing.
func compareProfit(current, previous decimal.Decimal) *Comparison {
	delta := ledger.RoundMoney(current.Sub(previous))

	pct := decimal.Zero
	if !previous.IsZero() {
		pct = delta.Div(previous.Abs()).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return &Comparison{
		PreviousProfit: previous,
		Delta:          delta,
		PercentChange:  pct,
	}
}
