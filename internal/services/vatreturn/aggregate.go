// Package vatreturn reduces a filing period's ledger into the
// statutory VAT return boxes. The reduction itself is a pure function
// over an immutable snapshot; Service wires it to the ledger store.
package vatreturn

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lojatax/api/internal/fiscal"
	"github.com/lojatax/api/internal/ledger"
)

// ErrUnclassified is returned when a record carries a VAT category the
// classifier does not know. That is an upstream data bug and must fail
// loudly rather than land in a default bucket.
var ErrUnclassified = errors.New("unclassified transaction")

// ReturnData is the derived snapshot behind every filing document for a
// (tenant, period) pair. It is never persisted; it is recomputed on
// demand from the current ledger state.
type ReturnData struct {
	Period fiscal.FilingPeriod

	// Output VAT (sales).
	TaxableSales     decimal.Decimal // net of standard-rated sales
	StandardRateVAT  decimal.Decimal // VAT on standard-rated sales
	ReducedRateSales decimal.Decimal // net of reduced-rated sales
	ZeroRatedSales   decimal.Decimal // net of zero-rated sales
	ExemptSales      decimal.Decimal // gross of exempt sales
	TotalOutputVAT   decimal.Decimal // standard + reduced VAT

	// Input VAT (purchases).
	TaxablePurchases decimal.Decimal // net of standard/reduced purchases
	TotalInputVAT    decimal.Decimal // VAT on those purchases

	// NetVATPayable is output minus input VAT; negative means a refund
	// is due.
	NetVATPayable decimal.Decimal

	TotalRevenue  decimal.Decimal // gross of all sales
	TotalExpenses decimal.Decimal // gross of all purchases

	TransactionCount int
	StandardRate     decimal.Decimal // observed on the first standard sale, else the default
	FilingDeadline   time.Time
}

// Aggregate partitions and sums the period's records into the return
// boxes. Money is summed exactly and rounded once at the end, so the
// result is independent of input order and safe to recompute
// concurrently over the same snapshot.
func Aggregate(period fiscal.FilingPeriod, records []ledger.Transaction, defaultStandardRate decimal.Decimal, loc *time.Location) (ReturnData, error) {
	data := ReturnData{
		Period:           period,
		TransactionCount: len(records),
		StandardRate:     defaultStandardRate,
		FilingDeadline:   period.Deadline(loc),
	}

	var (
		taxableSales, standardVAT   decimal.Decimal
		reducedSales, reducedVAT    decimal.Decimal
		zeroSales, exemptSales      decimal.Decimal
		taxablePurchases, inputVAT  decimal.Decimal
		totalRevenue, totalExpenses decimal.Decimal
		standardRateSeen            bool
	)

	for _, t := range records {
		switch t.Direction {
		case ledger.DirectionIn:
			totalRevenue = totalRevenue.Add(t.Amount)

			switch t.VATCategory {
			case ledger.VATStandard:
				taxableSales = taxableSales.Add(t.NetAmount)
				standardVAT = standardVAT.Add(t.VATAmount)
				if !standardRateSeen {
					data.StandardRate = t.VATRate
					standardRateSeen = true
				}
			case ledger.VATReduced:
				reducedSales = reducedSales.Add(t.NetAmount)
				reducedVAT = reducedVAT.Add(t.VATAmount)
			case ledger.VATZero:
				// VAT is zero but the base is still reported.
				zeroSales = zeroSales.Add(t.NetAmount)
			case ledger.VATExempt:
				// Exempt sales report gross: no input-VAT credit implied.
				exemptSales = exemptSales.Add(t.Amount)
			case ledger.VATNone:
				// Outside the VAT system entirely; counted in revenue only.
			default:
				return ReturnData{}, fmt.Errorf("%w: %s has category %q", ErrUnclassified, t.ID, t.VATCategory)
			}

		case ledger.DirectionOut:
			totalExpenses = totalExpenses.Add(t.Amount)

			switch t.VATCategory {
			case ledger.VATStandard, ledger.VATReduced:
				taxablePurchases = taxablePurchases.Add(t.NetAmount)
				inputVAT = inputVAT.Add(t.VATAmount)
			case ledger.VATZero, ledger.VATExempt, ledger.VATNone:
				// No reclaimable VAT.
			default:
				return ReturnData{}, fmt.Errorf("%w: %s has category %q", ErrUnclassified, t.ID, t.VATCategory)
			}

		default:
			return ReturnData{}, fmt.Errorf("%w: %s has direction %q", ErrUnclassified, t.ID, t.Direction)
		}
	}

	outputVAT := standardVAT.Add(reducedVAT)

	data.TaxableSales = ledger.RoundMoney(taxableSales)
	data.StandardRateVAT = ledger.RoundMoney(standardVAT)
	data.ReducedRateSales = ledger.RoundMoney(reducedSales)
	data.ZeroRatedSales = ledger.RoundMoney(zeroSales)
	data.ExemptSales = ledger.RoundMoney(exemptSales)
	data.TotalOutputVAT = ledger.RoundMoney(outputVAT)
	data.TaxablePurchases = ledger.RoundMoney(taxablePurchases)
	data.TotalInputVAT = ledger.RoundMoney(inputVAT)
	data.NetVATPayable = ledger.RoundMoney(outputVAT.Sub(inputVAT))
	data.TotalRevenue = ledger.RoundMoney(totalRevenue)
	data.TotalExpenses = ledger.RoundMoney(totalExpenses)

	return data, nil
}

// Refundable reports whether the period nets out to a refund.
func (d ReturnData) Refundable() bool {
	return d.NetVATPayable.IsNegative()
}
