// Package ledger defines the transaction record model and its Postgres
// store. Records are captured upstream and are append-only here: this
// package reads them, validates their money invariants, and attaches
// receipt numbers, but never rewrites amounts.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrQueryFailed wraps I/O failures while reading transactions.
	// Reads are idempotent, so callers may retry.
	ErrQueryFailed = errors.New("ledger query failed")

	// ErrNotFound is returned when a transaction does not exist.
	ErrNotFound = errors.New("transaction not found")
)

// moneyTolerance is the permitted drift between the gross amount and
// net + VAT, one cent, to absorb rounding done at capture time.
var moneyTolerance = decimal.NewFromFloat(0.01)

// Direction tells whether money came in (a sale) or went out (a purchase).
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// VATCategory is the closed set of statutory VAT classifications. An
// unknown string fails ParseVATCategory instead of silently falling
// into a default bucket.
type VATCategory string

const (
	VATStandard VATCategory = "standard"
	VATReduced  VATCategory = "reduced"
	VATZero     VATCategory = "zero"
	VATExempt   VATCategory = "exempt"
	VATNone     VATCategory = "none"
)

// ParseVATCategory validates a stored category string.
func ParseVATCategory(s string) (VATCategory, error) {
	switch c := VATCategory(s); c {
	case VATStandard, VATReduced, VATZero, VATExempt, VATNone:
		return c, nil
	}
	return "", fmt.Errorf("unknown VAT category %q", s)
}

// Transaction is a single immutable ledger record.
type Transaction struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	Direction     Direction
	Amount        decimal.Decimal // gross
	NetAmount     decimal.Decimal
	VATAmount     decimal.Decimal
	VATRate       decimal.Decimal // percentage, e.g. 10.00
	VATCategory   VATCategory
	Category      string // free-form tag, e.g. "sales", "supplies"
	Note          *string
	OccurredAt    time.Time
	ReceiptNumber *string
	CreatedBy     uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks the record's money invariants: the gross amount must
// equal net + VAT within one cent, and exempt/none records must carry
// zero VAT.
func (t Transaction) Validate() error {
	if t.Direction != DirectionIn && t.Direction != DirectionOut {
		return fmt.Errorf("transaction %s: unknown direction %q", t.ID, t.Direction)
	}
	if _, err := ParseVATCategory(string(t.VATCategory)); err != nil {
		return fmt.Errorf("transaction %s: %w", t.ID, err)
	}

	drift := t.Amount.Sub(t.NetAmount.Add(t.VATAmount)).Abs()
	if drift.GreaterThan(moneyTolerance) {
		return fmt.Errorf("transaction %s: amount %s != net %s + vat %s",
			t.ID, t.Amount, t.NetAmount, t.VATAmount)
	}

	if (t.VATCategory == VATExempt || t.VATCategory == VATNone) && !t.VATAmount.IsZero() {
		return fmt.Errorf("transaction %s: category %s must carry zero VAT, has %s",
			t.ID, t.VATCategory, t.VATAmount)
	}

	return nil
}

// RoundMoney is the single rounding point for currency values: two
// decimal places, half away from zero. Sums are accumulated exactly and
// passed through here once before display or serialization.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
