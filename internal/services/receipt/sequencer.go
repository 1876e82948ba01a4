// Package receipt issues unique, sequential receipt identifiers of the
// form REC-YYYY-NNNNNN, one counter per (tenant, year).
package receipt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

// ErrSequencer wraps a failed or ambiguous counter increment. It is
// fatal for that receipt-numbering attempt: an ambiguous increment must
// not be retried blindly (the counter may or may not have advanced),
// and callers must never fabricate a substitute number. The
// surrounding document may still be produced without one.
var ErrSequencer = errors.New("receipt sequencer failed")

// CounterStore is the counter collaborator. IncrementAndGet must be a
// single atomic increment-and-return-new-value primitive; a separate
// read followed by an increment admits a race where two callers
// display the same number.
type CounterStore interface {
	IncrementAndGet(ctx context.Context, tenantID uuid.UUID, year int) (int64, error)
}

// Sequencer allocates receipt numbers using the business-timezone year.
type Sequencer struct {
	counters     CounterStore
	businessZone *time.Location
	now          func() time.Time
	logger       *slog.Logger
}

// NewSequencer creates a receipt sequencer.
func NewSequencer(counters CounterStore, businessZone *time.Location, logger *slog.Logger) *Sequencer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sequencer{
		counters:     counters,
		businessZone: businessZone,
		now:          time.Now,
		logger:       logger,
	}
}

// Next allocates the tenant's next receipt number for the current year,
// e.g. REC-2026-000042. The sequence starts at 1 and is strictly
// increasing per (tenant, year); a value is handed to at most one
// caller, ever.
func (s *Sequencer) Next(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := s.now().In(s.businessZone).Year()

	seq, err := s.counters.IncrementAndGet(ctx, tenantID, year)
	if err != nil {
		return "", fmt.Errorf("%w: tenant %s year %d: %v", ErrSequencer, tenantID, year, err)
	}

	number := Format(year, seq)
	s.logger.Debug("receipt number issued",
		"tenant_id", tenantID.String(),
		"receipt_number", number,
	)
	return number, nil
}

// Format renders a receipt identifier. The format is externally visible
// and bit-exact: literal REC, 4-digit year, 6-digit zero-padded
// sequence, hyphen-separated.
func Format(year int, seq int64) string {
	return fmt.Sprintf("REC-%04d-%06d", year, seq)
}

// QRPNG encodes a receipt verification payload as a PNG QR code. The
// payload carries the receipt number and the issuing tenant so a
// printed receipt can be checked against the ledger.
func QRPNG(tenantID uuid.UUID, receiptNumber string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	payload := fmt.Sprintf("lojatax:receipt:%s:%s", tenantID, receiptNumber)
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encoding receipt QR: %w", err)
	}
	return png, nil
}
