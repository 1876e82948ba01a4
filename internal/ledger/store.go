package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Store reads and annotates transactions in Postgres.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a transaction store.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

const transactionColumns = `
	id, tenant_id, direction, amount, net_amount, vat_amount, vat_rate,
	vat_category, category, note, occurred_at, receipt_number,
	created_by, created_at, updated_at`

// QueryRange returns every transaction for the tenant whose timestamp
// lies in [start, end), ordered by timestamp ascending. The result is
// fully materialized; failures wrap ErrQueryFailed and are retryable.
func (s *Store) QueryRange(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT`+transactionColumns+`
		FROM transactions
		WHERE tenant_id = $1 AND occurred_at >= $2 AND occurred_at < $3
		ORDER BY occurred_at ASC, id ASC
	`, tenantID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: querying range for tenant %s: %v", ErrQueryFailed, tenantID, err)
	}
	defer rows.Close()

	var records []Transaction
	for rows.Next() {
		record, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning transaction: %v", ErrQueryFailed, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading transactions: %v", ErrQueryFailed, err)
	}

	return records, nil
}

// GetByID returns a single transaction, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (Transaction, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT`+transactionColumns+`
		FROM transactions
		WHERE id = $1
	`, id)

	record, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrNotFound
		}
		return Transaction{}, fmt.Errorf("%w: getting transaction %s: %v", ErrQueryFailed, id, err)
	}
	return record, nil
}

// Insert stores a captured transaction. Upstream capture flows own the
// record lifecycle; this exists for those flows and for test fixtures.
func (s *Store) Insert(ctx context.Context, t Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO transactions (
			id, tenant_id, direction, amount, net_amount, vat_amount, vat_rate,
			vat_category, category, note, occurred_at, receipt_number,
			created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		t.ID, t.TenantID, string(t.Direction),
		t.Amount.String(), t.NetAmount.String(), t.VATAmount.String(), t.VATRate.String(),
		string(t.VATCategory), t.Category, t.Note, t.OccurredAt, t.ReceiptNumber,
		t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting transaction %s: %w", t.ID, err)
	}
	return nil
}

// SetReceiptNumber attaches an issued receipt number to a transaction.
// Amounts are never touched; this is the only mutation the filing core
// performs on a record.
func (s *Store) SetReceiptNumber(ctx context.Context, id uuid.UUID, receiptNumber string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE transactions
		SET receipt_number = $2, updated_at = $3
		WHERE id = $1
	`, id, receiptNumber, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("setting receipt number on %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanTransaction maps one row onto a Transaction, converting Postgres
// numerics to decimals.
func scanTransaction(row pgx.Row) (Transaction, error) {
	var (
		t                               Transaction
		direction, category             string
		amount, net, vatAmount, vatRate pgtype.Numeric
	)

	err := row.Scan(
		&t.ID, &t.TenantID, &direction, &amount, &net, &vatAmount, &vatRate,
		&category, &t.Category, &t.Note, &t.OccurredAt, &t.ReceiptNumber,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return Transaction{}, err
	}

	t.Direction = Direction(direction)
	t.VATCategory, err = ParseVATCategory(category)
	if err != nil {
		return Transaction{}, err
	}

	t.Amount = numericToDecimal(amount)
	t.NetAmount = numericToDecimal(net)
	t.VATAmount = numericToDecimal(vatAmount)
	t.VATRate = numericToDecimal(vatRate)

	return t, nil
}

// numericToDecimal converts a pgtype.Numeric into a shopspring decimal.
func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
