package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lojatax/api/internal/ledger"
)

// FixtureTransaction inserts a ledger transaction and returns it.
// Unset fields get sensible sale defaults; callers mutate the returned
// value only through new fixtures.
func (tdb *TestDB) FixtureTransaction(t *testing.T, tx ledger.Transaction) ledger.Transaction {
	t.Helper()
	ctx := context.Background()

	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.TenantID == uuid.Nil {
		tx.TenantID = uuid.New()
	}
	if tx.Direction == "" {
		tx.Direction = ledger.DirectionIn
	}
	if tx.VATCategory == "" {
		tx.VATCategory = ledger.VATStandard
	}
	if tx.Category == "" {
		tx.Category = "sales"
	}
	if tx.OccurredAt.IsZero() {
		tx.OccurredAt = time.Now().UTC()
	}
	if tx.CreatedBy == uuid.Nil {
		tx.CreatedBy = uuid.New()
	}
	if tx.Amount.IsZero() && tx.NetAmount.IsZero() {
		tx.NetAmount = decimal.NewFromInt(100)
		tx.VATAmount = decimal.NewFromInt(10)
		tx.VATRate = decimal.NewFromInt(10)
		tx.Amount = decimal.NewFromInt(110)
	}

	store := ledger.NewStore(tdb.Pool, nil)
	if err := store.Insert(ctx, tx); err != nil {
		t.Fatalf("inserting fixture transaction: %v", err)
	}
	return tx
}

// FixtureProfile stores a business profile for a tenant.
func (tdb *TestDB) FixtureProfile(t *testing.T, tenantID uuid.UUID, name string) {
	t.Helper()
	ctx := context.Background()

	_, err := tdb.Pool.Exec(ctx,
		`INSERT INTO business_profiles (tenant_id, name, tax_number, address, city, country_code, phone, updated_at)
		 VALUES ($1, $2, 'TL-000000000', '', 'Dili', 'TL', '', now())
		 ON CONFLICT (tenant_id) DO UPDATE SET name = $2, updated_at = now()`,
		tenantID, name,
	)
	if err != nil {
		t.Fatalf("storing fixture profile %q: %v", name, err)
	}
}
