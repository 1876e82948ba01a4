package settings

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/lojatax/api/internal/testutil"
)

var testDB *testutil.TestDB

func TestMain(m *testing.M) {
	var code int
	defer func() { os.Exit(code) }()

	tdb, err := testutil.SetupTestDB()
	if err != nil {
		log.Fatalf("setting up test database: %v", err)
	}
	defer tdb.Close()
	testDB = tdb

	code = m.Run()
}

func TestGetProfile_FallbackWhenMissing(t *testing.T) {
	testDB.Truncate(t)
	fallback := Profile{Name: "My Business", CountryCode: "TL"}
	svc := NewService(testDB.Pool, fallback, nil)

	got, err := svc.GetProfile(context.Background(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if got != fallback {
		t.Errorf("want fallback profile, got %+v", got)
	}
}

func TestUpsertAndGetProfile(t *testing.T) {
	testDB.Truncate(t)
	svc := NewService(testDB.Pool, Profile{Name: "fallback"}, nil)
	ctx := context.Background()
	tenantID := uuid.New()

	stored := Profile{
		Name:        "Loja Central",
		TaxNumber:   "TL-123456789",
		Address:     "Rua de Santa Cruz 12",
		City:        "Dili",
		CountryCode: "TL",
		Phone:       "+670 7723 0000",
	}
	if err := svc.Upsert(ctx, tenantID, stored); err != nil {
		t.Fatal(err)
	}

	got, err := svc.GetProfile(ctx, tenantID)
	if err != nil {
		t.Fatal(err)
	}
	if got != stored {
		t.Errorf("profile round-trip: got %+v", got)
	}

	// Upsert replaces.
	stored.Name = "Loja Central Lda"
	if err := svc.Upsert(ctx, tenantID, stored); err != nil {
		t.Fatal(err)
	}
	got, err = svc.GetProfile(ctx, tenantID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Loja Central Lda" {
		t.Errorf("upsert did not replace: %q", got.Name)
	}
}
