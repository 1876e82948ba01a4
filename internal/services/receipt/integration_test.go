package receipt

import (
	"context"
	"log"
	"os"
	"sync"
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

func TestPostgresCounterStore_Sequential(t *testing.T) {
	testDB.Truncate(t)
	store := NewPostgresCounterStore(testDB.Pool)
	ctx := context.Background()
	tenantID := uuid.New()

	for want := int64(1); want <= 5; want++ {
		got, err := store.IncrementAndGet(ctx, tenantID, 2026)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("sequence: got %d, want %d", got, want)
		}
	}
}

func TestPostgresCounterStore_PerTenantPerYear(t *testing.T) {
	testDB.Truncate(t)
	store := NewPostgresCounterStore(testDB.Pool)
	ctx := context.Background()

	tenantA, tenantB := uuid.New(), uuid.New()

	if _, err := store.IncrementAndGet(ctx, tenantA, 2026); err != nil {
		t.Fatal(err)
	}
	if _, err := store.IncrementAndGet(ctx, tenantA, 2026); err != nil {
		t.Fatal(err)
	}

	// A different tenant and a different year both start fresh at 1.
	if got, err := store.IncrementAndGet(ctx, tenantB, 2026); err != nil || got != 1 {
		t.Errorf("tenant B first value: got %d, %v", got, err)
	}
	if got, err := store.IncrementAndGet(ctx, tenantA, 2027); err != nil || got != 1 {
		t.Errorf("tenant A year 2027 first value: got %d, %v", got, err)
	}
}

// N concurrent callers must receive N distinct values with no
// duplicates; the atomic upsert is the only serialization point.
func TestPostgresCounterStore_ConcurrentUnique(t *testing.T) {
	testDB.Truncate(t)
	store := NewPostgresCounterStore(testDB.Pool)
	ctx := context.Background()
	tenantID := uuid.New()

	const callers = 50
	values := make(chan int64, callers)
	var wg sync.WaitGroup

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := store.IncrementAndGet(ctx, tenantID, 2026)
			if err != nil {
				t.Error(err)
				return
			}
			values <- v
		}()
	}
	wg.Wait()
	close(values)

	seen := make(map[int64]bool)
	for v := range values {
		if seen[v] {
			t.Errorf("duplicate value issued: %d", v)
		}
		seen[v] = true
		if v < 1 || v > callers {
			t.Errorf("value out of range: %d", v)
		}
	}
	if len(seen) != callers {
		t.Errorf("distinct values: got %d, want %d", len(seen), callers)
	}
}
