package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"unitcore/pkg/measure"
)

func TestSQLiteStorePersistAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.db")
	store, err := NewStore(path, measure.NewRulesEngine())
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx measure.Transaction) error {
		_, err := tx.CreateUnit(measure.DerivedUnit{Symbol: "m", Name: "metre", Def: measure.Metre})
		return err
	}); err != nil {
		t.Fatalf("create unit: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file missing: %v", err)
	}
	reloaded, err := NewStore(path, measure.NewRulesEngine())
	if err != nil {
		t.Fatalf("reload sqlite store: %v", err)
	}
	units := reloaded.ListUnits()
	if len(units) != 1 || units[0].Name != "metre" {
		t.Fatalf("expected persisted unit, got %+v", units)
	}
	if err := reloaded.View(context.Background(), func(view measure.TransactionView) error {
		if _, ok := view.ResolveUnit("m"); !ok {
			return fmt.Errorf("expected view to resolve metre")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
	if reloaded.Path() != path {
		t.Fatalf("expected path %s, got %s", path, reloaded.Path())
	}
	if reloaded.DB() == nil {
		t.Fatalf("expected db handle")
	}
}

func TestSQLiteStorePersistError(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "err.db"), measure.NewRulesEngine())
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	_ = store.DB().Close()
	if _, err := store.RunInTransaction(context.Background(), func(tx measure.Transaction) error {
		_, err := tx.CreateUnit(measure.DerivedUnit{Symbol: "s", Name: "second", Def: measure.Second})
		return err
	}); err == nil {
		t.Fatalf("expected persist error after closing db")
	}
}

func TestSQLiteStorePersistFullCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "full.db")
	store, err := NewStore(path, measure.NewRulesEngine())
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx measure.Transaction) error {
		for _, seed := range measure.DefaultCatalog() {
			if _, err := tx.CreateUnit(seed); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	if err := store.DB().Close(); err != nil {
		t.Fatalf("close db: %v", err)
	}
	reloaded, err := NewStore(path, measure.NewRulesEngine())
	if err != nil {
		t.Fatalf("reload sqlite store: %v", err)
	}
	defer func() { _ = reloaded.DB().Close() }()

	if got := reloaded.ListUnits(); len(got) != 3 {
		t.Fatalf("expected three units, got %d", len(got))
	}
	for _, token := range []string{"m", "second", "kilo"} {
		if _, ok := reloaded.ResolveUnit(token); !ok {
			t.Fatalf("expected %q to resolve after reload", token)
		}
	}
}

func TestSQLiteStoreLoadError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.db")
	store, err := NewStore(path, measure.NewRulesEngine())
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	_, _ = store.DB().Exec(`INSERT INTO state(bucket, payload) VALUES('units', 'not-json')`)
	_ = store.DB().Close()
	if _, err := NewStore(path, measure.NewRulesEngine()); err == nil {
		t.Fatalf("expected load error for invalid payload")
	}
}

func TestSQLiteStoreDefaultPath(t *testing.T) {
	store, err := NewStore("", measure.NewRulesEngine())
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if store.Path() == "" {
		t.Fatalf("expected default path")
	}
	_ = store.DB().Close()
	_ = os.Remove(store.Path())
}
