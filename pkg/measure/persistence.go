package measure

import "context"

// Transaction exposes the catalog operations that a persistence
// implementation must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateUnit(DerivedUnit) (DerivedUnit, error)
	UpdateUnit(id string, mutator func(*DerivedUnit) error) (DerivedUnit, error)
	DeleteUnit(id string) error
	FindUnit(id string) (DerivedUnit, bool)
	ResolveUnit(token string) (DerivedUnit, bool)
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView interface {
	RuleView
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetUnit(id string) (DerivedUnit, bool)
	ListUnits() []DerivedUnit
	ResolveUnit(token string) (DerivedUnit, bool)
}
