// Package memory provides an in-memory implementation of the catalog
// persistence store used for tests and ephemeral environments.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"unitcore/pkg/measure"
)

// Compile-time contract assertion ensuring memory.Store adheres to the persistence interfaces.
var _ measure.PersistentStore = (*Store)(nil)

type (
	// DerivedUnit aliases measure.DerivedUnit for in-memory persistence operations.
	DerivedUnit = measure.DerivedUnit
	// Change aliases measure.Change captured in transactions.
	Change = measure.Change
	// Result aliases measure.Result summarizing rule evaluation.
	Result = measure.Result
	// RulesEngine aliases measure.RulesEngine used to evaluate rules.
	RulesEngine = measure.RulesEngine
	// Transaction aliases measure.Transaction representing a mutable unit of work.
	Transaction = measure.Transaction
	// TransactionView aliases measure.TransactionView providing read-only state.
	TransactionView = measure.TransactionView
	// PersistentStore aliases measure.PersistentStore abstraction.
	PersistentStore = measure.PersistentStore
)

type memoryState struct {
	units map[string]DerivedUnit
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Units map[string]DerivedUnit `json:"units"`
}

func newMemoryState() memoryState {
	return memoryState{units: make(map[string]DerivedUnit)}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.units {
		cloned.units[k] = cloneUnit(v)
	}
	return cloned
}

func cloneUnit(u DerivedUnit) DerivedUnit {
	cp := u
	cp.AltNames = append([]string(nil), u.AltNames...)
	return cp
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	snapshot := Snapshot{Units: make(map[string]DerivedUnit, len(state.units))}
	for k, v := range state.units {
		snapshot.Units[k] = cloneUnit(v)
	}
	return snapshot
}

func memoryStateFromSnapshot(snapshot Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range snapshot.Units {
		state.units[k] = cloneUnit(v)
	}
	return state
}

// Store provides an in-memory transactional store for the unit catalog.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = measure.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}

// RulesEngine exposes the currently configured engine for integration points.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// transaction represents a mutation set applied to the store state.
type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

// transactionView exposes a read-only snapshot of the transactional state to rules.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// ListUnits returns all derived units within the transaction snapshot.
func (v transactionView) ListUnits() []DerivedUnit {
	out := make([]DerivedUnit, 0, len(v.state.units))
	for _, u := range v.state.units {
		out = append(out, cloneUnit(u))
	}
	return out
}

// FindUnit retrieves a derived unit by ID from the snapshot.
func (v transactionView) FindUnit(id string) (DerivedUnit, bool) {
	u, ok := v.state.units[id]
	if !ok {
		return DerivedUnit{}, false
	}
	return cloneUnit(u), true
}

// ResolveUnit matches a token against unit symbols first, then names and
// alternative names.
func (v transactionView) ResolveUnit(token string) (DerivedUnit, bool) {
	return resolveUnit(v.state, token)
}

func resolveUnit(state *memoryState, token string) (DerivedUnit, bool) {
	for _, u := range state.units {
		if u.Symbol == token {
			return cloneUnit(u), true
		}
	}
	for _, u := range state.units {
		if u.Matches(token) {
			return cloneUnit(u), true
		}
	}
	return DerivedUnit{}, false
}

// RunInTransaction executes fn within a transactional copy of the store state.
func (s *Store) RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, measure.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(ctx context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot exposes the transactional state as a read-only view.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// CreateUnit stores a new derived-unit descriptor within the transaction.
func (tx *transaction) CreateUnit(u DerivedUnit) (DerivedUnit, error) {
	if u.ID == "" {
		u.ID = tx.store.newID()
	}
	if _, exists := tx.state.units[u.ID]; exists {
		return DerivedUnit{}, fmt.Errorf("unit %q already exists", u.ID)
	}
	u.CreatedAt = tx.now
	u.UpdatedAt = tx.now
	tx.state.units[u.ID] = cloneUnit(u)
	tx.recordChange(Change{Entity: measure.EntityUnit, Action: measure.ActionCreate, After: cloneUnit(u)})
	return cloneUnit(u), nil
}

// UpdateUnit mutates a derived unit using the provided mutator function.
func (tx *transaction) UpdateUnit(id string, mutator func(*DerivedUnit) error) (DerivedUnit, error) {
	current, ok := tx.state.units[id]
	if !ok {
		return DerivedUnit{}, fmt.Errorf("unit %q not found", id)
	}
	before := cloneUnit(current)
	if err := mutator(&current); err != nil {
		return DerivedUnit{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.units[id] = cloneUnit(current)
	tx.recordChange(Change{Entity: measure.EntityUnit, Action: measure.ActionUpdate, Before: before, After: cloneUnit(current)})
	return cloneUnit(current), nil
}

// DeleteUnit removes a derived unit from the transaction state.
func (tx *transaction) DeleteUnit(id string) error {
	current, ok := tx.state.units[id]
	if !ok {
		return fmt.Errorf("unit %q not found", id)
	}
	delete(tx.state.units, id)
	tx.recordChange(Change{Entity: measure.EntityUnit, Action: measure.ActionDelete, Before: cloneUnit(current)})
	return nil
}

// FindUnit retrieves a derived unit by ID from the transactional state.
func (tx *transaction) FindUnit(id string) (DerivedUnit, bool) {
	u, ok := tx.state.units[id]
	if !ok {
		return DerivedUnit{}, false
	}
	return cloneUnit(u), true
}

// ResolveUnit matches a token against the transactional state.
func (tx *transaction) ResolveUnit(token string) (DerivedUnit, bool) {
	return resolveUnit(&tx.state, token)
}

// Read helpers ---------------------------------------------------------------

// GetUnit retrieves a derived unit by ID from committed state.
func (s *Store) GetUnit(id string) (DerivedUnit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.state.units[id]
	if !ok {
		return DerivedUnit{}, false
	}
	return cloneUnit(u), true
}

// ListUnits returns all derived units from committed state.
func (s *Store) ListUnits() []DerivedUnit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]DerivedUnit, 0, len(s.state.units))
	for _, u := range s.state.units {
		out = append(out, cloneUnit(u))
	}
	return out
}

// ResolveUnit matches a token against committed state.
func (s *Store) ResolveUnit(token string) (DerivedUnit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return resolveUnit(&s.state, token)
}
