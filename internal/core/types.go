package core

import "unitcore/pkg/measure"

// Aliases keep service code close to the domain package without forcing
// callers to import both.
type (
	BaseUnit        = measure.BaseUnit
	Value           = measure.Value
	DerivedUnit     = measure.DerivedUnit
	Record          = measure.Record
	Change          = measure.Change
	Result          = measure.Result
	Violation       = measure.Violation
	Rule            = measure.Rule
	RuleView        = measure.RuleView
	RulesEngine     = measure.RulesEngine
	Transaction     = measure.Transaction
	TransactionView = measure.TransactionView
	PersistentStore = measure.PersistentStore
)

const (
	Metre    = measure.Metre
	Second   = measure.Second
	Kilogram = measure.Kilogram
)
