package core

import (
	"context"
	"fmt"
	"strings"

	"unitcore/pkg/measure"
)

// NewDefaultRulesEngine returns the rules every catalog store should run:
// symbols must be present, unique across symbols and alternative names, and
// every definition must reference a known base unit.
func NewDefaultRulesEngine() *RulesEngine {
	engine := measure.NewRulesEngine()
	engine.Register(symbolPresenceRule{})
	engine.Register(symbolUniquenessRule{})
	engine.Register(baseReferenceRule{})
	return engine
}

type symbolPresenceRule struct{}

func (symbolPresenceRule) Name() string { return "unit-symbol-presence" }

func (r symbolPresenceRule) Evaluate(_ context.Context, _ RuleView, changes []Change) (Result, error) {
	var result Result
	for _, change := range changes {
		if change.Action == measure.ActionDelete {
			continue
		}
		unit, ok := change.After.(DerivedUnit)
		if !ok {
			continue
		}
		if strings.TrimSpace(unit.Symbol) == "" {
			result.Violations = append(result.Violations, Violation{
				Rule:     r.Name(),
				Severity: measure.SeverityBlock,
				Message:  "unit symbol must not be empty",
				EntityID: unit.ID,
			})
		}
	}
	return result, nil
}

type symbolUniquenessRule struct{}

func (symbolUniquenessRule) Name() string { return "unit-symbol-uniqueness" }

func (r symbolUniquenessRule) Evaluate(_ context.Context, view RuleView, changes []Change) (Result, error) {
	var result Result
	for _, change := range changes {
		if change.Action == measure.ActionDelete {
			continue
		}
		unit, ok := change.After.(DerivedUnit)
		if !ok {
			continue
		}
		tokens := append([]string{unit.Symbol}, unit.AltNames...)
		for _, existing := range view.ListUnits() {
			if existing.ID == unit.ID {
				continue
			}
			for _, token := range tokens {
				if token == "" || !existing.Matches(token) {
					continue
				}
				result.Violations = append(result.Violations, Violation{
					Rule:     r.Name(),
					Severity: measure.SeverityBlock,
					Message:  fmt.Sprintf("token %q already registered to unit %q", token, existing.Symbol),
					EntityID: unit.ID,
				})
			}
		}
	}
	return result, nil
}

type baseReferenceRule struct{}

func (baseReferenceRule) Name() string { return "unit-base-reference" }

func (r baseReferenceRule) Evaluate(_ context.Context, _ RuleView, changes []Change) (Result, error) {
	var result Result
	for _, change := range changes {
		if change.Action == measure.ActionDelete {
			continue
		}
		unit, ok := change.After.(DerivedUnit)
		if !ok {
			continue
		}
		if !unit.Def.Known() {
			result.Violations = append(result.Violations, Violation{
				Rule:     r.Name(),
				Severity: measure.SeverityBlock,
				Message:  fmt.Sprintf("definition references unknown base unit %q", string(unit.Def)),
				EntityID: unit.ID,
			})
		}
	}
	return result, nil
}
