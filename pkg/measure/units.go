// Package measure defines the core units-of-measure model used by unitcore:
// the closed set of base units, derived-unit descriptors, and the value
// capability that reduces any unit-like entity to a magnitude plus base unit.
package measure

import "fmt"

// BaseUnit identifies one of the fixed fundamental units that every other
// unit is ultimately expressed in terms of. The set is closed: the three
// variants below are the only valid values and no new variants can be
// constructed at runtime.
type BaseUnit string

// The fundamental unit identities. Equality is identity; two references to
// the same variant are indistinguishable.
const (
	// Metre is the base unit of length.
	Metre BaseUnit = "metre"
	// Second is the base unit of time.
	Second BaseUnit = "second"
	// Kilogram is the base unit of mass.
	Kilogram BaseUnit = "kilogram"
)

type baseUnitInfo struct {
	symbol    string
	dimension string
	altNames  []string
}

// baseUnitTable is the static registry of base-unit metadata. Derived units
// reference entries by tag, never by pointer, so lifetime is a non-issue.
var baseUnitTable = map[BaseUnit]baseUnitInfo{
	Metre:    {symbol: "m", dimension: "L", altNames: []string{"meter"}},
	Second:   {symbol: "s", dimension: "T"},
	Kilogram: {symbol: "kg", dimension: "M", altNames: []string{"kilo"}},
}

// baseUnitOrder fixes the enumeration order of BaseUnits.
var baseUnitOrder = [...]BaseUnit{Metre, Second, Kilogram}

// BaseUnits enumerates the closed variant set in a stable order. The returned
// slice is a fresh copy on every call; the underlying set never changes.
func BaseUnits() []BaseUnit {
	out := make([]BaseUnit, len(baseUnitOrder))
	copy(out, baseUnitOrder[:])
	return out
}

// Known reports whether b is one of the closed variant set.
func (b BaseUnit) Known() bool {
	_, ok := baseUnitTable[b]
	return ok
}

// Symbol returns the display symbol for the base unit, e.g. "m" for Metre.
func (b BaseUnit) Symbol() string { return baseUnitTable[b].symbol }

// Name returns the canonical display name, e.g. "metre".
func (b BaseUnit) Name() string { return string(b) }

// Dimension returns the dimension tag (L, T, M). Descriptive metadata only;
// unitcore performs no dimensional arithmetic.
func (b BaseUnit) Dimension() string { return baseUnitTable[b].dimension }

// AltNames returns alternative spellings the base unit is known under.
func (b BaseUnit) AltNames() []string {
	return append([]string(nil), baseUnitTable[b].altNames...)
}

func (b BaseUnit) String() string { return string(b) }

// UnknownBaseUnitError reports a token that does not name any base unit.
type UnknownBaseUnitError struct {
	Token string
}

func (e UnknownBaseUnitError) Error() string {
	return fmt.Sprintf("unknown base unit %q", e.Token)
}

// ParseBaseUnit resolves a token against the closed variant set, matching the
// canonical name first, then the symbol, then alternative names.
func ParseBaseUnit(token string) (BaseUnit, error) {
	if b := BaseUnit(token); b.Known() {
		return b, nil
	}
	for _, b := range baseUnitOrder {
		if baseUnitTable[b].symbol == token {
			return b, nil
		}
	}
	for _, b := range baseUnitOrder {
		for _, alt := range baseUnitTable[b].altNames {
			if alt == token {
				return b, nil
			}
		}
	}
	return "", UnknownBaseUnitError{Token: token}
}

// identityScale is the magnitude attached to every value. Scale factors other
// than unity are not representable yet; Value carries the magnitude as an
// explicit field so they can become so without changing its shape.
const identityScale = 1.0

// Value is the result of reducing a unit-like entity to its fundamental
// representation: a magnitude and the base unit it is expressed in.
type Value struct {
	Magnitude float64  `json:"magnitude"`
	Base      BaseUnit `json:"base"`
}

// Valuer is the shared capability implemented by anything that reduces to a
// magnitude plus base unit. Callers can treat base and derived units
// uniformly without branching on the concrete kind.
type Valuer interface {
	Value() Value
}

// Value reduces the base unit to itself with unit magnitude.
func (b BaseUnit) Value() Value {
	return Value{Magnitude: identityScale, Base: b}
}

// DerivedUnit is a named, symboled unit defined in terms of exactly one base
// unit. Descriptors are immutable once constructed; many descriptors may
// reference the same base unit.
type DerivedUnit struct {
	Record
	Symbol   string   `json:"symbol"`
	Name     string   `json:"name"`
	AltNames []string `json:"alt_names,omitempty"`
	Def      BaseUnit `json:"def"`
}

// Value reduces the derived unit to its defining base unit. Resolution is a
// single level of indirection: Def always names a base unit directly.
func (u DerivedUnit) Value() Value {
	return Value{Magnitude: identityScale, Base: u.Def}
}

// Matches reports whether the token names this unit by symbol, canonical
// name, or alternative name.
func (u DerivedUnit) Matches(token string) bool {
	if token == u.Symbol || token == u.Name {
		return true
	}
	for _, alt := range u.AltNames {
		if token == alt {
			return true
		}
	}
	return false
}

var (
	_ Valuer = Metre
	_ Valuer = DerivedUnit{}
)
