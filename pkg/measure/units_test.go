package measure

import "testing"

func TestBaseUnitValueIsIdentity(t *testing.T) {
	for _, b := range BaseUnits() {
		v := b.Value()
		if v.Magnitude != 1.0 {
			t.Fatalf("base unit %s: expected magnitude 1.0, got %v", b, v.Magnitude)
		}
		if v.Base != b {
			t.Fatalf("base unit %s: expected value to reference itself, got %s", b, v.Base)
		}
	}
}

func TestBaseUnitSetIsClosed(t *testing.T) {
	first := BaseUnits()
	second := BaseUnits()
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("expected exactly 3 base units, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("enumeration unstable at %d: %s vs %s", i, first[i], second[i])
		}
	}
	// Mutating the returned slice must not leak into the registry.
	first[0] = "parsec"
	if got := BaseUnits()[0]; got != Metre {
		t.Fatalf("registry mutated through returned slice: %s", got)
	}
	if BaseUnit("parsec").Known() {
		t.Fatalf("unexpected variant joined the closed set")
	}
}

func TestBaseUnitMetadata(t *testing.T) {
	cases := []struct {
		unit      BaseUnit
		symbol    string
		dimension string
	}{
		{Metre, "m", "L"},
		{Second, "s", "T"},
		{Kilogram, "kg", "M"},
	}
	for _, tc := range cases {
		if got := tc.unit.Symbol(); got != tc.symbol {
			t.Fatalf("%s: expected symbol %q, got %q", tc.unit, tc.symbol, got)
		}
		if got := tc.unit.Dimension(); got != tc.dimension {
			t.Fatalf("%s: expected dimension %q, got %q", tc.unit, tc.dimension, got)
		}
	}
}

func TestDerivedUnitValueReducesToDefinition(t *testing.T) {
	metre := DerivedUnit{Symbol: "m", Name: "metre", Def: Metre}
	v := metre.Value()
	if v.Magnitude != 1.0 || v.Base != Metre {
		t.Fatalf("expected (1.0, metre), got (%v, %s)", v.Magnitude, v.Base)
	}

	// Display metadata must not influence the value.
	odd := DerivedUnit{Symbol: "xyz", Name: "nonsense", Def: Second}
	if got := odd.Value(); got.Magnitude != 1.0 || got.Base != Second {
		t.Fatalf("expected (1.0, second), got (%v, %s)", got.Magnitude, got.Base)
	}
}

func TestDerivedUnitsShareBaseWithoutAliasing(t *testing.T) {
	kg := DerivedUnit{Symbol: "kg", Name: "kilogram", Def: Kilogram}
	if v := kg.Value(); v.Magnitude != 1.0 || v.Base != Kilogram {
		t.Fatalf("kg: expected (1.0, kilogram), got (%v, %s)", v.Magnitude, v.Base)
	}

	g := DerivedUnit{Symbol: "g", Name: "gram", Def: Kilogram}
	if v := g.Value(); v.Base != Kilogram {
		t.Fatalf("g: expected kilogram reference, got %s", v.Base)
	}
	// Constructing g must leave kg untouched.
	if v := kg.Value(); v.Magnitude != 1.0 || v.Base != Kilogram {
		t.Fatalf("kg changed after constructing g: (%v, %s)", v.Magnitude, v.Base)
	}
	if kg.Symbol == g.Symbol {
		t.Fatalf("descriptors are not independent")
	}
}

func TestValuerCapabilityIsUniform(t *testing.T) {
	entities := []Valuer{
		Metre,
		Kilogram,
		DerivedUnit{Symbol: "s", Name: "second", Def: Second},
	}
	for _, e := range entities {
		if v := e.Value(); v.Magnitude != 1.0 || !v.Base.Known() {
			t.Fatalf("expected unit magnitude with known base, got %+v", v)
		}
	}
}

func TestParseBaseUnit(t *testing.T) {
	cases := []struct {
		token string
		want  BaseUnit
	}{
		{"metre", Metre},
		{"m", Metre},
		{"meter", Metre},
		{"second", Second},
		{"s", Second},
		{"kilogram", Kilogram},
		{"kg", Kilogram},
		{"kilo", Kilogram},
	}
	for _, tc := range cases {
		got, err := ParseBaseUnit(tc.token)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.token, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: expected %s, got %s", tc.token, tc.want, got)
		}
	}

	if _, err := ParseBaseUnit("furlong"); err == nil {
		t.Fatalf("expected error for unknown token")
	} else if _, ok := err.(UnknownBaseUnitError); !ok {
		t.Fatalf("expected UnknownBaseUnitError, got %T", err)
	}
}

func TestDerivedUnitMatches(t *testing.T) {
	u := DerivedUnit{Symbol: "m", Name: "metre", AltNames: []string{"meter"}, Def: Metre}
	for _, token := range []string{"m", "metre", "meter"} {
		if !u.Matches(token) {
			t.Fatalf("expected %q to match", token)
		}
	}
	if u.Matches("mm") {
		t.Fatalf("unexpected match for %q", "mm")
	}
}

func TestDefaultCatalogCoversBaseUnits(t *testing.T) {
	catalog := DefaultCatalog()
	if len(catalog) != len(BaseUnits()) {
		t.Fatalf("expected %d seed descriptors, got %d", len(BaseUnits()), len(catalog))
	}
	seen := map[BaseUnit]bool{}
	for _, u := range catalog {
		if !u.Def.Known() {
			t.Fatalf("seed descriptor %q references unknown base %q", u.Symbol, u.Def)
		}
		if v := u.Value(); v.Magnitude != 1.0 || v.Base != u.Def {
			t.Fatalf("seed descriptor %q: unexpected value %+v", u.Symbol, v)
		}
		seen[u.Def] = true
	}
	for _, b := range BaseUnits() {
		if !seen[b] {
			t.Fatalf("no seed descriptor for base unit %s", b)
		}
	}
}
