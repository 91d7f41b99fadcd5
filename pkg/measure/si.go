package measure

// DefaultCatalog returns the canonical SI descriptors for the three base
// units. Catalog builders typically install these before adding their own
// definitions.
func DefaultCatalog() []DerivedUnit {
	return []DerivedUnit{
		{Symbol: "m", Name: "metre", AltNames: []string{"meter"}, Def: Metre},
		{Symbol: "s", Name: "second", Def: Second},
		{Symbol: "kg", Name: "kilogram", AltNames: []string{"kilo"}, Def: Kilogram},
	}
}
