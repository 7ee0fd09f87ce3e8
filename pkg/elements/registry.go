package elements

// Catalogue is the full element-type table, constructed statically: no
// registration at init time, no mutation after construction.
type Catalogue struct {
	order []Kind
	defs  map[Kind]Definition
}

// NewCatalogue builds the catalogue of every supported element type.
func NewCatalogue() *Catalogue {
	c := &Catalogue{defs: map[Kind]Definition{}}
	for _, def := range []Definition{
		aquiferDefinition(),
		domainDefinition(),
		constantDefinition(),
		uniformFlowDefinition(),
		wellDefinition(),
		headWellDefinition(KindHeadWell),
		headWellDefinition(KindRemoteHeadWell),
		headLineSinkDefinition(),
		lineSinkDitchDefinition(),
		circularAreaSinkDefinition(),
		impermeableLineDoubletDefinition(),
		leakyLineDoubletDefinition(),
		polygonAreaSinkDefinition(),
		polygonSemiConfinedTopDefinition(),
		polygonInhomogeneityDefinition(),
		buildingPitDefinition(),
		leakyBuildingPitDefinition(),
		headObservationDefinition(),
		dischargeObservationDefinition(),
		particleDefinition(KindParticleForward),
		particleDefinition(KindParticleBackward),
	} {
		c.order = append(c.order, def.Kind)
		c.defs[def.Kind] = def
	}
	return c
}

// Lookup returns the definition of an element type, or an
// UnknownElementTypeError naming the available types.
func (c *Catalogue) Lookup(kind Kind) (Definition, error) {
	def, ok := c.defs[kind]
	if !ok {
		return Definition{}, &UnknownElementTypeError{Kind: kind, Available: c.Kinds()}
	}
	return def, nil
}

// Has reports whether the element type exists.
func (c *Catalogue) Has(kind Kind) bool {
	_, ok := c.defs[kind]
	return ok
}

// Kinds returns every element type in catalogue order.
func (c *Catalogue) Kinds() []Kind {
	return append([]Kind(nil), c.order...)
}
