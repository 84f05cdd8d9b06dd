package catalog

// Derived is everything a node computes from its type descriptor. It is
// recomputed on every construction and rehydration and never sent on the wire.
type Derived struct {
	Title   string
	Inputs  []ConnectorSpec
	Outputs []ConnectorSpec
	Schema  map[string]ConfigFieldSpec
}

// Derive resolves typeName and returns private copies of its connectors and
// config schema.
func Derive(r Resolver, typeName string) (Derived, error) {
	d, err := r.Lookup(typeName)
	if err != nil {
		return Derived{}, err
	}

	schema := make(map[string]ConfigFieldSpec, len(d.Config))
	for k, v := range d.Config {
		schema[k] = v
	}

	return Derived{
		Title:   d.Title,
		Inputs:  cloneSpecs(d.Inputs),
		Outputs: cloneSpecs(d.Outputs),
		Schema:  schema,
	}, nil
}

// VisibleKeys returns the schema keys shown to users, sorted
func (d Derived) VisibleKeys() []string {
	return visibleKeys(d.Schema)
}
