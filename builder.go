package idaia

// Variable is a parametric variable backed by the parameter store.
// Name follows the `{ObjectName}_{param}` pattern and is unique within
// the store for the lifetime of the document. Expression is the
// store-side reference used by the geometry layer's setExpression.
type Variable struct {
	Name        string
	Value       float64
	Unit        Unit
	Description string
	Expression  string
}

// ParamStore is the external key→value parameter table. Define returns
// the expression string that references the newly created entry.
type ParamStore interface {
	Exists(name string) bool
	Define(v Variable) (expression string, err error)
}

// Builder is the external geometry kernel seam. Implementations report
// failures as descriptive errors fit for direct display; no geometry
// internals cross this boundary.
type Builder interface {
	CreateShape(spec ShapeSpec) (ObjectRef, error)
	CreateParametricShape(spec ShapeSpec, vars map[string]Variable) (ObjectRef, error)
}
