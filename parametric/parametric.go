// Package parametric assigns collision-free, store-backed variables to
// resolved dimensions so geometry can be edited by changing the
// parameter store instead of the solid.
package parametric

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pedrocandeias/idaia"
)

// ShapeVariables is the per-shape outcome of an assignment: the base
// name actually used (possibly suffixed) and the dimension-name →
// variable mapping, plus _x/_y/_z entries when the shape is positioned
// off the origin.
type ShapeVariables struct {
	Base string
	Vars map[string]idaia.Variable
}

// Namer assigns `{ObjectName}_{param}` variables against a parameter
// store. Collisions are resolved internally by suffixing the object
// base name with the geometry layer's incrementing counter scheme,
// never the dimension suffix, so the `{param}` vocabulary stays
// readable. A naming collision therefore never surfaces to callers.
type Namer struct {
	store idaia.ParamStore
}

// NewNamer creates a Namer over the given store.
func NewNamer(store idaia.ParamStore) *Namer {
	return &Namer{store: store}
}

// Assign creates one variable per dimension of every shape in the set,
// in creation order. baseName seeds the object name for shapes that do
// not carry their own suggested name.
func (n *Namer) Assign(baseName string, set idaia.CommandSet) ([]ShapeVariables, error) {
	out := make([]ShapeVariables, 0, len(set.Shapes))
	for i, spec := range set.Shapes {
		base := spec.Name
		if base == "" {
			base = baseName
		}
		sv, err := n.assignShape(base, spec)
		if err != nil {
			return nil, fmt.Errorf("parametric: shape %d: %w", i, err)
		}
		out = append(out, sv)
	}
	return out, nil
}

func (n *Namer) assignShape(base string, spec idaia.ShapeSpec) (ShapeVariables, error) {
	base = sanitize(base)
	names := variableNames(spec)

	base = n.uniqueBase(base, names)

	sv := ShapeVariables{Base: base, Vars: make(map[string]idaia.Variable, len(names))}
	for _, param := range names {
		v := idaia.Variable{
			Name: base + "_" + param,
			Unit: idaia.UnitMillimeter,
		}
		switch param {
		case "x":
			v.Value = spec.Position.X
			v.Description = fmt.Sprintf("X position of %s", base)
		case "y":
			v.Value = spec.Position.Y
			v.Description = fmt.Sprintf("Y position of %s", base)
		case "z":
			v.Value = spec.Position.Z
			v.Description = fmt.Sprintf("Z position of %s", base)
		default:
			v.Value = spec.Dimensions[param].Value
			v.Description = describe(param, base)
		}
		expr, err := n.store.Define(v)
		if err != nil {
			return ShapeVariables{}, fmt.Errorf("define %s: %w", v.Name, err)
		}
		v.Expression = expr
		sv.Vars[param] = v
	}
	return sv, nil
}

// variableNames lists the parameter suffixes a spec needs: one per
// dimension, plus position components when off the origin.
func variableNames(spec idaia.ShapeSpec) []string {
	names := make([]string, 0, len(spec.Dimensions)+3)
	for _, required := range idaia.RequiredDimensions(spec.Kind) {
		if _, ok := spec.Dimensions[required]; ok {
			names = append(names, required)
		}
	}
	extras := make([]string, 0, len(spec.Dimensions))
	for name := range spec.Dimensions {
		if !contains(names, name) {
			extras = append(extras, name)
		}
	}
	// Map iteration order would make the Define sequence against the
	// store vary run to run.
	sort.Strings(extras)
	names = append(names, extras...)
	if spec.Position != nil && !spec.Position.IsOrigin() {
		names = append(names, "x", "y", "z")
	}
	return names
}

// uniqueBase finds the first base name whose full variable set is free
// in the store, bumping BaseNNN the way the geometry layer numbers
// object identifiers.
func (n *Namer) uniqueBase(base string, params []string) string {
	candidate := base
	for counter := 1; ; counter++ {
		if n.allFree(candidate, params) {
			return candidate
		}
		candidate = fmt.Sprintf("%s%03d", base, counter)
	}
}

func (n *Namer) allFree(base string, params []string) bool {
	for _, p := range params {
		if n.store.Exists(base + "_" + p) {
			return false
		}
	}
	return true
}

func describe(param, base string) string {
	p := strings.ReplaceAll(param, "_", " ")
	return strings.ToUpper(p[:1]) + p[1:] + " of " + base
}

var invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// sanitize makes a base name safe for the parameter store's cell
// aliases.
func sanitize(name string) string {
	clean := strings.Trim(invalidNameChars.ReplaceAllString(name, "_"), "_")
	if clean == "" || (clean[0] >= '0' && clean[0] <= '9') {
		clean = "var_" + clean
	}
	return clean
}

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}
