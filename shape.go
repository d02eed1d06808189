package idaia

import (
	"fmt"
	"strings"
)

// ShapeKind identifies a primitive solid. The set is closed: adding a
// shape means adding a constant, a requiredDims row, and an extractor
// or builder entry, not a new type hierarchy.
type ShapeKind string

const (
	Box      ShapeKind = "box"
	Cylinder ShapeKind = "cylinder"
	Sphere   ShapeKind = "sphere"
	Cone     ShapeKind = "cone"
	Torus    ShapeKind = "torus"
	Wedge    ShapeKind = "wedge"
)

// ParseShapeKind maps a lowercase shape token to its ShapeKind.
func ParseShapeKind(s string) (ShapeKind, bool) {
	switch ShapeKind(strings.ToLower(strings.TrimSpace(s))) {
	case Box:
		return Box, true
	case Cylinder:
		return Cylinder, true
	case Sphere:
		return Sphere, true
	case Cone:
		return Cone, true
	case Torus:
		return Torus, true
	case Wedge:
		return Wedge, true
	}
	return "", false
}

// requiredDims is the per-kind minimum-required-fields contract.
var requiredDims = map[ShapeKind][]string{
	Box:      {"length", "width", "height"},
	Cylinder: {"radius", "height"},
	Sphere:   {"radius"},
	Cone:     {"radius", "height"},
	Torus:    {"major_radius", "minor_radius"},
	Wedge:    {"length", "width", "height"},
}

// RequiredDimensions returns the dimension names a ShapeSpec of the
// given kind must carry.
func RequiredDimensions(kind ShapeKind) []string {
	return requiredDims[kind]
}

// Dimension is a resolved dimension. Value is always in millimeters;
// normalization happens at extraction time, never later. Value must be
// positive: unresolved dimensions are absent from the spec, never
// zero-filled.
type Dimension struct {
	Name  string
	Value float64
	Unit  Unit // always UnitMillimeter after normalization
}

// MM constructs a millimeter Dimension.
func MM(name string, value float64) Dimension {
	return Dimension{Name: name, Value: value, Unit: UnitMillimeter}
}

// Vector is a position in document space, in millimeters.
type Vector struct {
	X, Y, Z float64
}

// IsOrigin reports whether the vector is the document origin.
func (v Vector) IsOrigin() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Rotation is an axis-angle rotation. Angle is in degrees.
type Rotation struct {
	Axis  Vector
	Angle float64
}

// ShapeSpec is the resolved description of one primitive solid.
type ShapeSpec struct {
	Kind       ShapeKind
	Name       string // suggested base name; the geometry layer uniquifies
	Dimensions map[string]Dimension
	Position   *Vector
	Rotation   *Rotation
}

// Dimension returns the named dimension's millimeter value.
func (s ShapeSpec) Dimension(name string) (float64, bool) {
	d, ok := s.Dimensions[name]
	if !ok {
		return 0, false
	}
	return d.Value, true
}

// Validate checks the minimum-required-fields contract for the spec's
// kind and that every present dimension is positive.
func (s ShapeSpec) Validate() error {
	required, ok := requiredDims[s.Kind]
	if !ok {
		return fmt.Errorf("unknown shape kind %q: %w", s.Kind, ErrValidation)
	}
	for _, name := range required {
		d, ok := s.Dimensions[name]
		if !ok {
			return fmt.Errorf("%s missing required dimension %q: %w", s.Kind, name, ErrValidation)
		}
		if d.Value <= 0 {
			return fmt.Errorf("%s dimension %q must be positive, got %g: %w", s.Kind, name, d.Value, ErrValidation)
		}
	}
	for name, d := range s.Dimensions {
		if d.Value <= 0 {
			return fmt.Errorf("%s dimension %q must be positive, got %g: %w", s.Kind, name, d.Value, ErrValidation)
		}
	}
	return nil
}

// Source identifies which interpretation path produced a CommandSet.
type Source string

const (
	SourceAI   Source = "ai"
	SourceRule Source = "rule"
)

// CommandSet is the ordered result of exactly one parse attempt. Order
// is the creation order presented to the geometry builder.
type CommandSet struct {
	Shapes      []ShapeSpec
	Explanation string  // optional, AI-authored
	Confidence  float64 // 0 when the source does not report one
	Source      Source
}

// Validate checks every shape in creation order.
func (c CommandSet) Validate() error {
	if len(c.Shapes) == 0 {
		return fmt.Errorf("empty command set: %w", ErrValidation)
	}
	for i, s := range c.Shapes {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("shape %d: %w", i, err)
		}
	}
	return nil
}
