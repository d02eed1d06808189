// Package ruleparser implements the deterministic, offline prompt
// parser. It recognizes a single shape per prompt by keyword lookup,
// extracts dimensions with fixed patterns, and fills the remaining
// required dimensions with defaults. The same input text always yields
// the same command set; no network is involved.
package ruleparser

import (
	"fmt"
	"strings"

	"github.com/pedrocandeias/idaia"
)

// shapeKeywords maps prompt keywords to shape kinds, longest keyword
// first so "cube" is never shadowed by a generic "box" substring and
// "cylinder" wins over "pipe" in mixed prompts. First match wins.
var shapeKeywords = []struct {
	keyword string
	kind    idaia.ShapeKind
}{
	{"rectangular", idaia.Box},
	{"cylinder", idaia.Cylinder},
	{"doughnut", idaia.Torus},
	{"cuboid", idaia.Box},
	{"sphere", idaia.Sphere},
	{"torus", idaia.Torus},
	{"wedge", idaia.Wedge},
	{"donut", idaia.Torus},
	{"ball", idaia.Sphere},
	{"cone", idaia.Cone},
	{"cube", idaia.Box},
	{"pipe", idaia.Cylinder},
	{"tube", idaia.Cylinder},
	{"box", idaia.Box},
}

// Parser is the rule-based interpreter. It is stateless and safe for
// reuse across prompts.
type Parser struct{}

// New creates a Parser.
func New() *Parser {
	return &Parser{}
}

// Parse extracts a single-shape command set from free text. It fails
// only when no shape keyword is present, with an error wrapping
// [idaia.ErrNoShapeRecognized].
func (p *Parser) Parse(text string) (idaia.CommandSet, error) {
	prompt := strings.ToLower(strings.TrimSpace(text))

	kind, ok := detectShape(prompt)
	if !ok {
		return idaia.CommandSet{}, fmt.Errorf("ruleparser: %q: %w", text, idaia.ErrNoShapeRecognized)
	}

	dims := extractDimensions(prompt, kind)
	applyDefaults(dims, kind)

	spec := idaia.ShapeSpec{
		Kind:       kind,
		Name:       baseName(kind),
		Dimensions: dims,
	}
	return idaia.CommandSet{
		Shapes: []idaia.ShapeSpec{spec},
		Source: idaia.SourceRule,
	}, nil
}

func detectShape(prompt string) (idaia.ShapeKind, bool) {
	for _, e := range shapeKeywords {
		if strings.Contains(prompt, e.keyword) {
			return e.kind, true
		}
	}
	return "", false
}

// applyDefaults fills still-missing required dimensions. A box with a
// single extracted length becomes a cube; the remaining defaults match
// the geometry kernel's primitive defaults.
func applyDefaults(dims map[string]idaia.Dimension, kind idaia.ShapeKind) {
	set := func(name string, value float64) {
		if _, ok := dims[name]; !ok {
			dims[name] = idaia.MM(name, value)
		}
	}
	switch kind {
	case idaia.Box, idaia.Wedge:
		set("length", 10)
		edge := dims["length"].Value
		set("width", edge)
		set("height", edge)
	case idaia.Cylinder, idaia.Cone:
		set("radius", 5)
		set("height", 10)
	case idaia.Sphere:
		set("radius", 5)
	case idaia.Torus:
		set("major_radius", 20)
		set("minor_radius", 5)
	}
}

func baseName(kind idaia.ShapeKind) string {
	s := string(kind)
	return strings.ToUpper(s[:1]) + s[1:]
}
