package ruleparser

import (
	"regexp"

	"github.com/pedrocandeias/idaia"
)

// Compound "AxBxC unit" pattern, tried before the individual patterns
// so "10x20x30 mm" binds length/width/height in one step.
var compoundPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*x\s*(\d+(?:\.\d+)?)\s*x\s*(\d+(?:\.\d+)?)\s*([a-z"']*)`)

// Individual "name value unit" patterns. The trailing unit group also
// swallows the next bare word ("radius 8 height ..."); unknown tokens
// fall through to the millimeter default, which is exactly the
// documented leniency.
var (
	diameterPattern = dimPattern(`diameter`)
	radiusPattern   = dimPattern(`radius`)
	heightPattern   = dimPattern(`height`)
	lengthPattern   = dimPattern(`length`)
	widthPattern    = dimPattern(`width`)
	majorPattern    = dimPattern(`major[ _]radius`)
	minorPattern    = dimPattern(`minor[ _]radius`)
)

func dimPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(name + `\s+(\d+(?:\.\d+)?)\s*([a-z"']*)`)
}

type extractor struct {
	name string
	re   *regexp.Regexp
}

// extractorsFor returns the shape-specific extractors in priority
// order. Round shapes accept a diameter, resolved to radius below.
func extractorsFor(kind idaia.ShapeKind) []extractor {
	switch kind {
	case idaia.Box, idaia.Wedge:
		return []extractor{
			{"length", lengthPattern},
			{"width", widthPattern},
			{"height", heightPattern},
		}
	case idaia.Cylinder, idaia.Cone:
		return []extractor{
			{"diameter", diameterPattern},
			{"radius", radiusPattern},
			{"height", heightPattern},
		}
	case idaia.Sphere:
		return []extractor{
			{"diameter", diameterPattern},
			{"radius", radiusPattern},
		}
	case idaia.Torus:
		return []extractor{
			{"major_radius", majorPattern},
			{"minor_radius", minorPattern},
			{"diameter", diameterPattern},
		}
	}
	return nil
}

// extractDimensions runs the shape's extractors in priority order over
// the lowercased prompt. All values are normalized to millimeters here;
// diameter is halved to radius here and never later.
func extractDimensions(prompt string, kind idaia.ShapeKind) map[string]idaia.Dimension {
	dims := make(map[string]idaia.Dimension)

	if kind == idaia.Box || kind == idaia.Wedge {
		if m := compoundPattern.FindStringSubmatch(prompt); m != nil {
			factor := idaia.UnitFactor(m[4])
			dims["length"] = idaia.MM("length", mustFloat(m[1])*factor)
			dims["width"] = idaia.MM("width", mustFloat(m[2])*factor)
			dims["height"] = idaia.MM("height", mustFloat(m[3])*factor)
		}
	}

	for _, e := range extractorsFor(kind) {
		if _, taken := dims[e.name]; taken {
			continue
		}
		m := e.re.FindStringSubmatch(prompt)
		if m == nil {
			continue
		}
		v, err := idaia.ParseQuantity(m[1], m[2])
		if err != nil {
			continue // the capture group only admits numeric text
		}
		dims[e.name] = idaia.MM(e.name, v)
	}

	// Diameter resolves to radius at extraction time. An explicit
	// radius wins over a diameter in the same prompt; for a torus the
	// diameter describes the overall ring.
	if d, ok := dims["diameter"]; ok {
		delete(dims, "diameter")
		target := "radius"
		if kind == idaia.Torus {
			target = "major_radius"
		}
		if _, ok := dims[target]; !ok {
			dims[target] = idaia.MM(target, d.Value/2)
		}
	}

	return dims
}

func mustFloat(s string) float64 {
	v, _ := idaia.ParseQuantity(s, "")
	return v
}
