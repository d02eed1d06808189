package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pedrocandeias/idaia"
)

// Wire schema of the model's reply.
type reply struct {
	Commands    []command `json:"commands"`
	Explanation string    `json:"explanation"`
	Confidence  float64   `json:"confidence"`
}

type command struct {
	Type       string             `json:"type"`
	Shape      string             `json:"shape"`
	Dimensions map[string]float64 `json:"dimensions"`
	Position   *wireVec           `json:"position"`
	Rotation   *wireRot           `json:"rotation"`
	Name       string             `json:"name"`
}

type wireVec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type wireRot struct {
	Axis  wireVec `json:"axis"`
	Angle float64 `json:"angle"`
}

// decodeReply turns the raw model reply into a validated command set.
// It strips non-structural wrapping, decodes, and checks the per-kind
// required-dimension contract. A missing dimension is never fabricated
// on the model's behalf; the reply is rejected as malformed instead.
func decodeReply(raw string) (idaia.CommandSet, error) {
	body, ok := extractJSON(stripFences(raw))
	if !ok {
		return idaia.CommandSet{}, fmt.Errorf("no JSON object in reply: %w", idaia.ErrMalformedReply)
	}

	var r reply
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return idaia.CommandSet{}, fmt.Errorf("decode reply: %v: %w", err, idaia.ErrMalformedReply)
	}
	if len(r.Commands) == 0 {
		return idaia.CommandSet{}, fmt.Errorf("reply has no commands: %w", idaia.ErrMalformedReply)
	}

	set := idaia.CommandSet{
		Explanation: strings.TrimSpace(r.Explanation),
		Confidence:  r.Confidence,
		Source:      idaia.SourceAI,
	}
	for i, c := range r.Commands {
		spec, err := c.toShapeSpec()
		if err != nil {
			return idaia.CommandSet{}, fmt.Errorf("command %d: %w", i, err)
		}
		set.Shapes = append(set.Shapes, spec)
	}
	return set, nil
}

func (c command) toShapeSpec() (idaia.ShapeSpec, error) {
	if c.Type != "" && c.Type != "create" {
		return idaia.ShapeSpec{}, fmt.Errorf("unsupported command type %q: %w", c.Type, idaia.ErrMalformedReply)
	}
	kind, ok := idaia.ParseShapeKind(c.Shape)
	if !ok {
		return idaia.ShapeSpec{}, fmt.Errorf("unknown shape %q: %w", c.Shape, idaia.ErrMalformedReply)
	}

	dims := make(map[string]idaia.Dimension, len(c.Dimensions))
	for name, value := range c.Dimensions {
		dims[strings.ToLower(name)] = idaia.MM(strings.ToLower(name), value)
	}
	// Accept a diameter where a radius is required; halved here, the
	// only repair the agent performs.
	if d, ok := dims["diameter"]; ok {
		delete(dims, "diameter")
		if _, ok := dims["radius"]; !ok {
			dims["radius"] = idaia.MM("radius", d.Value/2)
		}
	}

	spec := idaia.ShapeSpec{
		Kind:       kind,
		Name:       c.Name,
		Dimensions: dims,
	}
	if c.Position != nil {
		spec.Position = &idaia.Vector{X: c.Position.X, Y: c.Position.Y, Z: c.Position.Z}
	}
	if c.Rotation != nil {
		spec.Rotation = &idaia.Rotation{
			Axis:  idaia.Vector{X: c.Rotation.Axis.X, Y: c.Rotation.Axis.Y, Z: c.Rotation.Axis.Z},
			Angle: c.Rotation.Angle,
		}
	}
	if err := spec.Validate(); err != nil {
		return idaia.ShapeSpec{}, fmt.Errorf("%v: %w", err, idaia.ErrMalformedReply)
	}
	return spec, nil
}

// stripFences removes a wrapping markdown code fence, with or without a
// language tag. Inner content is untouched.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// extractJSON returns the outermost {...} span of s. Models sometimes
// surround the object with prose; anything outside the braces is
// non-structural.
func extractJSON(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}
