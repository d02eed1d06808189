package main

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pedrocandeias/idaia"
)

var _ idaia.Builder = (*sceneBuilder)(nil)

// sceneBuilder materializes command sets in memory, numbering objects
// the way a CAD document does: the bare base name first, then Box001,
// Box002, and so on.
type sceneBuilder struct {
	log  *zap.Logger
	used map[string]bool
}

func newSceneBuilder(log *zap.Logger) *sceneBuilder {
	return &sceneBuilder{log: log, used: make(map[string]bool)}
}

func (b *sceneBuilder) CreateShape(spec idaia.ShapeSpec) (idaia.ObjectRef, error) {
	if err := spec.Validate(); err != nil {
		return idaia.ObjectRef{}, err
	}
	name := b.uniqueName(objectBase(spec))
	b.used[name] = true
	b.log.Info("created object",
		zap.String("name", name),
		zap.String("kind", string(spec.Kind)))
	return idaia.ObjectRef{Name: name, Kind: spec.Kind}, nil
}

func (b *sceneBuilder) CreateParametricShape(spec idaia.ShapeSpec, vars map[string]idaia.Variable) (idaia.ObjectRef, error) {
	ref, err := b.CreateShape(spec)
	if err != nil {
		return idaia.ObjectRef{}, err
	}
	b.log.Info("bound parametric variables",
		zap.String("name", ref.Name),
		zap.Int("variables", len(vars)))
	return ref, nil
}

func (b *sceneBuilder) uniqueName(base string) string {
	if !b.used[base] {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s%03d", base, i)
		if !b.used[candidate] {
			return candidate
		}
	}
}

// objectBase derives the seed object name: the spec's own name when the
// interpreter suggested one, otherwise the capitalized kind.
func objectBase(spec idaia.ShapeSpec) string {
	if spec.Name != "" {
		return spec.Name
	}
	kind := string(spec.Kind)
	return strings.ToUpper(kind[:1]) + kind[1:]
}

var _ idaia.ParamStore = (*memParamStore)(nil)

// memParamStore is an in-memory parameter store standing in for the
// document spreadsheet. Defined names persist for the store's lifetime.
type memParamStore struct {
	vars map[string]idaia.Variable
}

func newMemParamStore() *memParamStore {
	return &memParamStore{vars: make(map[string]idaia.Variable)}
}

func (s *memParamStore) Exists(name string) bool {
	_, ok := s.vars[name]
	return ok
}

func (s *memParamStore) Define(v idaia.Variable) (string, error) {
	if s.Exists(v.Name) {
		return "", fmt.Errorf("variable %q already defined", v.Name)
	}
	s.vars[v.Name] = v
	return "Params." + v.Name, nil
}
