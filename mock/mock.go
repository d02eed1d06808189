// Package mock provides test doubles for idaia interfaces using
// function fields.
package mock

import (
	"context"

	"github.com/pedrocandeias/idaia"
)

// Interface compliance checks.
var (
	_ idaia.Provider   = (*Provider)(nil)
	_ idaia.Builder    = (*Builder)(nil)
	_ idaia.ParamStore = (*ParamStore)(nil)
)

// Provider is a test double for idaia.Provider.
// Set CompleteFn before calling Complete.
type Provider struct {
	CompleteFn func(ctx context.Context, req idaia.Request) (string, error)
}

// Complete delegates to CompleteFn.
func (p *Provider) Complete(ctx context.Context, req idaia.Request) (string, error) {
	return p.CompleteFn(ctx, req)
}

// Builder is a test double for idaia.Builder.
// Set the function fields for the methods you need.
type Builder struct {
	CreateShapeFn           func(spec idaia.ShapeSpec) (idaia.ObjectRef, error)
	CreateParametricShapeFn func(spec idaia.ShapeSpec, vars map[string]idaia.Variable) (idaia.ObjectRef, error)
}

// CreateShape delegates to CreateShapeFn.
func (b *Builder) CreateShape(spec idaia.ShapeSpec) (idaia.ObjectRef, error) {
	return b.CreateShapeFn(spec)
}

// CreateParametricShape delegates to CreateParametricShapeFn.
func (b *Builder) CreateParametricShape(spec idaia.ShapeSpec, vars map[string]idaia.Variable) (idaia.ObjectRef, error) {
	return b.CreateParametricShapeFn(spec, vars)
}

// ParamStore is a test double for idaia.ParamStore.
type ParamStore struct {
	ExistsFn func(name string) bool
	DefineFn func(v idaia.Variable) (string, error)
}

// Exists delegates to ExistsFn.
func (s *ParamStore) Exists(name string) bool {
	return s.ExistsFn(name)
}

// Define delegates to DefineFn.
func (s *ParamStore) Define(v idaia.Variable) (string, error) {
	return s.DefineFn(v)
}
