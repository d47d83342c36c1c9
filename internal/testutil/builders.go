package testutil

import (
	"testing"

	"github.com/junioryono/injector"
	"github.com/stretchr/testify/require"
)

// InjectorBuilder provides a fluent interface for configuring test injectors
type InjectorBuilder struct {
	t   *testing.T
	inj *injector.Injector
}

// NewInjectorBuilder creates a new InjectorBuilder over an injector with
// every fixture registered
func NewInjectorBuilder(t *testing.T, opts ...injector.Option) *InjectorBuilder {
	return &InjectorBuilder{
		t:   t,
		inj: NewInjector(t, opts...),
	}
}

// WithAlias aliases typeName to implementationName
func (b *InjectorBuilder) WithAlias(typeName, implementationName string) *InjectorBuilder {
	require.NoError(b.t, b.inj.Alias(typeName, implementationName))
	return b
}

// WithShare shares a type name or instance
func (b *InjectorBuilder) WithShare(nameOrInstance any) *InjectorBuilder {
	require.NoError(b.t, b.inj.Share(nameOrInstance))
	return b
}

// WithDelegate delegates typeName to factory
func (b *InjectorBuilder) WithDelegate(typeName string, factory any) *InjectorBuilder {
	require.NoError(b.t, b.inj.Delegate(typeName, factory))
	return b
}

// WithDefinition defines constructor arguments for typeName
func (b *InjectorBuilder) WithDefinition(typeName string, args injector.Args) *InjectorBuilder {
	require.NoError(b.t, b.inj.Define(typeName, args))
	return b
}

// WithParam defines a value for every parameter called name
func (b *InjectorBuilder) WithParam(name string, value any) *InjectorBuilder {
	require.NoError(b.t, b.inj.DefineParam(name, value))
	return b
}

// WithPrepare registers a prepare hook
func (b *InjectorBuilder) WithPrepare(typeName string, hook any) *InjectorBuilder {
	require.NoError(b.t, b.inj.Prepare(typeName, hook))
	return b
}

// WithConstructor registers a constructor
func (b *InjectorBuilder) WithConstructor(fn any, opts ...injector.FuncOption) *InjectorBuilder {
	require.NoError(b.t, b.inj.Types().RegisterConstructor(fn, opts...))
	return b
}

// Build returns the configured injector
func (b *InjectorBuilder) Build() *injector.Injector {
	return b.inj
}

// MustValidate returns the configured injector after checking that it validates
func (b *InjectorBuilder) MustValidate() *injector.Injector {
	require.NoError(b.t, b.inj.Validate(), "injector bindings do not validate")
	return b.inj
}
