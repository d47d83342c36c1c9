package testutil

import (
	"errors"
	"testing"

	"github.com/junioryono/injector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertMakes checks that T can be made and returns it
func AssertMakes[T any](t *testing.T, inj *injector.Injector, args injector.Args) T {
	t.Helper()
	v, err := injector.Make[T](inj, args)
	require.NoError(t, err, "failed to make %s", injector.NameOf[T]())
	return v
}

// AssertMakeFails checks that T cannot be made and returns the error
func AssertMakeFails[T any](t *testing.T, inj *injector.Injector, args injector.Args) error {
	t.Helper()
	_, err := injector.Make[T](inj, args)
	require.Error(t, err, "expected making %s to fail", injector.NameOf[T]())
	return err
}

// AssertInjectionError checks that err is an InjectionError with the given code
// and returns it
func AssertInjectionError(t *testing.T, err error, code error) injector.InjectionError {
	t.Helper()
	var ie injector.InjectionError
	require.True(t, errors.As(err, &ie), "expected an injection error, got %T: %v", err, err)
	assert.ErrorIs(t, ie.Code(), code)
	return ie
}

// AssertChain checks the dependency chain carried by err
func AssertChain(t *testing.T, err error, want ...string) {
	t.Helper()
	chain, ok := injector.DependencyChain(err)
	require.True(t, ok, "error carries no dependency chain: %v", err)
	assert.Equal(t, Canonical(want...), chain)
}

// AssertConfigError checks that err is a ConfigError with the given cause
func AssertConfigError(t *testing.T, err error, cause error) *injector.ConfigError {
	t.Helper()
	var ce *injector.ConfigError
	require.True(t, errors.As(err, &ce), "expected a config error, got %T: %v", err, err)
	assert.ErrorIs(t, ce, cause)
	return ce
}

// Canonical returns the canonical form of each name
func Canonical(names ...string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = injector.Canonical(name)
	}
	return out
}
