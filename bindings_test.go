package injector_test

import (
	"testing"

	"github.com/junioryono/injector"
	"github.com/junioryono/injector/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlias(t *testing.T) {
	t.Parallel()

	t.Run("builds the implementation", func(t *testing.T) {
		t.Parallel()

		inj := testutil.NewInjectorBuilder(t).
			WithAlias(testutil.LoggerName, testutil.MemoryLoggerName).
			Build()

		obj, err := inj.Make(testutil.LoggerName, nil)
		require.NoError(t, err)
		assert.IsType(t, &testutil.MemoryLogger{}, obj)
	})

	t.Run("empty names", func(t *testing.T) {
		t.Parallel()

		inj := injector.New()
		for _, names := range [][2]string{{"", "b"}, {"a", ""}, {" ", "b"}} {
			err := inj.Alias(names[0], names[1])
			testutil.AssertConfigError(t, err, injector.ErrNonEmptyStringAlias)
			assert.Contains(t, err.Error(), "non-empty string required at arguments 1 and 2")
		}
	})

	t.Run("last alias wins", func(t *testing.T) {
		t.Parallel()

		inj := testutil.NewInjectorBuilder(t).
			WithAlias(testutil.StageName, testutil.TrimStageName).
			WithAlias(testutil.StageName, testutil.UpperStageName).
			Build()

		stage := testutil.AssertMakes[testutil.Stage](t, inj, nil)
		assert.Equal(t, "ABC", stage.Apply("abc"))
	})

	t.Run("chains are followed", func(t *testing.T) {
		t.Parallel()

		inj := testutil.NewInjectorBuilder(t).
			WithAlias("example.com/app.Sink", testutil.LoggerName).
			WithAlias(testutil.LoggerName, testutil.MemoryLoggerName).
			Build()

		obj, err := inj.Make("example.com/app.Sink", nil)
		require.NoError(t, err)
		assert.IsType(t, &testutil.MemoryLogger{}, obj)
	})

	t.Run("args reach the implementation", func(t *testing.T) {
		t.Parallel()

		inj := testutil.NewInjectorBuilder(t).
			WithAlias(testutil.DatabaseName, testutil.SQLDatabaseName).
			Build()

		db := testutil.AssertMakes[testutil.Database](t, inj, injector.Args{":dSN": "sqlite://"})
		assert.Equal(t, "sqlite://: q", db.Query("q"))
	})
}

func TestShare(t *testing.T) {
	t.Parallel()

	t.Run("by name", func(t *testing.T) {
		t.Parallel()

		inj := testutil.NewInjectorBuilder(t).
			WithConstructor(testutil.NewCounter).
			WithShare(testutil.CounterName).
			Build()

		first := testutil.AssertMakes[*testutil.Counter](t, inj, nil)
		second := testutil.AssertMakes[*testutil.Counter](t, inj, nil)
		assert.Same(t, first, second)

		holder := testutil.AssertMakes[*testutil.Holder](t, inj, nil)
		assert.Same(t, first, holder.Counter)
	})

	t.Run("unshared builds fresh instances", func(t *testing.T) {
		t.Parallel()

		inj := testutil.NewInjectorBuilder(t).WithConstructor(testutil.NewCounter).Build()

		first := testutil.AssertMakes[*testutil.Counter](t, inj, nil)
		second := testutil.AssertMakes[*testutil.Counter](t, inj, nil)
		assert.NotSame(t, first, second)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("by instance", func(t *testing.T) {
		t.Parallel()

		counter := testutil.NewCounter()
		inj := testutil.NewInjectorBuilder(t).WithShare(counter).Build()

		got := testutil.AssertMakes[*testutil.Counter](t, inj, nil)
		assert.Same(t, counter, got)
	})

	t.Run("repeated name is idempotent", func(t *testing.T) {
		t.Parallel()

		inj := testutil.NewInjectorBuilder(t).WithConstructor(testutil.NewCounter).Build()
		require.NoError(t, inj.Share(testutil.CounterName))

		first := testutil.AssertMakes[*testutil.Counter](t, inj, nil)
		require.NoError(t, inj.Share(testutil.CounterName))
		second := testutil.AssertMakes[*testutil.Counter](t, inj, nil)
		assert.Same(t, first, second, "sharing a filled name again keeps the instance")
	})

	t.Run("same instance twice", func(t *testing.T) {
		t.Parallel()

		counter := testutil.NewCounter()
		inj := injector.New()
		require.NoError(t, inj.Share(counter))
		assert.NoError(t, inj.Share(counter))
	})

	t.Run("different instance of a shared type", func(t *testing.T) {
		t.Parallel()

		inj := injector.New()
		require.NoError(t, inj.Share(testutil.NewCounter()))

		err := inj.Share(testutil.NewCounter())
		testutil.AssertConfigError(t, err, injector.ErrDoubleShare)
	})

	t.Run("invalid arguments", func(t *testing.T) {
		t.Parallel()

		inj := injector.New()
		for _, arg := range []any{nil, 42, true, 1.5, []string{"a"}} {
			err := inj.Share(arg)
			testutil.AssertConfigError(t, err, injector.ErrShareArgument)
		}

		testutil.AssertConfigError(t, inj.Share(""), injector.ErrEmptyName)
	})

	t.Run("make args are ignored once filled", func(t *testing.T) {
		t.Parallel()

		inj := testutil.NewInjectorBuilder(t).WithShare(testutil.ConfigName).Build()

		first := testutil.AssertMakes[*testutil.Config](t, inj, injector.Args{":host": "first"})
		second := testutil.AssertMakes[*testutil.Config](t, inj, injector.Args{":host": "second"})
		assert.Same(t, first, second)
		assert.Equal(t, "first", second.Host)
	})
}

func TestAliasSharePolicy(t *testing.T) {
	t.Parallel()

	t.Run("instance share of an aliased type fails", func(t *testing.T) {
		t.Parallel()

		inj := testutil.NewInjectorBuilder(t).
			WithAlias(testutil.CounterName, "example.com/app.OtherCounter").
			Build()

		err := inj.Share(testutil.NewCounter())
		ce := testutil.AssertConfigError(t, err, injector.ErrAliasedCannotShare)
		assert.Equal(t, injector.Canonical(testutil.CounterName), ce.Name)
		assert.Contains(t, err.Error(), "because it is currently aliased to example.com/app.othercounter")
	})

	t.Run("alias of a shared instance fails", func(t *testing.T) {
		t.Parallel()

		inj := testutil.NewInjectorBuilder(t).WithShare(testutil.NewCounter()).Build()

		err := inj.Alias(testutil.CounterName, "example.com/app.OtherCounter")
		testutil.AssertConfigError(t, err, injector.ErrSharedCannotAlias)
		assert.Contains(t, err.Error(), "because it is currently shared")
	})

	t.Run("alias moves a pending share", func(t *testing.T) {
		t.Parallel()

		inj := testutil.NewInjectorBuilder(t).
			WithShare(testutil.LoggerName).
			WithAlias(testutil.LoggerName, testutil.MemoryLoggerName).
			Build()

		first, err := inj.Make(testutil.LoggerName, nil)
		require.NoError(t, err)
		second, err := inj.Make(testutil.LoggerName, nil)
		require.NoError(t, err)
		assert.Same(t, first, second)

		impl, err := inj.Make(testutil.MemoryLoggerName, nil)
		require.NoError(t, err)
		assert.Same(t, first, impl, "the share now belongs to the implementation")

		shares := inj.Inspect("", injector.InspectShares).Shares
		assert.NotContains(t, shares, injector.Canonical(testutil.LoggerName))
		assert.Contains(t, shares, injector.Canonical(testutil.MemoryLoggerName))
	})

	t.Run("share by alias name shares the target", func(t *testing.T) {
		t.Parallel()

		inj := testutil.NewInjectorBuilder(t).
			WithAlias(testutil.LoggerName, testutil.MemoryLoggerName).
			WithShare(testutil.LoggerName).
			Build()

		viaAlias, err := inj.Make(testutil.LoggerName, nil)
		require.NoError(t, err)
		direct, err := inj.Make(testutil.MemoryLoggerName, nil)
		require.NoError(t, err)
		assert.Same(t, viaAlias, direct)
	})

	t.Run("alias after a pending share on the target", func(t *testing.T) {
		t.Parallel()

		inj := testutil.NewInjectorBuilder(t).
			WithShare(testutil.MemoryLoggerName).
			WithAlias(testutil.LoggerName, testutil.MemoryLoggerName).
			Build()

		a, err := inj.Make(testutil.LoggerName, nil)
		require.NoError(t, err)
		b, err := inj.Make(testutil.MemoryLoggerName, nil)
		require.NoError(t, err)
		assert.Same(t, a, b)
	})
}
