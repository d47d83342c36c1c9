package injector_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/junioryono/injector"
	"github.com/junioryono/injector/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInjector_ID(t *testing.T) {
	t.Parallel()

	a, b := injector.New(), injector.New()
	assert.NotEqual(t, a.ID(), b.ID())

	_, err := uuid.Parse(a.ID())
	assert.NoError(t, err)
}

func TestSeparateContext(t *testing.T) {
	t.Parallel()

	parent := testutil.NewInjectorBuilder(t).
		WithAlias(testutil.LoggerName, testutil.MemoryLoggerName).
		WithShare(testutil.CounterName).
		WithParam("host", "parent").
		Build()

	child := parent.SeparateContext()
	assert.NotEqual(t, parent.ID(), child.ID())
	assert.Same(t, parent.Types(), child.Types(), "the type registry is shared")
	assert.Equal(t, 0, child.Inspect("", 0).Populated(), "bindings are not inherited")

	t.Run("child lacks parent bindings", func(t *testing.T) {
		_, err := child.Make(testutil.LoggerName, nil)
		testutil.AssertInjectionError(t, err, injector.ErrNeedsDefinition)

		_, err = child.Make(testutil.ConfigName, nil)
		testutil.AssertInjectionError(t, err, injector.ErrUndefinedParam)
	})

	t.Run("shares are per context", func(t *testing.T) {
		fromParent := testutil.AssertMakes[*testutil.Counter](t, parent, nil)
		assert.Same(t, fromParent, testutil.AssertMakes[*testutil.Counter](t, parent, nil))

		fromChild := testutil.AssertMakes[*testutil.Counter](t, child, nil)
		assert.NotSame(t, fromParent, fromChild)
	})

	t.Run("child bindings stay in the child", func(t *testing.T) {
		require.NoError(t, child.Alias(testutil.StageName, testutil.UpperStageName))

		stage := testutil.AssertMakes[testutil.Stage](t, child, nil)
		assert.Equal(t, "ABC", stage.Apply("abc"))

		_, err := parent.Make(testutil.StageName, nil)
		testutil.AssertInjectionError(t, err, injector.ErrNeedsDefinition)
	})

	t.Run("child resolves itself", func(t *testing.T) {
		got := testutil.AssertMakes[*injector.Injector](t, child, nil)
		assert.Same(t, child, got)
	})
}

func TestSeparateContext_RegistrationsAreShared(t *testing.T) {
	t.Parallel()

	parent := injector.New()
	child := parent.SeparateContext()

	type LaterRegistered struct {
		Name string `default:"late"`
	}
	require.NoError(t, parent.Register((*LaterRegistered)(nil)))

	obj, err := child.Make(injector.NameOf[*LaterRegistered](), nil)
	require.NoError(t, err)
	assert.Equal(t, "late", obj.(*LaterRegistered).Name)
}
