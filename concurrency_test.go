package injector_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/junioryono/injector"
	"github.com/junioryono/injector/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrency_SharedInstanceIsUnique(t *testing.T) {
	t.Parallel()

	inj := testutil.NewInjectorBuilder(t).
		WithConstructor(testutil.NewCounter).
		WithShare(testutil.CounterName).
		Build()

	const goroutines = 50

	results := make([]*testutil.Counter, goroutines)
	errs := make([]error, goroutines)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = injector.Make[*testutil.Counter](inj, nil)
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
}

func TestConcurrency_ConfigureWhileResolving(t *testing.T) {
	t.Parallel()

	inj := testutil.NewInjectorBuilder(t).
		WithAlias(testutil.LoggerName, testutil.MemoryLoggerName).
		WithAlias(testutil.DatabaseName, testutil.SQLDatabaseName).
		WithParam("dSN", "sqlite://").
		Build()

	const goroutines = 20

	var wg sync.WaitGroup
	errCh := make(chan error, goroutines*2)

	wg.Add(goroutines * 2)
	for i := 0; i < goroutines; i++ {
		go func(idx int) {
			defer wg.Done()
			if _, err := injector.Make[*testutil.Service](inj, nil); err != nil {
				errCh <- err
			}
		}(i)
		go func(idx int) {
			defer wg.Done()
			if err := inj.DefineParam(fmt.Sprintf("param%d", idx), idx); err != nil {
				errCh <- err
			}
			_ = inj.Inspect("", 0)
		}(i)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		assert.NoError(t, err)
	}
	assert.Len(t, inj.Inspect("", injector.InspectParams).Params, goroutines+1)
}

func TestConcurrency_CyclesArePerCall(t *testing.T) {
	t.Parallel()

	inj := testutil.NewInjectorBuilder(t).WithParam("host", "localhost").Build()

	const goroutines = 20

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			// Concurrent builds of the same name must not see each other as cycles.
			_, err := injector.Make[*testutil.Config](inj, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
