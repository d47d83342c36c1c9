package injector

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cacheTestService struct {
	Value string
}

func (s *cacheTestService) Run(n int) int { return n }

// Unexported types are only built through a registered constructor.
func newCacheTestService() *cacheTestService {
	return &cacheTestService{Value: "cached"}
}

// countingCache records every fetch so tests can see cache traffic.
type countingCache struct {
	*MemoryCache

	mu      sync.Mutex
	fetches map[string]int
}

func newCountingCache() *countingCache {
	return &countingCache{MemoryCache: NewMemoryCache(), fetches: make(map[string]int)}
}

func (c *countingCache) Fetch(key string) (any, bool) {
	c.mu.Lock()
	c.fetches[key]++
	c.mu.Unlock()
	return c.MemoryCache.Fetch(key)
}

func TestMemoryCache(t *testing.T) {
	cache := NewMemoryCache()
	assert.Equal(t, 0, cache.Len())

	_, ok := cache.Fetch("missing")
	assert.False(t, ok)

	cache.Store("a", 1)
	cache.Store("b", nil)

	got, ok := cache.Fetch("a")
	assert.True(t, ok)
	assert.Equal(t, 1, got)

	got, ok = cache.Fetch("b")
	assert.True(t, ok, "nil values are still entries")
	assert.Nil(t, got)

	cache.Store("a", 2)
	got, _ = cache.Fetch("a")
	assert.Equal(t, 2, got)
	assert.Equal(t, 2, cache.Len())

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
	_, ok = cache.Fetch("a")
	assert.False(t, ok)
}

func TestMemoryCache_ThreadSafety(t *testing.T) {
	cache := NewMemoryCache()

	var wg sync.WaitGroup
	concurrency := 50
	operations := 200

	wg.Add(concurrency * 2)
	for i := 0; i < concurrency; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < operations; j++ {
				cache.Store(ctorKeyPrefix+string(rune('a'+id%26)), j)
			}
		}(i)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < operations; j++ {
				cache.Fetch(ctorKeyPrefix + string(rune('a'+id%26)))
			}
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		cache.Clear()
	}()

	wg.Wait()
	assert.LessOrEqual(t, cache.Len(), 26)
}

func TestNopCache(t *testing.T) {
	var cache NopCache
	cache.Store("a", 1)
	_, ok := cache.Fetch("a")
	assert.False(t, ok)

	inj := New(WithCache(NopCache{}))
	require.NoError(t, inj.Types().RegisterConstructor(newCacheTestService))

	for range 2 {
		obj, err := inj.Make(NameOf[*cacheTestService](), nil)
		require.NoError(t, err)
		assert.Equal(t, "cached", obj.(*cacheTestService).Value)
	}
}

func TestInjector_CachesConstructors(t *testing.T) {
	cache := newCountingCache()
	inj := New(WithCache(cache))
	require.NoError(t, inj.Types().RegisterConstructor(newCacheTestService))

	name := NameOf[*cacheTestService]()
	key := ctorKeyPrefix + Canonical(name)

	for range 3 {
		_, err := inj.Make(name, nil)
		require.NoError(t, err)
	}

	cached, ok := cache.MemoryCache.Fetch(key)
	require.True(t, ok)
	assert.IsType(t, &Signature{}, cached)
	assert.Equal(t, 3, cache.fetches[key])

	child := inj.SeparateContext()
	_, err := child.Make(name, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, cache.fetches[key], "separate contexts share the cache")
}

func TestInjector_CachesMethods(t *testing.T) {
	cache := NewMemoryCache()
	inj := New(WithCache(cache))

	svc := &cacheTestService{}
	for range 2 {
		got, err := inj.Execute([]any{svc, "run"}, Args{":arg0": 7})
		require.NoError(t, err)
		assert.Equal(t, 7, got)
	}

	_, ok := cache.Fetch(methodKeyPrefix + "*" + Canonical(NameOf[*cacheTestService]()) + "::run")
	assert.True(t, ok)
}
