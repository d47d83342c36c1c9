package resolution_test

import (
	"testing"

	"github.com/junioryono/injector/internal/resolution"
	"github.com/stretchr/testify/assert"
)

func TestStack_PushPop(t *testing.T) {
	t.Parallel()

	s := resolution.NewStack()
	assert.Equal(t, 0, s.Depth())

	assert.True(t, s.Push("a"))
	assert.True(t, s.Push("b"))
	assert.False(t, s.Push("a"), "a is already in progress")
	assert.Equal(t, 2, s.Depth())
	assert.True(t, s.Contains("b"))

	s.Pop("b")
	assert.False(t, s.Contains("b"))
	assert.Equal(t, []string{"a"}, s.Chain())

	assert.True(t, s.Push("b"), "b can be pushed again once popped")
}

func TestStack_PopDiscardsLaterFrames(t *testing.T) {
	t.Parallel()

	s := resolution.NewStack()
	s.Push("a")
	s.Push("b")
	s.Push("c")

	s.Pop("b")
	assert.Equal(t, []string{"a"}, s.Chain())
	assert.False(t, s.Contains("c"))

	s.Pop("missing")
	assert.Equal(t, 1, s.Depth())
}

func TestStack_Cycle(t *testing.T) {
	t.Parallel()

	s := resolution.NewStack()
	s.Push("root")
	s.Push("a")
	s.Push("b")

	assert.Equal(t, []string{"a", "b", "a"}, s.Cycle("a"))
	assert.Equal(t, []string{"root", "a", "b", "root"}, s.Cycle("root"))
	assert.Equal(t, []string{"other"}, s.Cycle("other"))
}

func TestStack_ChainIsCopy(t *testing.T) {
	t.Parallel()

	s := resolution.NewStack()
	s.Push("a")

	chain := s.Chain()
	chain[0] = "mutated"
	assert.Equal(t, []string{"a"}, s.Chain())
}
