package state

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackOrder(t *testing.T) {
	s := NewStack[string](2)
	assert.True(t, s.Empty())

	s.Push("Customer")
	s.Push("X_ANONYMOUS_1")
	s.Push("X_ANONYMOUS_2")

	top, ok := s.Top()
	require.True(t, ok)
	assert.Equal(t, "X_ANONYMOUS_2", top)

	bottom, ok := s.Bottom()
	require.True(t, ok)
	assert.Equal(t, "Customer", bottom)
	assert.Equal(t, []string{"Customer", "X_ANONYMOUS_1", "X_ANONYMOUS_2"}, slices.Collect(s.Outward()))

	v, ok := s.Pop()
	require.True(t, ok)
	assert.Equal(t, "X_ANONYMOUS_2", v)
	assert.Equal(t, 2, s.Len())

	s.Reset()
	assert.True(t, s.Empty())
	_, ok = s.Pop()
	assert.False(t, ok)
	_, ok = s.Bottom()
	assert.False(t, ok)
}

func TestSetTopCountsChildren(t *testing.T) {
	s := NewStack[int](-1)
	assert.False(t, s.SetTop(1))

	s.Push(0)
	for range 3 {
		n, _ := s.Top()
		require.True(t, s.SetTop(n+1))
	}
	n, ok := s.Top()
	require.True(t, ok)
	assert.Equal(t, 3, n)
}

func TestNilStack(t *testing.T) {
	var s *Stack[int]
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, slices.Collect(s.Outward()))
	_, ok := s.Top()
	assert.False(t, ok)
}
