// Package state holds the small containers shared by the schema walkers.
package state

import "iter"

// Stack is a LIFO of open scopes: elements while building a DOM, types
// while walking a schema.
type Stack[T any] struct {
	items []T
}

// NewStack returns an empty stack sized for depth scopes.
func NewStack[T any](depth int) Stack[T] {
	return Stack[T]{items: make([]T, 0, max(depth, 0))}
}

func (s *Stack[T]) Push(value T) {
	s.items = append(s.items, value)
}

// Pop removes the innermost scope.
func (s *Stack[T]) Pop() (T, bool) {
	value, ok := s.Top()
	if ok {
		var zero T
		s.items[len(s.items)-1] = zero
		s.items = s.items[:len(s.items)-1]
	}
	return value, ok
}

// Top returns the innermost scope.
func (s *Stack[T]) Top() (T, bool) {
	if s.Len() == 0 {
		var zero T
		return zero, false
	}
	return s.items[len(s.items)-1], true
}

// Bottom returns the outermost scope.
func (s *Stack[T]) Bottom() (T, bool) {
	if s.Len() == 0 {
		var zero T
		return zero, false
	}
	return s.items[0], true
}

// SetTop replaces the innermost scope. It reports false on an empty stack.
func (s *Stack[T]) SetTop(value T) bool {
	if s.Len() == 0 {
		return false
	}
	s.items[len(s.items)-1] = value
	return true
}

func (s *Stack[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

func (s *Stack[T]) Empty() bool { return s.Len() == 0 }

// Outward yields the scopes from the outermost to the innermost.
func (s *Stack[T]) Outward() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := range s.Len() {
			if !yield(s.items[i]) {
				return
			}
		}
	}
}

// Reset empties the stack and keeps its storage.
func (s *Stack[T]) Reset() {
	if s == nil {
		return
	}
	clear(s.items)
	s.items = s.items[:0]
}
