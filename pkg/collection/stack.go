package collection

// Stack is a LIFO sequence: push and pop at the same end.
type Stack[T any] struct {
	elements []T
}

// NewStack returns an empty Stack.
func NewStack[T any]() *Stack[T] {
	return &Stack[T]{}
}

// Push places v on top and returns the new size.
func (s *Stack[T]) Push(v T) int {
	s.elements = append(s.elements, v)
	return len(s.elements)
}

// Pop removes and returns the top element, or None when empty.
func (s *Stack[T]) Pop() Option[T] {
	n := len(s.elements)
	if n == 0 {
		return None[T]()
	}
	v := s.elements[n-1]
	var zero T
	s.elements[n-1] = zero
	s.elements = s.elements[:n-1]
	return Some(v)
}

// Peek returns the top element without removing it.
func (s *Stack[T]) Peek() Option[T] {
	if len(s.elements) == 0 {
		return None[T]()
	}
	return Some(s.elements[len(s.elements)-1])
}

// Size returns the number of elements.
func (s *Stack[T]) Size() int { return len(s.elements) }

// IsEmpty reports whether the stack is empty.
func (s *Stack[T]) IsEmpty() bool { return len(s.elements) == 0 }

// Items returns a copy of the elements, bottom first.
func (s *Stack[T]) Items() []T { return clone(s.elements) }
