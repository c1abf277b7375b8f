package collection

// Queue is a FIFO sequence: enqueue at the tail, dequeue at the head.
type Queue[T any] struct {
	elements []T
}

// NewQueue returns an empty Queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Enqueue appends v at the tail and returns the new size.
func (q *Queue[T]) Enqueue(v T) int {
	q.elements = append(q.elements, v)
	return len(q.elements)
}

// Dequeue removes and returns the head, or None when empty.
func (q *Queue[T]) Dequeue() Option[T] {
	if len(q.elements) == 0 {
		return None[T]()
	}
	v := q.elements[0]
	var zero T
	q.elements[0] = zero
	q.elements = q.elements[1:]
	return Some(v)
}

// Peek returns the head without removing it.
func (q *Queue[T]) Peek() Option[T] {
	if len(q.elements) == 0 {
		return None[T]()
	}
	return Some(q.elements[0])
}

// Size returns the number of queued elements.
func (q *Queue[T]) Size() int { return len(q.elements) }

// IsEmpty reports whether the queue is empty.
func (q *Queue[T]) IsEmpty() bool { return len(q.elements) == 0 }

// Items returns a copy of the elements, head first.
func (q *Queue[T]) Items() []T { return clone(q.elements) }
