package presenter

import (
	"fmt"

	"github.com/chazu/seqviz/pkg/collection"
)

// Queue is the operation set of a queue presenter.
type Queue[T any] interface {
	Enqueue(v T) (int, error)
	Dequeue() (collection.Option[T], error)
	Peek() (collection.Option[T], error)
	Size() int
	IsEmpty() bool
}

// Stack is the operation set of a stack presenter.
type Stack[T any] interface {
	Push(v T) (int, error)
	Pop() (collection.Option[T], error)
	Peek() (collection.Option[T], error)
	Size() int
	IsEmpty() bool
}

// Array is the operation set of an array presenter.
type Array[T any] interface {
	Insert(i int, v T) (int, error)
	Delete(i int) (T, error)
	Update(i int, v T) error
	Get(i int) (T, error)
	Contains(v T) (bool, error)
	Size() int
	IsEmpty() bool
}

func notImplemented(kind, op string) error {
	return fmt.Errorf("%w: %s %s", ErrNotImplemented, kind, op)
}

// UnimplementedQueue can be embedded by partial Queue implementations.
// Every operation it provides fails with ErrNotImplemented. Size and
// IsEmpty are left to the embedder.
type UnimplementedQueue[T any] struct{}

func (UnimplementedQueue[T]) Enqueue(T) (int, error) {
	return 0, notImplemented("queue", "enqueue")
}

func (UnimplementedQueue[T]) Dequeue() (collection.Option[T], error) {
	return collection.None[T](), notImplemented("queue", "dequeue")
}

func (UnimplementedQueue[T]) Peek() (collection.Option[T], error) {
	return collection.None[T](), notImplemented("queue", "peek")
}

// UnimplementedStack can be embedded by partial Stack implementations.
type UnimplementedStack[T any] struct{}

func (UnimplementedStack[T]) Push(T) (int, error) {
	return 0, notImplemented("stack", "push")
}

func (UnimplementedStack[T]) Pop() (collection.Option[T], error) {
	return collection.None[T](), notImplemented("stack", "pop")
}

func (UnimplementedStack[T]) Peek() (collection.Option[T], error) {
	return collection.None[T](), notImplemented("stack", "peek")
}

// UnimplementedArray can be embedded by partial Array implementations.
type UnimplementedArray[T any] struct{}

func (UnimplementedArray[T]) Insert(int, T) (int, error) {
	return 0, notImplemented("array", "insert")
}

func (UnimplementedArray[T]) Delete(int) (T, error) {
	var zero T
	return zero, notImplemented("array", "delete")
}

func (UnimplementedArray[T]) Update(int, T) error {
	return notImplemented("array", "update")
}

func (UnimplementedArray[T]) Get(int) (T, error) {
	var zero T
	return zero, notImplemented("array", "get")
}

func (UnimplementedArray[T]) Contains(T) (bool, error) {
	return false, notImplemented("array", "contains")
}
