package collection

// Array is an ordered sequence supporting positional access.
// The zero value is an empty array ready for use.
type Array[T any] struct {
	elements []T
}

// NewArray returns an empty Array.
func NewArray[T any]() *Array[T] {
	return &Array[T]{}
}

// Insert places v at index i, shifting elements at i and above up by one.
// Valid indices are 0 through Size inclusive. Returns the new size.
func (a *Array[T]) Insert(i int, v T) (int, error) {
	if i < 0 || i > len(a.elements) {
		return len(a.elements), &IndexError{Op: "insert", Index: i, Size: len(a.elements)}
	}
	var zero T
	a.elements = append(a.elements, zero)
	copy(a.elements[i+1:], a.elements[i:])
	a.elements[i] = v
	return len(a.elements), nil
}

// Delete removes and returns the element at index i, shifting later
// elements down by one.
func (a *Array[T]) Delete(i int) (T, error) {
	var zero T
	if err := a.check("delete", i); err != nil {
		return zero, err
	}
	v := a.elements[i]
	copy(a.elements[i:], a.elements[i+1:])
	a.elements[len(a.elements)-1] = zero
	a.elements = a.elements[:len(a.elements)-1]
	return v, nil
}

// Update replaces the element at index i and returns the previous one.
func (a *Array[T]) Update(i int, v T) (T, error) {
	var zero T
	if err := a.check("update", i); err != nil {
		return zero, err
	}
	old := a.elements[i]
	a.elements[i] = v
	return old, nil
}

// Get returns the element at index i.
func (a *Array[T]) Get(i int) (T, error) {
	var zero T
	if err := a.check("get", i); err != nil {
		return zero, err
	}
	return a.elements[i], nil
}

// IndexFunc returns the index of the first element satisfying f, or -1.
func (a *Array[T]) IndexFunc(f func(T) bool) int {
	for i, e := range a.elements {
		if f(e) {
			return i
		}
	}
	return -1
}

// Size returns the number of elements.
func (a *Array[T]) Size() int { return len(a.elements) }

// IsEmpty reports whether the array holds no elements.
func (a *Array[T]) IsEmpty() bool { return len(a.elements) == 0 }

// Items returns a copy of the elements in index order.
func (a *Array[T]) Items() []T { return clone(a.elements) }

func (a *Array[T]) check(op string, i int) error {
	if i < 0 || i >= len(a.elements) {
		return &IndexError{Op: op, Index: i, Size: len(a.elements)}
	}
	return nil
}

func clone[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
