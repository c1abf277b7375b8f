package scene

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ErrForeignObject is returned when an object created by another renderer
// is added to or removed from a Memory scene.
var ErrForeignObject = errors.New("scene: object does not belong to this scene")

// Compile-time interface checks.
var (
	_ Renderer = (*Memory)(nil)
	_ Box      = (*memBox)(nil)
	_ Label    = (*memLabel)(nil)
)

// Memory is an in-memory Renderer. It is safe for concurrent use, so a
// render loop may snapshot it while presenters and tweens mutate objects.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]*object
	visible []string
	failure error
}

// NewMemory returns an empty scene.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]*object)}
}

// Fail makes every subsequent factory and Add call return err. Passing nil
// restores normal operation.
func (m *Memory) Fail(err error) {
	m.mu.Lock()
	m.failure = err
	m.mu.Unlock()
}

// Reset removes every object from the scene and forgets them.
func (m *Memory) Reset() {
	m.mu.Lock()
	m.objects = make(map[string]*object)
	m.visible = nil
	m.mu.Unlock()
}

// NewBox creates a box with the given base dimensions.
func (m *Memory) NewBox(dims Vec3, mat Material) (Box, error) {
	if dims.X <= 0 || dims.Y <= 0 || dims.Z <= 0 {
		return nil, fmt.Errorf("scene: box dimensions must be positive, got %s", dims)
	}
	o, err := m.create(KindBox)
	if err != nil {
		return nil, err
	}
	o.dims = dims
	o.material = mat
	return &memBox{o}, nil
}

// NewLabel creates a text label.
func (m *Memory) NewLabel(text string, style LabelStyle) (Label, error) {
	o, err := m.create(KindLabel)
	if err != nil {
		return nil, err
	}
	o.text = text
	o.style = style
	return &memLabel{o}, nil
}

func (m *Memory) create(kind Kind) (*object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failure != nil {
		return nil, m.failure
	}
	o := &object{
		mem:   m,
		id:    uuid.NewString(),
		kind:  kind,
		scale: One,
	}
	m.objects[o.id] = o
	return o, nil
}

// Add makes o visible. Adding a visible object is a no-op.
func (m *Memory) Add(o Object) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failure != nil {
		return m.failure
	}
	if _, ok := m.objects[o.ID()]; !ok {
		return fmt.Errorf("%w: %s", ErrForeignObject, o.ID())
	}
	if m.indexOf(o.ID()) >= 0 {
		return nil
	}
	m.visible = append(m.visible, o.ID())
	return nil
}

// Remove hides o. Removing an object that is not visible is a no-op.
func (m *Memory) Remove(o Object) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[o.ID()]; !ok {
		return fmt.Errorf("%w: %s", ErrForeignObject, o.ID())
	}
	if i := m.indexOf(o.ID()); i >= 0 {
		m.visible = append(m.visible[:i], m.visible[i+1:]...)
	}
	return nil
}

// Release hides o and forgets it. A released object can no longer be
// added. Releasing it again is a no-op.
func (m *Memory) Release(o Object) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.owns(o) {
		return fmt.Errorf("%w: %s", ErrForeignObject, o.ID())
	}
	if i := m.indexOf(o.ID()); i >= 0 {
		m.visible = append(m.visible[:i], m.visible[i+1:]...)
	}
	delete(m.objects, o.ID())
	return nil
}

func (m *Memory) owns(o Object) bool {
	switch v := o.(type) {
	case *memBox:
		return v.mem == m
	case *memLabel:
		return v.mem == m
	}
	return false
}

// Contains reports whether o is visible.
func (m *Memory) Contains(o Object) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.indexOf(o.ID()) >= 0
}

// Len returns the number of visible objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.visible)
}

// Objects returns the number of objects created and not yet released,
// visible or not.
func (m *Memory) Objects() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

func (m *Memory) indexOf(id string) int {
	for i, v := range m.visible {
		if v == id {
			return i
		}
	}
	return -1
}

// Snapshot captures the visible objects in the order they were added.
func (m *Memory) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]Item, 0, len(m.visible))
	for _, id := range m.visible {
		o := m.objects[id]
		items = append(items, Item{
			ID:       o.id,
			Kind:     o.kind,
			Text:     o.text,
			Position: o.pos,
			Scale:    o.scale,
			Dims:     o.dims,
			Material: o.material,
			Style:    o.style,
		})
	}
	return Snapshot{Items: items}
}

// ---------------------------------------------------------------------------
// Objects
// ---------------------------------------------------------------------------

// object is the shared state behind memBox and memLabel. Fields are guarded
// by the owning scene's lock.
type object struct {
	mem      *Memory
	id       string
	kind     Kind
	pos      Vec3
	scale    Vec3
	dims     Vec3
	material Material
	text     string
	style    LabelStyle
}

func (o *object) ID() string { return o.id }

func (o *object) Position() Vec3 {
	o.mem.mu.RLock()
	defer o.mem.mu.RUnlock()
	return o.pos
}

func (o *object) SetPosition(p Vec3) {
	o.mem.mu.Lock()
	o.pos = p
	o.mem.mu.Unlock()
}

func (o *object) Scale() Vec3 {
	o.mem.mu.RLock()
	defer o.mem.mu.RUnlock()
	return o.scale
}

func (o *object) SetScale(s Vec3) {
	o.mem.mu.Lock()
	o.scale = s
	o.mem.mu.Unlock()
}

type memBox struct{ *object }

func (b *memBox) Dimensions() Vec3   { return b.dims }
func (b *memBox) Material() Material { return b.material }

type memLabel struct{ *object }

func (l *memLabel) Text() string      { return l.text }
func (l *memLabel) Style() LabelStyle { return l.style }
