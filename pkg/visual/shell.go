package visual

import (
	"errors"
	"fmt"

	"github.com/chazu/seqviz/pkg/scene"
)

// SlotLayout returns the position of slot i.
type SlotLayout func(i int) scene.Vec3

// Shell keeps a row of placeholder slots that is never shorter than its
// declared capacity and grows with occupancy.
type Shell struct {
	renderer scene.Renderer
	capacity int
	size     scene.Vec3
	material scene.Material
	layout   SlotLayout
	slots    []scene.Box
}

// NewShell creates and shows capacity slots.
func NewShell(r scene.Renderer, capacity int, size scene.Vec3, mat scene.Material, layout SlotLayout) (*Shell, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("visual: negative shell capacity %d", capacity)
	}
	mat.Role = scene.RoleShell
	sh := &Shell{
		renderer: r,
		capacity: capacity,
		size:     size,
		material: mat,
		layout:   layout,
	}
	if err := sh.Resize(0); err != nil {
		return nil, err
	}
	return sh, nil
}

// Resize makes the slot count max(capacity, occupancy), appending slots at
// the next layout position or trimming trailing ones.
func (sh *Shell) Resize(occupancy int) error {
	want := max(sh.capacity, occupancy)
	for len(sh.slots) < want {
		slot, err := sh.renderer.NewBox(sh.size, sh.material)
		if err != nil {
			return fmt.Errorf("visual: create shell slot: %w", err)
		}
		slot.SetPosition(sh.layout(len(sh.slots)))
		if err := sh.renderer.Add(slot); err != nil {
			return errors.Join(fmt.Errorf("visual: show shell slot: %w", err), sh.renderer.Release(slot))
		}
		sh.slots = append(sh.slots, slot)
	}
	for len(sh.slots) > want {
		last := sh.slots[len(sh.slots)-1]
		if err := sh.renderer.Release(last); err != nil {
			return fmt.Errorf("visual: release shell slot: %w", err)
		}
		sh.slots = sh.slots[:len(sh.slots)-1]
	}
	return nil
}

// Relayout moves every slot to its current layout position.
func (sh *Shell) Relayout() {
	for i, slot := range sh.slots {
		slot.SetPosition(sh.layout(i))
	}
}

// Len returns the number of slots.
func (sh *Shell) Len() int { return len(sh.slots) }

// Capacity returns the declared minimum slot count.
func (sh *Shell) Capacity() int { return sh.capacity }

// Width is the total extent of the shell along X.
func (sh *Shell) Width() float64 {
	return float64(len(sh.slots)) * sh.size.X
}

// Slots returns the slot boxes in layout order.
func (sh *Shell) Slots() []scene.Box {
	out := make([]scene.Box, len(sh.slots))
	copy(out, sh.slots)
	return out
}

// Dispose hides and releases every slot.
func (sh *Shell) Dispose() error {
	for _, slot := range sh.slots {
		if err := sh.renderer.Release(slot); err != nil {
			return fmt.Errorf("visual: release shell slot: %w", err)
		}
	}
	sh.slots = nil
	return nil
}
