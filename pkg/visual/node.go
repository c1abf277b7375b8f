// Package visual binds logical values to scene primitives.
//
// A Node owns one box and one label for exactly one logical slot's visible
// lifetime. A Shell renders declared capacity as placeholder boxes that
// share the nodes' coordinate space.
package visual

import (
	"errors"
	"fmt"

	"github.com/chazu/seqviz/pkg/scene"
	"github.com/chazu/seqviz/pkg/tween"
)

// Spec describes how nodes of one presenter look.
type Spec struct {
	Size        scene.Vec3
	Material    scene.Material
	LabelStyle  scene.LabelStyle
	LabelOffset scene.Vec3
}

// DefaultSpec is a unit cube with the default materials.
func DefaultSpec() Spec {
	return Spec{
		Size:        scene.One,
		Material:    scene.DefaultNodeMaterial,
		LabelStyle:  scene.DefaultLabelStyle,
		LabelOffset: scene.Vec3{Z: 0.51},
	}
}

// unitGeometry is the base box geometry; node size is expressed as scale.
var unitGeometry = scene.One

// Node is the visual counterpart of one logical value.
type Node[T any] struct {
	value       T
	box         scene.Box
	label       scene.Label
	scene       scene.Scene
	labelOffset scene.Vec3
	visible     bool
}

// Compile-time interface check.
var _ tween.Target = (*Node[int])(nil)

// NewNode creates the box and label for value. The node is not visible
// until Show is called. text is the label content.
func NewNode[T any](r scene.Renderer, value T, text string, spec Spec) (*Node[T], error) {
	mat := spec.Material
	mat.Role = scene.RoleNode
	box, err := r.NewBox(unitGeometry, mat)
	if err != nil {
		return nil, fmt.Errorf("visual: create box: %w", err)
	}
	label, err := r.NewLabel(text, spec.LabelStyle)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("visual: create label: %w", err), r.Release(box))
	}
	n := &Node[T]{
		value:       value,
		box:         box,
		label:       label,
		scene:       r,
		labelOffset: spec.LabelOffset,
	}
	n.SetSize(spec.Size)
	n.SetPosition(scene.Vec3{})
	return n, nil
}

// Value returns the logical value carried by the node.
func (n *Node[T]) Value() T { return n.value }

// Text returns the label text.
func (n *Node[T]) Text() string { return n.label.Text() }

// Box returns the node's box primitive.
func (n *Node[T]) Box() scene.Box { return n.box }

// Label returns the node's label primitive.
func (n *Node[T]) Label() scene.Label { return n.label }

// Position returns the box position.
func (n *Node[T]) Position() scene.Vec3 { return n.box.Position() }

// SetPosition moves the box and keeps the label at its offset.
func (n *Node[T]) SetPosition(p scene.Vec3) {
	n.box.SetPosition(p)
	n.label.SetPosition(p.Add(n.labelOffset))
}

// Size returns the rendered box dimensions.
func (n *Node[T]) Size() scene.Vec3 {
	return n.box.Dimensions().Mul(n.box.Scale())
}

// SetSize resizes the box by scaling its base geometry.
func (n *Node[T]) SetSize(s scene.Vec3) {
	d := n.box.Dimensions()
	n.box.SetScale(scene.Vec3{X: s.X / d.X, Y: s.Y / d.Y, Z: s.Z / d.Z})
}

// Width is the box extent along X.
func (n *Node[T]) Width() float64 { return n.Size().X }

// LabelOffset returns the label position relative to the box.
func (n *Node[T]) LabelOffset() scene.Vec3 { return n.labelOffset }

// SetLabelOffset moves the label relative to the box.
func (n *Node[T]) SetLabelOffset(o scene.Vec3) {
	n.labelOffset = o
	n.label.SetPosition(n.box.Position().Add(o))
}

// Show adds the box and label to the scene. Either both become visible or
// neither does.
func (n *Node[T]) Show() error {
	if err := n.scene.Add(n.box); err != nil {
		return fmt.Errorf("visual: show box: %w", err)
	}
	if err := n.scene.Add(n.label); err != nil {
		return errors.Join(fmt.Errorf("visual: show label: %w", err), n.scene.Remove(n.box))
	}
	n.visible = true
	return nil
}

// Hide removes the box and label from the scene.
func (n *Node[T]) Hide() error {
	if err := n.scene.Remove(n.box); err != nil {
		return fmt.Errorf("visual: hide box: %w", err)
	}
	if err := n.scene.Remove(n.label); err != nil {
		return fmt.Errorf("visual: hide label: %w", err)
	}
	n.visible = false
	return nil
}

// Destroy hides the node and releases its primitives. A destroyed node
// cannot be shown again.
func (n *Node[T]) Destroy() error {
	err := errors.Join(n.scene.Release(n.box), n.scene.Release(n.label))
	if err != nil {
		return fmt.Errorf("visual: destroy: %w", err)
	}
	n.visible = false
	return nil
}

// Visible reports whether the node is shown.
func (n *Node[T]) Visible() bool { return n.visible }

// Get implements tween.Target. Position properties address the box; the
// label follows.
func (n *Node[T]) Get(p tween.Property) float64 {
	return tween.GetVec(n.box.Position(), n.Size(), p)
}

// Set implements tween.Target. Scale properties are absolute sizes.
func (n *Node[T]) Set(p tween.Property, v float64) {
	switch p {
	case tween.PositionX, tween.PositionY, tween.PositionZ:
		n.SetPosition(tween.SetVec(n.box.Position(), p, v))
	case tween.ScaleX, tween.ScaleY, tween.ScaleZ:
		n.SetSize(tween.SetVec(n.Size(), p, v))
	}
}
