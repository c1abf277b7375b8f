package presenter

import "github.com/chazu/seqviz/pkg/scene"

// Layout is the placement policy of a presenter.
//
// All policies lay slots out from the anchor toward -X, each slot one node
// width after the previous. They differ in which logical index sits in
// slot 0 and where nodes enter and leave the row.
type Layout int

const (
	// AppendAtTail is the queue policy: logical index i sits in slot i.
	// Nodes enter from beyond the tail and leave from the head past the
	// anchor, so the row flows toward +X.
	AppendAtTail Layout = iota
	// AppendAtTopWithShift is the stack policy: the top sits in slot 0 at
	// the open end. A push shifts every existing node one slot deeper, and
	// both pushes and pops pass through the open end.
	AppendAtTopWithShift
	// PositionalInsert is the array policy: logical index i sits in slot i.
	// Nodes drop in from above their slot and leave upward.
	PositionalInsert
)

func (l Layout) String() string {
	switch l {
	case AppendAtTail:
		return "append-at-tail"
	case AppendAtTopWithShift:
		return "append-at-top-with-shift"
	case PositionalInsert:
		return "positional-insert"
	default:
		return "unknown"
	}
}

// slot maps logical index i of a sequence of length n to its visual slot.
func (l Layout) slot(i, n int) int {
	if l == AppendAtTopWithShift {
		return n - 1 - i
	}
	return i
}

// geometry turns a layout policy into coordinates.
type geometry struct {
	layout Layout
	anchor scene.Vec3
	size   scene.Vec3
	exit   float64 // in node sizes
	lift   float64 // in node heights
}

// slotPosition is index × node width from the anchor.
func (g geometry) slotPosition(slot int) scene.Vec3 {
	return g.anchor.Add(scene.Vec3{X: -float64(slot) * g.size.X})
}

// positions returns the target position of every node in a sequence,
// indexed by logical index. Each slot starts after the summed widths of
// the nodes in earlier slots.
func (g geometry) positions(widths []float64) []scene.Vec3 {
	n := len(widths)
	bySlot := make([]float64, n)
	for i, w := range widths {
		bySlot[g.layout.slot(i, n)] = w
	}
	offsets := make([]float64, n)
	sum := 0.0
	for s, w := range bySlot {
		offsets[s] = sum
		sum += w
	}
	out := make([]scene.Vec3, n)
	for i := range widths {
		out[i] = g.anchor.Add(scene.Vec3{X: -offsets[g.layout.slot(i, n)]})
	}
	return out
}

// staging is where an incoming node is revealed before moving to target.
func (g geometry) staging(target scene.Vec3) scene.Vec3 {
	switch g.layout {
	case AppendAtTail:
		return target.Add(scene.Vec3{X: -g.exit * g.size.X})
	case AppendAtTopWithShift:
		return target.Add(scene.Vec3{X: g.exit * g.size.X})
	default:
		return target.Add(scene.Vec3{Y: g.exit * g.size.Y})
	}
}

// exitPosition is where a removed node travels from p before it is hidden.
func (g geometry) exitPosition(p scene.Vec3) scene.Vec3 {
	switch g.layout {
	case AppendAtTail, AppendAtTopWithShift:
		return p.Add(scene.Vec3{X: g.exit * g.size.X})
	default:
		return p.Add(scene.Vec3{Y: g.exit * g.size.Y})
	}
}

// sinkPosition is where a replaced node travels from p.
func (g geometry) sinkPosition(p scene.Vec3) scene.Vec3 {
	return p.Add(scene.Vec3{Y: -g.exit * g.size.Y})
}

// highlightPosition is where a queried node rises to from p.
func (g geometry) highlightPosition(p scene.Vec3) scene.Vec3 {
	return p.Add(scene.Vec3{Y: g.lift * g.size.Y})
}
