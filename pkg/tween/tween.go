// Package tween interpolates numeric properties of scene objects toward
// target values over a duration and signals completion.
//
// A Tweener returns a Done channel for every request; it is closed once the
// interpolation has reached its targets. Presenters suspend on Done values
// with Await, which is the only place an operation waits.
//
// Requests cannot be interrupted: once issued, a tween always runs to
// completion.
package tween

import (
	"fmt"
	"time"

	"github.com/chazu/seqviz/pkg/scene"
)

// Property names an animatable numeric attribute.
type Property int

const (
	PositionX Property = iota
	PositionY
	PositionZ
	ScaleX
	ScaleY
	ScaleZ
)

func (p Property) String() string {
	switch p {
	case PositionX:
		return "position.x"
	case PositionY:
		return "position.y"
	case PositionZ:
		return "position.z"
	case ScaleX:
		return "scale.x"
	case ScaleY:
		return "scale.y"
	case ScaleZ:
		return "scale.z"
	default:
		return fmt.Sprintf("Property(%d)", int(p))
	}
}

// Props maps properties to their target values.
type Props map[Property]float64

// PositionProps returns the props that move a target to p.
func PositionProps(p scene.Vec3) Props {
	return Props{PositionX: p.X, PositionY: p.Y, PositionZ: p.Z}
}

// Target is anything whose properties can be read and written.
type Target interface {
	Get(p Property) float64
	Set(p Property, v float64)
}

// Done is closed when a tween completes.
type Done <-chan struct{}

// Tweener starts interpolations.
type Tweener interface {
	To(t Target, props Props, d time.Duration) Done
}

// Await blocks until every done channel is closed.
func Await(done ...Done) {
	for _, d := range done {
		if d != nil {
			<-d
		}
	}
}

// closed is a shared, already-closed Done.
var closed = func() Done {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Completed returns a Done that is already closed.
func Completed() Done {
	return closed
}

// Instant applies every request immediately.
type Instant struct{}

// To sets all props on t and returns a closed Done.
func (Instant) To(t Target, props Props, _ time.Duration) Done {
	apply(t, props)
	return closed
}

func apply(t Target, props Props) {
	for p, v := range props {
		t.Set(p, v)
	}
}

// ---------------------------------------------------------------------------
// Object adapter
// ---------------------------------------------------------------------------

// Object adapts a scene.Object to a Target.
func Object(o scene.Object) Target {
	return objectTarget{o}
}

type objectTarget struct {
	o scene.Object
}

func (t objectTarget) Get(p Property) float64 {
	return GetVec(t.o.Position(), t.o.Scale(), p)
}

func (t objectTarget) Set(p Property, v float64) {
	switch p {
	case PositionX, PositionY, PositionZ:
		t.o.SetPosition(SetVec(t.o.Position(), p, v))
	case ScaleX, ScaleY, ScaleZ:
		t.o.SetScale(SetVec(t.o.Scale(), p, v))
	}
}

// GetVec reads property p from a position/scale pair.
func GetVec(pos, scale scene.Vec3, p Property) float64 {
	switch p {
	case PositionX:
		return pos.X
	case PositionY:
		return pos.Y
	case PositionZ:
		return pos.Z
	case ScaleX:
		return scale.X
	case ScaleY:
		return scale.Y
	case ScaleZ:
		return scale.Z
	}
	return 0
}

// SetVec returns v with the axis named by p replaced.
func SetVec(v scene.Vec3, p Property, val float64) scene.Vec3 {
	switch p {
	case PositionX, ScaleX:
		v.X = val
	case PositionY, ScaleY:
		v.Y = val
	case PositionZ, ScaleZ:
		v.Z = val
	}
	return v
}
