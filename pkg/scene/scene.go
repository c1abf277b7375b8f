// Package scene defines the rendering collaborator used by presenters:
// box and label primitives with mutable position and scale, a factory that
// creates them, and a scene that owns the visible set.
//
// Memory is a headless, thread-safe implementation used by the CLI, the
// terminal view, mesh export and tests. A GPU-backed renderer can be
// plugged in behind the same interfaces.
package scene

// Object is a primitive placed in 3D space.
type Object interface {
	ID() string
	Position() Vec3
	SetPosition(p Vec3)
	// Scale is the per-axis multiplier applied to the base geometry.
	Scale() Vec3
	SetScale(s Vec3)
}

// Box is a box-shaped primitive with fixed base dimensions.
type Box interface {
	Object
	Dimensions() Vec3
	Material() Material
}

// Label is a text primitive bound to a string.
type Label interface {
	Object
	Text() string
	Style() LabelStyle
}

// Scene owns the set of visible primitives. Remove hides an object that
// may be shown again; Release hides it for good and frees it.
type Scene interface {
	Add(o Object) error
	Remove(o Object) error
	Release(o Object) error
	Contains(o Object) bool
}

// Factory creates primitives. Created primitives are not visible until
// added to a Scene.
type Factory interface {
	NewBox(dims Vec3, m Material) (Box, error)
	NewLabel(text string, style LabelStyle) (Label, error)
}

// Renderer is a scene together with the factory for its primitives.
type Renderer interface {
	Scene
	Factory
}

// Role tags a box with its presentation purpose.
type Role int

const (
	RoleNode  Role = iota // box carrying a logical value
	RoleShell             // capacity placeholder slot
)

func (r Role) String() string {
	switch r {
	case RoleNode:
		return "node"
	case RoleShell:
		return "shell"
	default:
		return "unknown"
	}
}

// Material describes how a box is drawn.
type Material struct {
	Color     string  `yaml:"color" json:"color"`
	Opacity   float64 `yaml:"opacity" json:"opacity"`
	Wireframe bool    `yaml:"wireframe" json:"wireframe"`
	Role      Role    `yaml:"-" json:"role"`
}

// LabelStyle describes how a label is drawn.
type LabelStyle struct {
	Color string  `yaml:"color" json:"color"`
	Size  float64 `yaml:"size" json:"size"`
}

// Default materials, used when a presenter is not configured otherwise.
var (
	DefaultNodeMaterial  = Material{Color: "#4A90D9", Opacity: 1}
	DefaultShellMaterial = Material{Color: "#7F8C8D", Opacity: 0.25, Wireframe: true, Role: RoleShell}
	DefaultLabelStyle    = LabelStyle{Color: "#FFFFFF", Size: 0.4}
)
