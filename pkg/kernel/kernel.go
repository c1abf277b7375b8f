// Package kernel defines the abstract geometry kernel used to export a
// scene as triangle meshes. Boxes are the only primitive a scene holds,
// so the interface covers boxes, placement and union.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Box creates a box of the given extents centered on the origin.
	Box(x, y, z float64) Solid

	Union(a, b Solid) Solid
	Translate(s Solid, x, y, z float64) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
