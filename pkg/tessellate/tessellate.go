// Package tessellate turns a scene snapshot into triangle meshes using a
// geometry kernel. Every visible node box becomes its own mesh; all shell
// slots are merged into one.
package tessellate

import (
	"fmt"
	"math"

	"github.com/chazu/seqviz/pkg/kernel"
	"github.com/chazu/seqviz/pkg/scene"
)

// ShellMeshName names the merged shell mesh.
const ShellMeshName = "shell"

// Tessellate produces one mesh per visible node box, named after the label
// drawn on it, followed by a single mesh for the union of all shell slots.
// Boxes with a non-positive extent are skipped. The snapshot is not
// modified.
func Tessellate(snap scene.Snapshot, k kernel.Kernel) ([]*kernel.Mesh, error) {
	labels := snap.Labels()

	var meshes []*kernel.Mesh
	for _, it := range snap.Boxes(scene.RoleNode) {
		solid, ok := place(k, it)
		if !ok {
			continue
		}
		mesh, err := k.ToMesh(solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for node %s: %w", it.ID, err)
		}
		mesh.Name = labelFor(it, labels)
		if mesh.Name == "" {
			mesh.Name = it.ID
		}
		decorate(mesh, it)
		meshes = append(meshes, mesh)
	}

	var shell kernel.Solid
	var first scene.Item
	for _, it := range snap.Boxes(scene.RoleShell) {
		solid, ok := place(k, it)
		if !ok {
			continue
		}
		if shell == nil {
			shell, first = solid, it
			continue
		}
		shell = k.Union(shell, solid)
	}
	if shell != nil {
		mesh, err := k.ToMesh(shell)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for shell: %w", err)
		}
		mesh.Name = ShellMeshName
		decorate(mesh, first)
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// place builds the kernel solid for a box item at its scene position.
func place(k kernel.Kernel, it scene.Item) (kernel.Solid, bool) {
	s := it.Size()
	if s.X <= 0 || s.Y <= 0 || s.Z <= 0 {
		return nil, false
	}
	solid := k.Box(s.X, s.Y, s.Z)
	p := it.Position
	if p.X != 0 || p.Y != 0 || p.Z != 0 {
		solid = k.Translate(solid, p.X, p.Y, p.Z)
	}
	return solid, true
}

func decorate(m *kernel.Mesh, it scene.Item) {
	m.Role = it.Material.Role.String()
	m.Color = it.Material.Color
	m.Opacity = it.Material.Opacity
}

// labelFor returns the text of the label closest to the box center among
// those whose X/Y position falls within the box face.
func labelFor(box scene.Item, labels []scene.Item) string {
	s := box.Size()
	best, bestDist := "", math.Inf(1)
	for _, l := range labels {
		d := l.Position.Sub(box.Position)
		if math.Abs(d.X) > s.X/2 || math.Abs(d.Y) > s.Y/2 {
			continue
		}
		if dist := math.Hypot(d.X, d.Y); dist < bestDist {
			best, bestDist = l.Text, dist
		}
	}
	return best
}
