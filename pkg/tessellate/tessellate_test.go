package tessellate_test

import (
	"testing"

	"github.com/chazu/seqviz/pkg/kernel"
	"github.com/chazu/seqviz/pkg/kernel/sdfx"
	"github.com/chazu/seqviz/pkg/scene"
	"github.com/chazu/seqviz/pkg/tessellate"
)

// newKernel returns a coarse sdfx kernel for testing.
func newKernel() kernel.Kernel {
	return sdfx.New(sdfx.WithCells(8))
}

// addBox shows a box with the given material at p.
func addBox(t *testing.T, m *scene.Memory, mat scene.Material, p scene.Vec3) scene.Box {
	t.Helper()
	b, err := m.NewBox(scene.One, mat)
	if err != nil {
		t.Fatal(err)
	}
	b.SetPosition(p)
	if err := m.Add(b); err != nil {
		t.Fatal(err)
	}
	return b
}

// addLabel shows a label with text at p.
func addLabel(t *testing.T, m *scene.Memory, text string, p scene.Vec3) {
	t.Helper()
	l, err := m.NewLabel(text, scene.DefaultLabelStyle)
	if err != nil {
		t.Fatal(err)
	}
	l.SetPosition(p)
	if err := m.Add(l); err != nil {
		t.Fatal(err)
	}
}

func TestTessellateEmptyScene(t *testing.T) {
	meshes, err := tessellate.Tessellate(scene.NewMemory().Snapshot(), newKernel())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meshes) != 0 {
		t.Errorf("expected no meshes, got %d", len(meshes))
	}
}

func TestTessellateNodesAndShell(t *testing.T) {
	m := scene.NewMemory()
	node := scene.DefaultNodeMaterial
	node.Role = scene.RoleNode
	addBox(t, m, node, scene.Vec3{})
	addLabel(t, m, "first", scene.Vec3{Z: 0.51})
	addBox(t, m, node, scene.Vec3{X: -1})
	addLabel(t, m, "second", scene.Vec3{X: -1, Z: 0.51})
	for i := range 3 {
		addBox(t, m, scene.DefaultShellMaterial, scene.Vec3{X: -float64(i)})
	}

	meshes, err := tessellate.Tessellate(m.Snapshot(), newKernel())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meshes) != 3 {
		t.Fatalf("expected 2 node meshes and 1 shell mesh, got %d", len(meshes))
	}

	names := []string{meshes[0].Name, meshes[1].Name, meshes[2].Name}
	want := []string{"first", "second", tessellate.ShellMeshName}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("mesh %d name = %q, want %q", i, names[i], want[i])
		}
	}
	for _, mesh := range meshes {
		if mesh.IsEmpty() {
			t.Errorf("mesh %q is empty", mesh.Name)
		}
	}
	if meshes[0].Role != "node" || meshes[2].Role != "shell" {
		t.Errorf("roles = %q, %q", meshes[0].Role, meshes[2].Role)
	}
	if meshes[0].Color != node.Color {
		t.Errorf("node color = %q, want %q", meshes[0].Color, node.Color)
	}

	// The second node sits one unit toward -X.
	min, max := meshes[1].Bounds()
	if min[0] > -1.4 || max[0] < -0.6 || max[0] > -0.4 {
		t.Errorf("second node X bounds = [%v, %v], want around [-1.5, -0.5]", min[0], max[0])
	}
	// The shell spans all three slots.
	min, max = meshes[2].Bounds()
	if min[0] > -2.4 || max[0] < 0.4 {
		t.Errorf("shell X bounds = [%v, %v], want around [-2.5, 0.5]", min[0], max[0])
	}
}

func TestTessellateSkipsDegenerateBoxes(t *testing.T) {
	m := scene.NewMemory()
	b := addBox(t, m, scene.DefaultNodeMaterial, scene.Vec3{})
	b.SetScale(scene.Vec3{X: 0, Y: 1, Z: 1})

	meshes, err := tessellate.Tessellate(m.Snapshot(), newKernel())
	if err != nil {
		t.Fatal(err)
	}
	if len(meshes) != 0 {
		t.Errorf("expected degenerate box to be skipped, got %d meshes", len(meshes))
	}
}

func TestTessellateUnlabeledNodeUsesID(t *testing.T) {
	m := scene.NewMemory()
	b := addBox(t, m, scene.DefaultNodeMaterial, scene.Vec3{X: 5})
	addLabel(t, m, "far away", scene.Vec3{X: -5})

	meshes, err := tessellate.Tessellate(m.Snapshot(), newKernel())
	if err != nil {
		t.Fatal(err)
	}
	if len(meshes) != 1 || meshes[0].Name != b.ID() {
		t.Errorf("expected one mesh named %q, got %+v", b.ID(), meshes)
	}
}
