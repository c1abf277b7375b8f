package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/chazu/seqviz/pkg/engine"
	"github.com/chazu/seqviz/pkg/kernel"
	"github.com/chazu/seqviz/pkg/presenter"
	"github.com/chazu/seqviz/pkg/scene"
)

// ---------------------------------------------------------------------------
// Empty and comment-only sources produce nothing, with non-nil slices.
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	for _, source := range []string{"", "   \n\t", ";; nothing here\n; at all\n"} {
		result := NewApp().Evaluate(source)
		if len(result.Errors) != 0 {
			t.Errorf("%q: expected 0 errors, got %v", source, result.Errors)
		}
		// Ensure slices are non-nil (JSON should serialize as [] not null).
		if result.Meshes == nil || result.Errors == nil || result.Trace == nil || result.Collections == nil {
			t.Errorf("%q: result slices should be non-nil: %+v", source, result)
		}
	}
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	// Valid code on line 1, broken code on line 2.
	result := NewApp().Evaluate("(+ 1 2)\n(new-queue \"q\"")

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	e := result.Errors[0]
	if e.Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	t.Logf("syntax error: line=%d, col=%d, message=%q", e.Line, e.Col, e.Message)
}

func TestE2EIndexErrorKeepsPartialTrace(t *testing.T) {
	result := NewApp().Evaluate(`
(def a (new-array "a"))
(insert a 0 "x")
(get a 3)
(insert a 1 "never")
`)
	if len(result.Errors) == 0 {
		t.Fatal("expected an index error")
	}
	if len(result.Trace) != 2 {
		t.Fatalf("trace has %d steps, want 2", len(result.Trace))
	}
	if result.Trace[1].Err == "" {
		t.Errorf("failed step should carry its error: %+v", result.Trace[1])
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected no meshes after a failed script, got %d", len(result.Meshes))
	}
	if len(result.Collections) != 1 || len(result.Collections[0].Items) != 1 {
		t.Errorf("collections = %+v, want one array with one item", result.Collections)
	}
}

func TestE2EEmptyRemovalsAreNotErrors(t *testing.T) {
	result := NewApp().Evaluate(`
(def q (new-queue "q"))
(def s (new-stack "s"))
(dequeue q)
(peek q)
(pop s)
(peek s)
`)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	for _, s := range result.Trace {
		if s.Result != "nil" {
			t.Errorf("%s on empty collection = %s, want nil", s.Op, s.Result)
		}
	}
}

func TestE2EUnknownBuiltinArguments(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"push onto queue", `(def q (new-queue "q")) (push q 1)`, "expected stack"},
		{"insert into stack", `(def s (new-stack "s")) (insert s 0 1)`, "expected array"},
		{"duplicate name", `(new-array "a") (new-array "a")`, "already exists"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewApp().Evaluate(tt.source)
			if len(result.Errors) == 0 {
				t.Fatal("expected an error")
			}
			if !strings.Contains(result.Errors[0].Message, tt.want) {
				t.Errorf("message = %q, want containing %q", result.Errors[0].Message, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Rapid re-evaluation: each run replaces the previous scene.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluation(t *testing.T) {
	app := NewApp()
	sources := []string{
		`(def q (new-queue "q")) (enqueue q 1) (enqueue q 2)`,
		`(def s (new-stack "s" :shell 2)) (push s 1)`,
		``,
	}
	wantObjects := []int{2*2 + 2, 2 + 2, 0}
	for round := 0; round < 3; round++ {
		for i, src := range sources {
			result := app.Evaluate(src)
			if len(result.Errors) > 0 {
				t.Fatalf("round %d source %d: %v", round, i, result.Errors)
			}
			if got := app.Scene().Len(); got != wantObjects[i] {
				t.Errorf("round %d source %d: scene has %d objects, want %d", round, i, got, wantObjects[i])
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Kernel and color handling
// ---------------------------------------------------------------------------

type failingKernel struct{}

func (failingKernel) Box(x, y, z float64) kernel.Solid                       { return stubSolid{} }
func (failingKernel) Union(a, b kernel.Solid) kernel.Solid                   { return a }
func (failingKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid { return s }

func (failingKernel) ToMesh(kernel.Solid) (*kernel.Mesh, error) {
	return nil, errors.New("out of memory")
}

type stubSolid struct{}

func (stubSolid) BoundingBox() (min, max [3]float64) { return }

func TestE2ETessellationFailure(t *testing.T) {
	app := NewApp(WithKernel(failingKernel{}))
	result := app.Evaluate(`(def q (new-queue "q")) (enqueue q 1)`)

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Message, "tessellation failed") {
		t.Errorf("message = %q", result.Errors[0].Message)
	}
	// The script itself succeeded.
	if len(result.Trace) != 1 {
		t.Errorf("trace has %d steps, want 1", len(result.Trace))
	}
}

func TestE2EColorPaletteFallback(t *testing.T) {
	app := NewApp(WithEngineOptions(engine.WithPresenterOptions(
		presenter.WithNodeMaterial(scene.Material{Opacity: 1}),
	)))
	var src strings.Builder
	src.WriteString(`(def q (new-queue "q"))`)
	for i := 0; i < len(colorPalette)+2; i++ {
		src.WriteString(` (enqueue q 1)`)
	}
	result := app.Evaluate(src.String())
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	nodes := 0
	for i, m := range result.Meshes {
		if m.Role != scene.RoleNode.String() {
			continue
		}
		nodes++
		if want := colorPalette[i%len(colorPalette)]; m.Color != want {
			t.Errorf("mesh %d color = %s, want %s", i, m.Color, want)
		}
	}
	if nodes != len(colorPalette)+2 {
		t.Errorf("got %d node meshes, want %d", nodes, len(colorPalette)+2)
	}
}

func TestE2EConfiguredMaterialColor(t *testing.T) {
	app := NewApp(WithEngineOptions(engine.WithPresenterOptions(
		presenter.WithNodeMaterial(scene.Material{Color: "#123456", Opacity: 1}),
	)))
	result := app.Evaluate(`(def s (new-stack "s")) (push s "a")`)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	for _, m := range result.Meshes {
		if m.Name == "a" && m.Color != "#123456" {
			t.Errorf("node color = %s, want material color", m.Color)
		}
	}
}
