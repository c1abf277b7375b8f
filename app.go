package main

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/chazu/seqviz/pkg/engine"
	"github.com/chazu/seqviz/pkg/kernel"
	"github.com/chazu/seqviz/pkg/kernel/sdfx"
	"github.com/chazu/seqviz/pkg/scene"
	"github.com/chazu/seqviz/pkg/tessellate"
)

// colorPalette colors meshes whose material carries no color.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App ties the script engine to a headless scene and the mesh exporter.
type App struct {
	scene  *scene.Memory
	engine *engine.Engine
	kernel kernel.Kernel
	logger *log.Logger

	engineOpts []engine.Option
}

// MeshData is the JSON-serializable mesh format written by --mesh.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	Color    string    `json:"color"`
	Opacity  float64   `json:"opacity"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is everything one evaluation produced.
type EvalResult struct {
	Collections []engine.Collection `json:"collections"`
	Trace       []engine.Step       `json:"trace"`
	Meshes      []MeshData          `json:"meshes"`
	Errors      []EvalErrorData     `json:"errors"`
}

// AppOption configures an App.
type AppOption func(*App)

// WithKernel replaces the sdfx kernel used for mesh export.
func WithKernel(k kernel.Kernel) AppOption {
	return func(a *App) { a.kernel = k }
}

// WithAppLogger sets the logger for pipeline errors.
func WithAppLogger(l *log.Logger) AppOption {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithEngineOptions passes options through to the script engine.
func WithEngineOptions(opts ...engine.Option) AppOption {
	return func(a *App) { a.engineOpts = append(a.engineOpts, opts...) }
}

// NewApp creates an App with an engine, a Memory scene and the sdfx kernel.
func NewApp(opts ...AppOption) *App {
	a := &App{
		scene:  scene.NewMemory(),
		kernel: sdfx.New(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.engine = engine.NewEngine(a.scene, a.engineOpts...)
	return a
}

// Scene returns the scene the scripts draw into.
func (a *App) Scene() *scene.Memory { return a.scene }

// Evaluate runs source and tessellates what is left on stage. Meshes are
// only produced when the script ran to completion.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Collections: []engine.Collection{},
		Trace:       []engine.Step{},
		Meshes:      []MeshData{},
		Errors:      []EvalErrorData{},
	}

	// Step 1: Run the script against the scene.
	res, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.logger.Error("evaluate", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if res != nil {
		result.Collections = append(result.Collections, res.Collections...)
		result.Trace = append(result.Trace, res.Trace...)
	}

	// Step 2: Convert eval errors.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 3: Tessellate the final scene into triangle meshes.
	meshes, err := tessellate.Tessellate(a.scene.Snapshot(), a.kernel)
	if err != nil {
		a.logger.Error("tessellate", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}

	// Step 4: Convert kernel meshes to MeshData.
	for i, m := range meshes {
		color := m.Color
		if color == "" {
			color = colorPalette[i%len(colorPalette)]
		}
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Name:     m.Name,
			Role:     m.Role,
			Color:    color,
			Opacity:  m.Opacity,
		})
	}

	return result
}
