package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/chazu/seqviz/pkg/engine"
	"github.com/chazu/seqviz/pkg/view"
)

type runOptions struct {
	meshPath string
	width    int
	plain    bool
	chart    bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Evaluate a script and print its trace and final scene",
		Long: `Evaluate a script without animation. Every collection operation is
printed with its result, followed by a drawing of the final scene.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readScript(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			app := NewApp(
				WithAppLogger(logger),
				WithEngineOptions(engineOptions(configFromContext(ctx), logger)...),
			)
			result := app.Evaluate(source)
			printResult(cmd.OutOrStdout(), app, result, opts)

			if opts.meshPath != "" && len(result.Errors) == 0 {
				if err := writeMeshes(opts.meshPath, result); err != nil {
					return err
				}
				logger.Info("wrote meshes", "path", opts.meshPath, "count", len(result.Meshes))
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("%s: %d error(s)", args[0], len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.meshPath, "mesh", "", "write the final scene as JSON meshes to this file")
	cmd.Flags().IntVar(&opts.width, "width", 100, "maximum drawing width in columns")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "draw without colors")
	cmd.Flags().BoolVar(&opts.chart, "chart", false, "plot each collection's size over the trace")
	return cmd
}

func printResult(w io.Writer, app *App, result EvalResult, opts runOptions) {
	for _, s := range result.Trace {
		fmt.Fprintln(w, styleStep(s, opts.plain))
	}
	for _, e := range result.Errors {
		msg := (engine.EvalError{Line: e.Line, Col: e.Col, Message: e.Message}).Error()
		if !opts.plain {
			msg = view.ErrorStyle.Render(msg)
		}
		fmt.Fprintln(w, msg)
	}

	if opts.chart {
		for _, c := range result.Collections {
			fmt.Fprintln(w)
			fmt.Fprintln(w, sizeChart(c.Name, result.Trace, opts.width))
		}
	}

	canvas := view.Render(app.Scene().Snapshot(), view.Options{
		Scale:    view.DefaultOptions().Scale,
		MaxWidth: opts.width,
	})
	if canvas.Height == 0 {
		return
	}
	fmt.Fprintln(w)
	if opts.plain {
		fmt.Fprint(w, canvas.String())
		return
	}
	fmt.Fprint(w, canvas.Render())
}

func styleStep(s engine.Step, plain bool) string {
	switch {
	case plain:
		return s.String()
	case s.Err != "":
		return view.ErrorStyle.Render(s.String())
	default:
		return view.StepStyle.Render(s.String())
	}
}

func writeMeshes(path string, result EvalResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode meshes: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// sizeChart plots the size of one collection after each of its steps,
// starting from empty.
func sizeChart(name string, trace []engine.Step, width int) string {
	data := []float64{0}
	for _, s := range trace {
		if s.Collection == name {
			data = append(data, float64(s.Size))
		}
	}
	if len(data) == 1 {
		data = append(data, 0)
	}
	return asciigraph.Plot(data,
		asciigraph.Height(6),
		asciigraph.Width(max(width-10, 20)),
		asciigraph.Caption(name+" size"),
	)
}
