package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/chazu/seqviz/pkg/engine"
	"github.com/chazu/seqviz/pkg/scene"
	"github.com/chazu/seqviz/pkg/tween"
	"github.com/chazu/seqviz/pkg/view"
)

const (
	minSpeed   = 0.25
	maxSpeed   = 8
	traceLines = 8
)

func newPlayCmd() *cobra.Command {
	var logPath string

	cmd := &cobra.Command{
		Use:   "play <script>",
		Short: "Animate a script in the terminal",
		Long: `Evaluate a script with real-time animation. Space pauses, + and -
change the playback speed, q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readScript(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			cfg := configFromContext(ctx)

			// The terminal belongs to the UI; logs go to a file or nowhere.
			logger := log.New(io.Discard)
			if logPath != "" {
				f, err := os.Create(logPath)
				if err != nil {
					return err
				}
				defer f.Close()
				logger = newLogger(f, loggerFromContext(ctx).GetLevel())
			}

			clock := tween.NewClock(tween.WithEasing(cfg.Easing()), tween.WithLogger(logger))
			mem := scene.NewMemory()
			m := newPlayModel(args[0], mem, clock, cfg.Animation.FPS)
			events := m.events

			opts := append(engineOptions(cfg, logger),
				engine.WithTweener(clock),
				engine.WithTimeout(0),
				engine.WithStepFunc(func(s engine.Step) { events <- stepMsg(s) }),
			)
			eng := engine.NewEngine(mem, opts...)
			go func() {
				res, evalErrs, err := eng.Evaluate(source)
				events <- scriptDoneMsg{result: res, errors: evalErrs, err: err}
			}()

			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&logPath, "log-file", "", "write logs to this file while playing")
	return cmd
}

type (
	frameMsg      time.Time
	stepMsg       engine.Step
	scriptDoneMsg struct {
		result *engine.Result
		errors []engine.EvalError
		err    error
	}
)

// playModel animates a running script. The script runs on its own
// goroutine and blocks on the clock; every frame advances the clock by
// the elapsed wall time scaled by the playback speed.
type playModel struct {
	title  string
	scene  *scene.Memory
	clock  *tween.Clock
	events chan tea.Msg
	frame  time.Duration

	last     time.Time
	paused   bool
	speed    float64
	trace    []engine.Step
	errs     []string
	finished bool
	width    int
	height   int
}

func newPlayModel(title string, mem *scene.Memory, clock *tween.Clock, fps int) playModel {
	if fps <= 0 {
		fps = 30
	}
	return playModel{
		title:  title,
		scene:  mem,
		clock:  clock,
		events: make(chan tea.Msg, 64),
		frame:  time.Second / time.Duration(fps),
		speed:  1,
		width:  100,
		height: 30,
	}
}

func (m playModel) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m playModel) listen() tea.Cmd {
	return func() tea.Msg { return <-m.events }
}

func (m playModel) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.listen())
}

// Update handles input, frames and script events.
func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "+", "=":
			m.speed = min(m.speed*2, maxSpeed)
		case "-", "_":
			m.speed = max(m.speed/2, minSpeed)
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case frameMsg:
		now := time.Time(msg)
		if !m.last.IsZero() && !m.paused {
			m.clock.Advance(time.Duration(float64(now.Sub(m.last)) * m.speed))
		}
		m.last = now
		return m, m.tick()
	case stepMsg:
		m.trace = append(m.trace, engine.Step(msg))
		return m, m.listen()
	case scriptDoneMsg:
		m.finished = true
		if msg.err != nil {
			m.errs = append(m.errs, msg.err.Error())
		}
		for _, e := range msg.errors {
			m.errs = append(m.errs, e.Error())
		}
	}
	return m, nil
}

func (m playModel) View() string {
	var b strings.Builder
	b.WriteString(view.TitleStyle.Render("seqviz · " + m.title))
	b.WriteString("\n")

	maxH := m.height - traceLines - 8
	canvas := view.Render(m.scene.Snapshot(), view.Options{
		Scale:     view.DefaultOptions().Scale,
		MaxWidth:  max(m.width-4, 10),
		MaxHeight: max(maxH, 4),
	})
	body := strings.TrimSuffix(canvas.Render(), "\n")
	if body == "" {
		body = view.HintStyle.Render("(empty scene)")
	}
	b.WriteString(view.PanelStyle.Render(body))
	b.WriteString("\n")

	start := max(len(m.trace)-traceLines, 0)
	for i, s := range m.trace[start:] {
		style := view.StepStyle
		switch {
		case s.Err != "":
			style = view.ErrorStyle
		case start+i == len(m.trace)-1 && !m.finished:
			style = view.CurrentStepStyle
		}
		b.WriteString(style.Render(s.String()))
		b.WriteString("\n")
	}
	for _, e := range m.errs {
		b.WriteString(view.ErrorStyle.Render(e))
		b.WriteString("\n")
	}
	b.WriteString(view.HintStyle.Render(m.status()))
	return b.String()
}

func (m playModel) status() string {
	state := "playing"
	switch {
	case m.finished:
		state = "done"
	case m.paused:
		state = "paused"
	}
	return fmt.Sprintf("%s · %gx · %d steps · space pause · +/- speed · q quit", state, m.speed, len(m.trace))
}
