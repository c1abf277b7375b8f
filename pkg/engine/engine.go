// Package engine runs seqviz scripts. It wraps zygomys in a sandboxed
// environment whose builtins create animated collections and drive their
// operations one after another.
package engine

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/seqviz/pkg/presenter"
	"github.com/chazu/seqviz/pkg/scene"
	"github.com/chazu/seqviz/pkg/tween"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Collection is the final state of one collection created by a script.
type Collection struct {
	Name  string `json:"name"`
	Kind  Kind   `json:"kind"`
	Items []any  `json:"items"`
}

// Step is one collection operation performed by a script, in call order.
type Step struct {
	Seq        int    `json:"seq"`
	Collection string `json:"collection"`
	Op         string `json:"op"`
	Args       []any  `json:"args,omitempty"`
	Result     string `json:"result,omitempty"`
	Err        string `json:"error,omitempty"`
	// Size is the collection size after the operation.
	Size int `json:"size"`
}

func (s Step) String() string {
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = formatValue(a)
	}
	call := fmt.Sprintf("(%s %s", s.Op, s.Collection)
	if len(args) > 0 {
		call += " " + strings.Join(args, " ")
	}
	call += ")"
	if s.Err != "" {
		return fmt.Sprintf("%3d %s => error: %s", s.Seq, call, s.Err)
	}
	return fmt.Sprintf("%3d %s => %s", s.Seq, call, s.Result)
}

// Result is what a script left behind.
type Result struct {
	Collections []Collection `json:"collections"`
	Trace       []Step       `json:"trace"`
}

// Collection returns the collection with the given name.
func (r *Result) Collection(name string) (Collection, bool) {
	for _, c := range r.Collections {
		if c.Name == name {
			return c, true
		}
	}
	return Collection{}, false
}

// Engine evaluates scripts against a scene. Each call to Evaluate creates a
// fresh sandboxed environment; the collections of the previous evaluation
// are disposed first so the scene only shows the latest run.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	renderer   scene.Renderer
	tweener    tween.Tweener
	presenter  []presenter.Option
	timeout    time.Duration
	origin     scene.Vec3
	rowSpacing float64
	onStep     func(Step)
	logger     *log.Logger

	// runs are the evaluations whose collections are on stage.
	runsMu sync.Mutex
	runs   []*run
}

// Option configures an Engine.
type Option func(*Engine)

// WithTweener sets the tweener shared by all collections. The default
// applies every animation instantly.
func WithTweener(tw tween.Tweener) Option {
	return func(e *Engine) { e.tweener = tw }
}

// WithPresenterOptions sets options applied to every collection before
// the script's own keyword options.
func WithPresenterOptions(opts ...presenter.Option) Option {
	return func(e *Engine) { e.presenter = append(e.presenter, opts...) }
}

// WithTimeout bounds a single evaluation. Zero or less disables the limit,
// which is needed when animations play in real time.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithOrigin sets the anchor of the first collection that does not
// declare one.
func WithOrigin(p scene.Vec3) Option {
	return func(e *Engine) { e.origin = p }
}

// WithRowSpacing sets the vertical distance between collections that do
// not declare an anchor.
func WithRowSpacing(d float64) Option {
	return func(e *Engine) { e.rowSpacing = d }
}

// WithStepFunc registers a callback invoked after every operation.
func WithStepFunc(f func(Step)) Option {
	return func(e *Engine) { e.onStep = f }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an Engine that draws into r.
func NewEngine(r scene.Renderer, opts ...Option) *Engine {
	e := &Engine{
		renderer:   r,
		tweener:    tween.Instant{},
		timeout:    EvalTimeout,
		rowSpacing: 3,
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs source and reports what it did.
//
// Return semantics:
//   - On success: returns result + nil errors + nil error
//   - On parse/eval failure: returns the partial result up to the failure
//   - eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Result, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	r := newRun(e)
	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", p)}
			}
		}()

		res, evalErrs, err := e.evaluate(r, source)
		ch <- evalResult{result: res, errors: evalErrs, err: err}
	}()

	res, evalErrs, err := waitWithTimeout(ch, gen, &e.mu, &e.generation, e.timeout)
	if err != nil {
		// The goroutine may still be running; its next builtin aborts it.
		if serr := e.stopRun(r); serr != nil {
			e.logger.Warn("stop run", "err", serr)
		}
	}
	return res, evalErrs, err
}

// Dispose removes every collection of earlier evaluations from the scene
// and stops any of them that is still running.
func (e *Engine) Dispose() error {
	e.runsMu.Lock()
	runs := e.runs
	e.runs = nil
	e.runsMu.Unlock()

	var errs []error
	for _, r := range runs {
		errs = append(errs, r.stop())
	}
	return errors.Join(errs...)
}

// stopRun stops r and forgets it.
func (e *Engine) stopRun(r *run) error {
	e.runsMu.Lock()
	e.runs = slices.DeleteFunc(e.runs, func(x *run) bool { return x == r })
	e.runsMu.Unlock()
	return r.stop()
}

// evaluate performs the actual zygomys evaluation of r in a fresh sandbox.
func (e *Engine) evaluate(r *run, source string) (*Result, []EvalError, error) {
	if err := e.Dispose(); err != nil {
		e.logger.Warn("dispose previous run", "err", err)
	}

	// Empty source is a valid program that produces an empty result.
	if strings.TrimSpace(source) == "" {
		return &Result{}, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	e.runsMu.Lock()
	e.runs = append(e.runs, r)
	e.runsMu.Unlock()
	registerBuiltins(env, r)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return r.result(), parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return r.result(), parseZygomysError(err), nil
	}
	res := r.result()
	e.logger.Debug("evaluated", "collections", len(res.Collections), "steps", len(res.Trace))
	return res, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
