package engine

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/chazu/seqviz/pkg/collection"
	"github.com/chazu/seqviz/pkg/presenter"
	"github.com/chazu/seqviz/pkg/scene"
)

// Kind names the collection types a script can create.
type Kind string

const (
	KindQueue Kind = "queue"
	KindStack Kind = "stack"
	KindArray Kind = "array"
)

// handle is one named collection of a run. Exactly one presenter is set.
type handle struct {
	name  string
	kind  Kind
	queue *presenter.QueuePresenter[any]
	stack *presenter.StackPresenter[any]
	array *presenter.ArrayPresenter[any]
}

func (h *handle) items() []any {
	switch h.kind {
	case KindQueue:
		return h.queue.Items()
	case KindStack:
		return h.stack.Items()
	default:
		return h.array.Items()
	}
}

func (h *handle) size() int {
	switch h.kind {
	case KindQueue:
		return h.queue.Size()
	case KindStack:
		return h.stack.Size()
	default:
		return h.array.Size()
	}
}

func (h *handle) dispose() error {
	switch h.kind {
	case KindQueue:
		return h.queue.Dispose()
	case KindStack:
		return h.stack.Dispose()
	default:
		return h.array.Dispose()
	}
}

// collectionOptions are the per-collection keyword options of a script.
type collectionOptions struct {
	anchor *scene.Vec3
	shell  int
}

// ErrStopped is returned by builtins of an evaluation that timed out or
// was replaced by a newer one. It aborts the script.
var ErrStopped = errors.New("engine: evaluation stopped")

// run is the state of one evaluation. handles and stopped are guarded by
// mu, since a run is stopped from outside the goroutine evaluating it.
type run struct {
	e      *Engine
	byName map[string]*handle
	trace  []Step

	mu      sync.Mutex
	handles []*handle
	stopped bool
}

func newRun(e *Engine) *run {
	return &run{e: e, byName: make(map[string]*handle)}
}

func (r *run) create(kind Kind, name string, co collectionOptions) (*handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return nil, ErrStopped
	}
	if _, ok := r.byName[name]; ok {
		return nil, fmt.Errorf("collection %q already exists", name)
	}
	anchor := r.e.origin.Add(scene.Vec3{Y: -r.e.rowSpacing * float64(len(r.handles))})
	if co.anchor != nil {
		anchor = *co.anchor
	}
	opts := append([]presenter.Option{}, r.e.presenter...)
	opts = append(opts,
		presenter.WithName(name),
		presenter.WithAnchor(anchor),
		presenter.WithLogger(r.e.logger),
		presenter.WithLabelFunc(labelText),
	)
	if co.shell > 0 {
		opts = append(opts, presenter.WithShellSize(co.shell))
	}

	h := &handle{name: name, kind: kind}
	var err error
	switch kind {
	case KindQueue:
		h.queue, err = presenter.NewQueue[any](r.e.renderer, r.e.tweener, opts...)
	case KindStack:
		h.stack, err = presenter.NewStack[any](r.e.renderer, r.e.tweener, opts...)
	case KindArray:
		h.array, err = presenter.NewArray[any](r.e.renderer, r.e.tweener, opts...)
	default:
		err = fmt.Errorf("unknown collection kind %q", kind)
	}
	if err != nil {
		return nil, err
	}
	r.handles = append(r.handles, h)
	r.byName[name] = h
	r.e.logger.Debug("collection created", "name", name, "kind", kind, "anchor", anchor)
	return h, nil
}

func (r *run) isStopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

// stop disposes every collection of the run and makes later builtins fail
// with ErrStopped. A collection busy with an operation is disposed by step
// once that operation returns.
func (r *run) stop() error {
	r.mu.Lock()
	first := !r.stopped
	r.stopped = true
	handles := append([]*handle(nil), r.handles...)
	r.mu.Unlock()

	var errs []error
	for _, h := range handles {
		if err := h.dispose(); err != nil && !errors.Is(err, presenter.ErrBusy) {
			errs = append(errs, err)
		}
	}
	if first {
		r.e.logger.Debug("run stopped", "collections", len(handles))
	}
	return errors.Join(errs...)
}

// step runs one operation and records it in the trace.
func (r *run) step(h *handle, op string, args []any, f func() (any, error)) (any, error) {
	if r.isStopped() {
		return nil, ErrStopped
	}
	v, err := f()
	if r.isStopped() {
		if derr := h.dispose(); derr != nil {
			r.e.logger.Warn("dispose stopped collection", "name", h.name, "err", derr)
		}
		return nil, ErrStopped
	}
	s := Step{
		Seq:        len(r.trace) + 1,
		Collection: h.name,
		Op:         op,
		Args:       args,
		Size:       h.size(),
	}
	if err != nil {
		s.Err = err.Error()
	} else {
		s.Result = formatValue(v)
	}
	r.trace = append(r.trace, s)
	r.e.logger.Debug("step", "seq", s.Seq, "op", op, "collection", h.name, "result", s.Result, "err", err)
	if r.e.onStep != nil {
		r.e.onStep(s)
	}
	return v, err
}

func (r *run) result() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := &Result{Trace: append([]Step(nil), r.trace...)}
	for _, h := range r.handles {
		res.Collections = append(res.Collections, Collection{Name: h.name, Kind: h.kind, Items: h.items()})
	}
	return res
}

// optionValue unwraps an Option into a value or nil.
func optionValue(o collection.Option[any]) any {
	v, ok := o.Get()
	if !ok {
		return nil
	}
	return v
}

// formatValue renders a script value the way it is written in source.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// labelText is the text shown on a node.
func labelText(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'g', 4, 64)
	}
	return fmt.Sprint(v)
}
