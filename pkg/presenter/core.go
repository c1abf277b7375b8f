// Package presenter keeps a logical collection and its animated scene
// representation in step.
//
// Every mutating call suspends until its animations have finished, so a
// caller that issues operations one after another observes them play in
// order. Additions animate before the logical commit; removals commit
// first and animate the departing node afterwards. Either way the call
// returns only once the scene matches the logical sequence again.
//
// A presenter is not safe for concurrent operations. Overlapping calls on
// one presenter are detected and rejected with ErrBusy.
package presenter

import (
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/chazu/seqviz/pkg/scene"
	"github.com/chazu/seqviz/pkg/tween"
	"github.com/chazu/seqviz/pkg/visual"
)

// positionEpsilon is the distance under which a node counts as in place.
const positionEpsilon = 1e-9

// core is the protocol shared by all presenters. nodes reads the logical
// engine's sequence; mutation happens only in the commit steps supplied
// by each presenter.
type core[T any] struct {
	kind     string
	cfg      config
	geo      geometry
	renderer scene.Renderer
	tweener  tween.Tweener
	shell    *visual.Shell
	nodes    func() []*visual.Node[T]
	logger   *log.Logger

	busy     atomic.Bool
	disposed atomic.Bool
}

func newCore[T any](kind string, layout Layout, r scene.Renderer, tw tween.Tweener, nodes func() []*visual.Node[T], opts []Option) (*core[T], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.name == "" {
		cfg.name = kind
	}
	if tw == nil {
		tw = tween.Instant{}
	}
	c := &core[T]{
		kind: kind,
		cfg:  cfg,
		geo: geometry{
			layout: layout,
			anchor: cfg.anchor,
			size:   cfg.node.Size,
			exit:   cfg.exitDistance,
			lift:   cfg.highlightLift,
		},
		renderer: r,
		tweener:  tw,
		nodes:    nodes,
		logger:   cfg.logger.With("presenter", cfg.name, "kind", kind),
	}
	shell, err := visual.NewShell(r, cfg.shellSize, cfg.node.Size, cfg.shellMaterial, c.geo.slotPosition)
	if err != nil {
		return nil, fmt.Errorf("presenter: %s: %w", kind, err)
	}
	c.shell = shell
	c.logger.Debug("created", "layout", layout, "shell", cfg.shellSize, "anchor", cfg.anchor)
	return c, nil
}

// begin claims the presenter for op and enters Staging.
func (c *core[T]) begin(op string) (*operation, error) {
	if c.disposed.Load() {
		return nil, fmt.Errorf("presenter: %s %s: %w", c.kind, op, ErrDisposed)
	}
	if !c.busy.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("presenter: %s %s: %w", c.kind, op, ErrBusy)
	}
	o := &operation{op: op, phase: Staging, emit: c.emit}
	c.emit(op, Staging)
	return o, nil
}

// end settles or fails o and releases the presenter. It is deferred by
// every operation with a pointer to the named error result.
func (c *core[T]) end(o *operation, errp *error) {
	defer c.busy.Store(false)
	if *errp != nil {
		o.enter(Failed)
		c.logger.Debug("operation failed", "op", o.op, "err", *errp)
		return
	}
	o.enter(Settled)
}

func (c *core[T]) emit(op string, p Phase) {
	size := len(c.nodes())
	c.logger.Debug("phase", "op", op, "phase", p, "size", size)
	if c.cfg.observer != nil {
		c.cfg.observer(PhaseEvent{Presenter: c.cfg.name, Op: op, Phase: p, Size: size})
	}
}

func (c *core[T]) newNode(v T) (*visual.Node[T], error) {
	n, err := visual.NewNode(c.renderer, v, c.cfg.labelFunc(v), c.cfg.node)
	if err != nil {
		return nil, fmt.Errorf("presenter: %s: %w", c.kind, err)
	}
	return n, nil
}

func (c *core[T]) move(n *visual.Node[T], p scene.Vec3) tween.Done {
	return c.tweener.To(n, tween.PositionProps(p), c.cfg.duration)
}

// settle moves n to p unless it is already there.
func (c *core[T]) settle(n *visual.Node[T], p scene.Vec3) tween.Done {
	if n.Position().ApproxEqual(p, positionEpsilon) {
		return nil
	}
	return c.move(n, p)
}

func (c *core[T]) targets(nodes []*visual.Node[T]) []scene.Vec3 {
	widths := make([]float64, len(nodes))
	for i, n := range nodes {
		widths[i] = n.Width()
	}
	return c.geo.positions(widths)
}

// add runs the addition protocol for v at logical index. The node enters
// from its staging position while displaced nodes shift to their new
// slots; commit runs only after every one of those tweens has completed.
func (c *core[T]) add(o *operation, index int, v T, commit func(*visual.Node[T]) error) error {
	node, err := c.newNode(v)
	if err != nil {
		return err
	}
	planned := slices.Insert(c.nodes(), index, node)
	pos := c.targets(planned)
	node.SetPosition(c.geo.staging(pos[index]))
	if err := node.Show(); err != nil {
		return errors.Join(fmt.Errorf("presenter: %s: %w", c.kind, err), node.Destroy())
	}

	o.enter(Animating)
	dones := make([]tween.Done, 0, len(planned))
	for i, n := range planned {
		dones = append(dones, c.settle(n, pos[i]))
	}
	tween.Await(dones...)

	o.enter(Committing)
	if err := commit(node); err != nil {
		// Cannot happen with a validated index, but never leave a
		// visible node without a logical counterpart.
		return errors.Join(err, node.Destroy())
	}

	o.enter(RelayoutPending)
	return c.relayout()
}

// remove animates node, already detached from the engine, off stage and
// closes the gap it leaves.
func (c *core[T]) remove(o *operation, node *visual.Node[T]) error {
	o.enter(Animating)
	tween.Await(c.move(node, c.geo.exitPosition(node.Position())))
	if err := node.Destroy(); err != nil {
		return fmt.Errorf("presenter: %s: %w", c.kind, err)
	}
	o.enter(RelayoutPending)
	return c.relayout()
}

// relayout moves every node to its slot concurrently, waits for the
// slowest, and resizes the shell to the new occupancy.
func (c *core[T]) relayout() error {
	nodes := c.nodes()
	pos := c.targets(nodes)
	dones := make([]tween.Done, 0, len(nodes))
	for i, n := range nodes {
		dones = append(dones, c.settle(n, pos[i]))
	}
	tween.Await(dones...)
	if err := c.shell.Resize(len(nodes)); err != nil {
		return fmt.Errorf("presenter: %s: %w", c.kind, err)
	}
	return nil
}

// highlight lifts each node and sets it back down, one after another.
func (c *core[T]) highlight(nodes ...*visual.Node[T]) {
	for _, n := range nodes {
		home := n.Position()
		tween.Await(c.move(n, c.geo.highlightPosition(home)))
		tween.Await(c.move(n, home))
	}
}

// values returns the logical values in engine order.
func (c *core[T]) values() []T {
	nodes := c.nodes()
	out := make([]T, len(nodes))
	for i, n := range nodes {
		out[i] = n.Value()
	}
	return out
}

// Shell returns the capacity shell.
func (c *core[T]) Shell() *visual.Shell { return c.shell }

// Name returns the presenter name used in logs and phase events.
func (c *core[T]) Name() string { return c.cfg.name }

// dispose destroys every node and shell slot. Later operations fail with
// ErrDisposed.
func (c *core[T]) dispose() error {
	if !c.busy.CompareAndSwap(false, true) {
		return fmt.Errorf("presenter: %s dispose: %w", c.kind, ErrBusy)
	}
	defer c.busy.Store(false)
	if c.disposed.Swap(true) {
		return nil
	}
	var errs []error
	for _, n := range c.nodes() {
		errs = append(errs, n.Destroy())
	}
	errs = append(errs, c.shell.Dispose())
	c.logger.Debug("disposed")
	return errors.Join(errs...)
}
