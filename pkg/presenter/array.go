package presenter

import (
	"errors"
	"fmt"

	"github.com/chazu/seqviz/pkg/collection"
	"github.com/chazu/seqviz/pkg/scene"
	"github.com/chazu/seqviz/pkg/tween"
	"github.com/chazu/seqviz/pkg/visual"
)

// ArrayPresenter animates a positional array. Inserted nodes drop in from
// above their slot while later nodes make room; deleted nodes rise out
// and the gap closes.
type ArrayPresenter[T comparable] struct {
	*core[T]
	a *collection.Array[*visual.Node[T]]
}

var _ Array[int] = (*ArrayPresenter[int])(nil)

// NewArray returns an empty array presenter drawing into r.
func NewArray[T comparable](r scene.Renderer, tw tween.Tweener, opts ...Option) (*ArrayPresenter[T], error) {
	a := collection.NewArray[*visual.Node[T]]()
	c, err := newCore("array", PositionalInsert, r, tw, a.Items, opts)
	if err != nil {
		return nil, err
	}
	return &ArrayPresenter[T]{core: c, a: a}, nil
}

// Insert places v at index i, 0 ≤ i ≤ Size, and returns the new size. An
// invalid index fails before anything is created.
func (p *ArrayPresenter[T]) Insert(i int, v T) (size int, err error) {
	o, err := p.begin("insert")
	if err != nil {
		return p.a.Size(), err
	}
	defer p.end(o, &err)

	if i < 0 || i > p.a.Size() {
		return p.a.Size(), &collection.IndexError{Op: "insert", Index: i, Size: p.a.Size()}
	}
	err = p.add(o, i, v, func(n *visual.Node[T]) error {
		_, err := p.a.Insert(i, n)
		return err
	})
	return p.a.Size(), err
}

// Delete removes and returns the value at index i.
func (p *ArrayPresenter[T]) Delete(i int) (v T, err error) {
	o, err := p.begin("delete")
	if err != nil {
		return v, err
	}
	defer p.end(o, &err)

	o.enter(Committing)
	node, err := p.a.Delete(i)
	if err != nil {
		return v, err
	}
	err = p.remove(o, node)
	return node.Value(), err
}

// Update replaces the value at index i. The new node drops into the slot
// while the old one sinks out beneath it.
func (p *ArrayPresenter[T]) Update(i int, v T) (err error) {
	o, err := p.begin("update")
	if err != nil {
		return err
	}
	defer p.end(o, &err)

	old, err := p.a.Get(i)
	if err != nil {
		return err
	}
	node, err := p.newNode(v)
	if err != nil {
		return err
	}
	home := old.Position()
	node.SetPosition(p.geo.staging(home))
	if err := node.Show(); err != nil {
		return errors.Join(fmt.Errorf("presenter: array: %w", err), node.Destroy())
	}

	o.enter(Animating)
	tween.Await(p.move(node, home), p.move(old, p.geo.sinkPosition(home)))
	if err := old.Destroy(); err != nil {
		// The old value stays committed: put it back and drop the new node.
		tween.Await(p.move(old, home))
		return errors.Join(fmt.Errorf("presenter: array: %w", err), node.Destroy())
	}

	o.enter(Committing)
	if _, err := p.a.Update(i, node); err != nil {
		return errors.Join(err, node.Destroy())
	}
	o.enter(RelayoutPending)
	return p.relayout()
}

// Get returns the value at index i and nudges its node.
func (p *ArrayPresenter[T]) Get(i int) (v T, err error) {
	o, err := p.begin("get")
	if err != nil {
		return v, err
	}
	defer p.end(o, &err)

	o.enter(Committing)
	node, err := p.a.Get(i)
	if err != nil {
		return v, err
	}
	o.enter(Animating)
	p.highlight(node)
	return node.Value(), nil
}

// Contains reports whether v is present. The search is shown as a sweep
// that nudges each visited node up to and including the match.
func (p *ArrayPresenter[T]) Contains(v T) (found bool, err error) {
	o, err := p.begin("contains")
	if err != nil {
		return false, err
	}
	defer p.end(o, &err)

	o.enter(Committing)
	idx := p.a.IndexFunc(func(n *visual.Node[T]) bool { return n.Value() == v })
	visited := p.a.Items()
	if idx >= 0 {
		visited = visited[:idx+1]
	}
	if len(visited) == 0 {
		return false, nil
	}
	o.enter(Animating)
	p.highlight(visited...)
	return idx >= 0, nil
}

func (p *ArrayPresenter[T]) Size() int     { return p.a.Size() }
func (p *ArrayPresenter[T]) IsEmpty() bool { return p.a.IsEmpty() }

// Items returns the values in index order.
func (p *ArrayPresenter[T]) Items() []T { return p.values() }

// Nodes returns the visual nodes in index order.
func (p *ArrayPresenter[T]) Nodes() []*visual.Node[T] { return p.a.Items() }

// Dispose removes every node and slot from the scene.
func (p *ArrayPresenter[T]) Dispose() error { return p.dispose() }
