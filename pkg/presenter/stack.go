package presenter

import (
	"github.com/chazu/seqviz/pkg/collection"
	"github.com/chazu/seqviz/pkg/scene"
	"github.com/chazu/seqviz/pkg/tween"
	"github.com/chazu/seqviz/pkg/visual"
)

// StackPresenter animates a LIFO stack. The top always sits at the anchor,
// the open end; a push slides everything below one slot deeper.
type StackPresenter[T any] struct {
	*core[T]
	s *collection.Stack[*visual.Node[T]]
}

var _ Stack[int] = (*StackPresenter[int])(nil)

// NewStack returns an empty stack presenter drawing into r.
func NewStack[T any](r scene.Renderer, tw tween.Tweener, opts ...Option) (*StackPresenter[T], error) {
	s := collection.NewStack[*visual.Node[T]]()
	c, err := newCore("stack", AppendAtTopWithShift, r, tw, s.Items, opts)
	if err != nil {
		return nil, err
	}
	return &StackPresenter[T]{core: c, s: s}, nil
}

// Push places v on top and returns the new size.
func (p *StackPresenter[T]) Push(v T) (size int, err error) {
	o, err := p.begin("push")
	if err != nil {
		return p.s.Size(), err
	}
	defer p.end(o, &err)

	err = p.add(o, p.s.Size(), v, func(n *visual.Node[T]) error {
		p.s.Push(n)
		return nil
	})
	return p.s.Size(), err
}

// Pop removes the top. An empty stack returns None without animating.
func (p *StackPresenter[T]) Pop() (v collection.Option[T], err error) {
	o, err := p.begin("pop")
	if err != nil {
		return collection.None[T](), err
	}
	defer p.end(o, &err)

	o.enter(Committing)
	node, ok := p.s.Pop().Get()
	if !ok {
		return collection.None[T](), nil
	}
	err = p.remove(o, node)
	return collection.Some(node.Value()), err
}

// Peek returns the top and nudges it.
func (p *StackPresenter[T]) Peek() (v collection.Option[T], err error) {
	o, err := p.begin("peek")
	if err != nil {
		return collection.None[T](), err
	}
	defer p.end(o, &err)

	o.enter(Committing)
	node, ok := p.s.Peek().Get()
	if !ok {
		return collection.None[T](), nil
	}
	o.enter(Animating)
	p.highlight(node)
	return collection.Some(node.Value()), nil
}

func (p *StackPresenter[T]) Size() int     { return p.s.Size() }
func (p *StackPresenter[T]) IsEmpty() bool { return p.s.IsEmpty() }

// Items returns the values from bottom to top.
func (p *StackPresenter[T]) Items() []T { return p.values() }

// Nodes returns the visual nodes from bottom to top.
func (p *StackPresenter[T]) Nodes() []*visual.Node[T] { return p.s.Items() }

// Dispose removes every node and slot from the scene.
func (p *StackPresenter[T]) Dispose() error { return p.dispose() }
