package presenter

import (
	"github.com/chazu/seqviz/pkg/collection"
	"github.com/chazu/seqviz/pkg/scene"
	"github.com/chazu/seqviz/pkg/tween"
	"github.com/chazu/seqviz/pkg/visual"
)

// QueuePresenter animates a FIFO queue. The head sits at the anchor; new
// nodes arrive from beyond the tail and dequeued nodes leave past the head.
type QueuePresenter[T any] struct {
	*core[T]
	q *collection.Queue[*visual.Node[T]]
}

var _ Queue[int] = (*QueuePresenter[int])(nil)

// NewQueue returns an empty queue presenter drawing into r. A nil tweener
// applies every animation instantly.
func NewQueue[T any](r scene.Renderer, tw tween.Tweener, opts ...Option) (*QueuePresenter[T], error) {
	q := collection.NewQueue[*visual.Node[T]]()
	c, err := newCore("queue", AppendAtTail, r, tw, q.Items, opts)
	if err != nil {
		return nil, err
	}
	return &QueuePresenter[T]{core: c, q: q}, nil
}

// Enqueue appends v at the tail and returns the new size once the node
// has arrived.
func (p *QueuePresenter[T]) Enqueue(v T) (size int, err error) {
	o, err := p.begin("enqueue")
	if err != nil {
		return p.q.Size(), err
	}
	defer p.end(o, &err)

	err = p.add(o, p.q.Size(), v, func(n *visual.Node[T]) error {
		p.q.Enqueue(n)
		return nil
	})
	return p.q.Size(), err
}

// Dequeue removes the head. An empty queue returns None without
// animating.
func (p *QueuePresenter[T]) Dequeue() (v collection.Option[T], err error) {
	o, err := p.begin("dequeue")
	if err != nil {
		return collection.None[T](), err
	}
	defer p.end(o, &err)

	o.enter(Committing)
	node, ok := p.q.Dequeue().Get()
	if !ok {
		return collection.None[T](), nil
	}
	err = p.remove(o, node)
	return collection.Some(node.Value()), err
}

// Peek returns the head and nudges it. The queue is unchanged.
func (p *QueuePresenter[T]) Peek() (v collection.Option[T], err error) {
	o, err := p.begin("peek")
	if err != nil {
		return collection.None[T](), err
	}
	defer p.end(o, &err)

	o.enter(Committing)
	node, ok := p.q.Peek().Get()
	if !ok {
		return collection.None[T](), nil
	}
	o.enter(Animating)
	p.highlight(node)
	return collection.Some(node.Value()), nil
}

// Size returns the logical element count.
func (p *QueuePresenter[T]) Size() int { return p.q.Size() }

// IsEmpty reports whether the queue has no elements.
func (p *QueuePresenter[T]) IsEmpty() bool { return p.q.IsEmpty() }

// Items returns the values from head to tail.
func (p *QueuePresenter[T]) Items() []T { return p.values() }

// Nodes returns the visual nodes from head to tail.
func (p *QueuePresenter[T]) Nodes() []*visual.Node[T] { return p.q.Items() }

// Dispose removes every node and slot from the scene.
func (p *QueuePresenter[T]) Dispose() error { return p.dispose() }
