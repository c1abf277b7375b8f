package presenter

import (
	"errors"
	"io"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/seqviz/pkg/collection"
	"github.com/chazu/seqviz/pkg/scene"
	"github.com/chazu/seqviz/pkg/tween"
	"github.com/chazu/seqviz/pkg/tween/tweentest"
)

var quiet = WithLogger(log.New(io.Discard))

// drive runs fn while completing every tween it issues, and fails the test
// if fn does not return in time.
func drive(t *testing.T, m *tweentest.Manual, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-done:
			return
		case <-deadline:
			t.Fatal("operation did not settle")
		case <-time.After(time.Millisecond):
			m.CompleteAll()
		}
	}
}

// recorder collects phase events.
type recorder struct {
	mu     sync.Mutex
	events []PhaseEvent
}

func (r *recorder) observe(e PhaseEvent) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) phases(op string) []Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Phase
	for _, e := range r.events {
		if e.Op == op {
			out = append(out, e.Phase)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

func nodePositions(t *testing.T, xs []float64, got []scene.Vec3) {
	t.Helper()
	require.Len(t, got, len(xs))
	for i, x := range xs {
		assert.InDelta(t, x, got[i].X, 1e-9, "node %d", i)
		assert.InDelta(t, 0, got[i].Y, 1e-9, "node %d", i)
	}
}

// ---------------------------------------------------------------------------
// Queue
// ---------------------------------------------------------------------------

func TestQueueFIFO(t *testing.T) {
	mem := scene.NewMemory()
	q, err := NewQueue[int](mem, tween.Instant{}, quiet)
	require.NoError(t, err)

	for i, v := range []int{1, 2, 3} {
		size, err := q.Enqueue(v)
		require.NoError(t, err)
		assert.Equal(t, i+1, size)
	}
	assert.Equal(t, []int{1, 2, 3}, q.Items())

	v, err := q.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, collection.Some(1), v)
	assert.Equal(t, []int{2, 3}, q.Items())

	v, err = q.Peek()
	require.NoError(t, err)
	assert.Equal(t, collection.Some(2), v)
	assert.Equal(t, 2, q.Size())

	var pos []scene.Vec3
	for _, n := range q.Nodes() {
		pos = append(pos, n.Position())
	}
	nodePositions(t, []float64{0, -1}, pos)
	assert.Len(t, mem.Snapshot().Boxes(scene.RoleNode), 2)
}

func TestQueueEmptyDequeueAnimatesNothing(t *testing.T) {
	mem := scene.NewMemory()
	m := tweentest.NewManual()
	q, err := NewQueue[string](mem, m, quiet)
	require.NoError(t, err)

	v, err := q.Dequeue()
	require.NoError(t, err)
	assert.True(t, v.IsNone())

	v, err = q.Peek()
	require.NoError(t, err)
	assert.True(t, v.IsNone())

	assert.Zero(t, m.Len(), "no tween may be issued")
	assert.Zero(t, mem.Len(), "no object may be created")
	assert.True(t, q.IsEmpty())
}

func TestEnqueueCommitsAfterEntryAnimation(t *testing.T) {
	mem := scene.NewMemory()
	m := tweentest.NewManual()
	q, err := NewQueue[int](mem, m, quiet)
	require.NoError(t, err)

	result := make(chan int, 1)
	go func() {
		size, err := q.Enqueue(42)
		assert.NoError(t, err)
		result <- size
	}()

	reqs, err := m.WaitFor(1, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 0, q.Size(), "logical commit must wait for the entry tween")
	assert.Equal(t, 2, mem.Len(), "new node is shown while it travels")
	select {
	case <-result:
		t.Fatal("Enqueue returned before its animation completed")
	default:
	}

	reqs[0].Complete()
	select {
	case size := <-result:
		assert.Equal(t, 1, size)
	case <-time.After(time.Second):
		t.Fatal("Enqueue did not return")
	}
	assert.Equal(t, []int{42}, q.Items())
	assert.Equal(t, 1, m.Len(), "a node already in place needs no relayout tween")
}

func TestDequeueCommitsBeforeExitAnimation(t *testing.T) {
	mem := scene.NewMemory()
	m := tweentest.NewManual()
	q, err := NewQueue[int](mem, m, quiet)
	require.NoError(t, err)
	drive(t, m, func() {
		q.Enqueue(1)
		q.Enqueue(2)
	})
	issued := m.Len()

	result := make(chan collection.Option[int], 1)
	go func() {
		v, err := q.Dequeue()
		assert.NoError(t, err)
		result <- v
	}()

	reqs, err := m.WaitFor(issued+1, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Size(), "removal commits before the exit tween")
	select {
	case <-result:
		t.Fatal("Dequeue returned before its exit animation completed")
	default:
	}

	drive(t, m, func() {
		assert.Equal(t, collection.Some(1), <-result)
	})
	assert.True(t, reqs[issued].Completed())
	assert.Len(t, mem.Snapshot().Boxes(scene.RoleNode), 1)
	nodePositions(t, []float64{0}, []scene.Vec3{q.Nodes()[0].Position()})
}

func TestQueueRenderTracksLogical(t *testing.T) {
	mem := scene.NewMemory()
	m := tweentest.NewManual()
	q, err := NewQueue[int](mem, m, quiet, WithDuration(100*time.Millisecond))
	require.NoError(t, err)

	ops := []func(){
		func() { q.Enqueue(1) },
		func() { q.Enqueue(2) },
		func() { q.Dequeue() },
		func() { q.Enqueue(3) },
		func() { q.Enqueue(4) },
		func() { q.Dequeue() },
		func() { q.Peek() },
	}
	for i, op := range ops {
		drive(t, m, op)
		snap := mem.Snapshot()
		assert.Len(t, snap.Boxes(scene.RoleNode), q.Size(), "step %d", i)
		assert.Len(t, snap.Labels(), q.Size(), "step %d", i)
	}
	assert.Equal(t, []int{3, 4}, q.Items())
	for _, r := range m.Requests() {
		assert.Equal(t, 100*time.Millisecond, r.Duration)
	}
}

// ---------------------------------------------------------------------------
// Stack
// ---------------------------------------------------------------------------

func TestStackLIFO(t *testing.T) {
	mem := scene.NewMemory()
	s, err := NewStack[string](mem, nil, quiet)
	require.NoError(t, err)

	for _, v := range []string{"a", "b", "c"} {
		_, err := s.Push(v)
		require.NoError(t, err)
	}
	// The top sits at the anchor.
	var pos []scene.Vec3
	for _, n := range s.Nodes() {
		pos = append(pos, n.Position())
	}
	nodePositions(t, []float64{-2, -1, 0}, pos)

	v, err := s.Pop()
	require.NoError(t, err)
	assert.Equal(t, collection.Some("c"), v)

	v, err = s.Peek()
	require.NoError(t, err)
	assert.Equal(t, collection.Some("b"), v)
	assert.Equal(t, []string{"a", "b"}, s.Items())

	pos = pos[:0]
	for _, n := range s.Nodes() {
		pos = append(pos, n.Position())
	}
	nodePositions(t, []float64{-1, 0}, pos)

	s.Pop()
	s.Pop()
	v, err = s.Pop()
	require.NoError(t, err)
	assert.True(t, v.IsNone())
	assert.Zero(t, mem.Len())
}

func TestStackPushShiftsExistingNodes(t *testing.T) {
	mem := scene.NewMemory()
	m := tweentest.NewManual()
	s, err := NewStack[int](mem, m, quiet)
	require.NoError(t, err)
	drive(t, m, func() { s.Push(1) })
	issued := m.Len()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Push(2)
	}()
	// The new top and the displaced node animate together.
	reqs, err := m.WaitFor(issued+2, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Size())
	assert.InDelta(t, -1, reqs[issued].Props[tween.PositionX], 1e-9, "old top moves one slot deeper")
	assert.InDelta(t, 0, reqs[issued+1].Props[tween.PositionX], 1e-9, "new top lands at the anchor")

	drive(t, m, func() { <-done })
	assert.Equal(t, issued+2, m.Len(), "nothing left to relayout")
	assert.Equal(t, []int{1, 2}, s.Items())
}

func TestStackRenderTracksLogical(t *testing.T) {
	mem := scene.NewMemory()
	m := tweentest.NewManual()
	s, err := NewStack[int](mem, m, quiet)
	require.NoError(t, err)

	ops := []func(){
		func() { s.Push(1) },
		func() { s.Push(2) },
		func() { s.Push(3) },
		func() { s.Pop() },
		func() { s.Peek() },
		func() { s.Pop() },
		func() { s.Push(4) },
		func() { s.Pop() },
		func() { s.Pop() },
		func() { s.Pop() },
	}
	for i, op := range ops {
		drive(t, m, op)
		snap := mem.Snapshot()
		assert.Len(t, snap.Boxes(scene.RoleNode), s.Size(), "step %d", i)
		assert.Len(t, snap.Labels(), s.Size(), "step %d", i)
	}
	assert.True(t, s.IsEmpty())
}

// ---------------------------------------------------------------------------
// Array
// ---------------------------------------------------------------------------

func TestArrayOperations(t *testing.T) {
	mem := scene.NewMemory()
	a, err := NewArray[string](mem, tween.Instant{}, quiet)
	require.NoError(t, err)

	_, err = a.Insert(0, "a")
	require.NoError(t, err)
	_, err = a.Insert(1, "c")
	require.NoError(t, err)
	size, err := a.Insert(1, "b")
	require.NoError(t, err)
	assert.Equal(t, 3, size)
	assert.Equal(t, []string{"a", "b", "c"}, a.Items())

	v, err := a.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "b", v)

	require.NoError(t, a.Update(1, "B"))
	assert.Equal(t, []string{"a", "B", "c"}, a.Items())

	v, err = a.Delete(0)
	require.NoError(t, err)
	assert.Equal(t, "a", v)
	assert.Equal(t, []string{"B", "c"}, a.Items())

	found, err := a.Contains("c")
	require.NoError(t, err)
	assert.True(t, found)
	found, err = a.Contains("z")
	require.NoError(t, err)
	assert.False(t, found)

	var texts []string
	for _, l := range mem.Snapshot().Labels() {
		texts = append(texts, l.Text)
	}
	assert.ElementsMatch(t, []string{"B", "c"}, texts)

	var pos []scene.Vec3
	for _, n := range a.Nodes() {
		pos = append(pos, n.Position())
	}
	nodePositions(t, []float64{0, -1}, pos)
}

func TestArrayIndexErrorsLeaveStateUnchanged(t *testing.T) {
	mem := scene.NewMemory()
	m := tweentest.NewManual()
	a, err := NewArray[int](mem, m, quiet)
	require.NoError(t, err)
	drive(t, m, func() { a.Insert(0, 10) })
	issued, objects := m.Len(), mem.Len()

	tests := []struct {
		name string
		op   func() error
	}{
		{"insert past end", func() error { _, err := a.Insert(2, 1); return err }},
		{"insert negative", func() error { _, err := a.Insert(-1, 1); return err }},
		{"delete past end", func() error { _, err := a.Delete(1); return err }},
		{"update past end", func() error { return a.Update(5, 1) }},
		{"get negative", func() error { _, err := a.Get(-1); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			require.Error(t, err)
			assert.ErrorIs(t, err, collection.ErrIndexOutOfBounds)
			var ie *collection.IndexError
			assert.ErrorAs(t, err, &ie)
			assert.Equal(t, []int{10}, a.Items())
			assert.Equal(t, issued, m.Len())
			assert.Equal(t, objects, mem.Len())
		})
	}
}

func TestArrayContainsSweepsToMatch(t *testing.T) {
	mem := scene.NewMemory()
	m := tweentest.NewManual()
	a, err := NewArray[int](mem, m, quiet)
	require.NoError(t, err)
	drive(t, m, func() {
		for i, v := range []int{5, 6, 7} {
			a.Insert(i, v)
		}
	})
	issued := m.Len()

	drive(t, m, func() {
		found, err := a.Contains(6)
		assert.NoError(t, err)
		assert.True(t, found)
	})
	// Two visited nodes, each lifted and set back down.
	assert.Equal(t, issued+4, m.Len())
}

// ---------------------------------------------------------------------------
// Protocol
// ---------------------------------------------------------------------------

func TestArrayRenderTracksLogical(t *testing.T) {
	mem := scene.NewMemory()
	m := tweentest.NewManual()
	a, err := NewArray[int](mem, m, quiet)
	require.NoError(t, err)

	ops := []func(){
		func() { a.Insert(0, 1) },
		func() { a.Insert(1, 3) },
		func() { a.Insert(1, 2) },
		func() { a.Update(0, 10) },
		func() { a.Update(2, 30) },
		func() { a.Update(5, 50) },
		func() { a.Delete(1) },
		func() { a.Insert(0, 0) },
		func() { a.Delete(9) },
		func() { a.Delete(2) },
		func() { a.Update(1, 11) },
	}
	for i, op := range ops {
		drive(t, m, op)
		snap := mem.Snapshot()
		assert.Len(t, snap.Boxes(scene.RoleNode), a.Size(), "step %d", i)
		assert.Len(t, snap.Labels(), a.Size(), "step %d", i)
		var texts []string
		for _, l := range snap.Labels() {
			texts = append(texts, l.Text)
		}
		var want []string
		for _, v := range a.Items() {
			want = append(want, strconv.Itoa(v))
		}
		assert.ElementsMatch(t, want, texts, "step %d", i)
	}
	assert.Equal(t, []int{0, 11}, a.Items())
}

// releaseFailer refuses to release the objects listed in deny.
type releaseFailer struct {
	*scene.Memory
	mu   sync.Mutex
	deny map[string]bool
}

var errRelease = errors.New("release refused")

func (r *releaseFailer) refuse(objs ...scene.Object) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deny = make(map[string]bool)
	for _, o := range objs {
		r.deny[o.ID()] = true
	}
}

func (r *releaseFailer) Release(o scene.Object) error {
	r.mu.Lock()
	denied := r.deny[o.ID()]
	r.mu.Unlock()
	if denied {
		return errRelease
	}
	return r.Memory.Release(o)
}

func TestArrayUpdateKeepsOldValueWhenRemovalFails(t *testing.T) {
	rf := &releaseFailer{Memory: scene.NewMemory()}
	a, err := NewArray[int](rf, tween.Instant{}, quiet)
	require.NoError(t, err)
	_, err = a.Insert(0, 10)
	require.NoError(t, err)
	_, err = a.Insert(1, 20)
	require.NoError(t, err)

	old := a.Nodes()[1]
	home := old.Position()
	rf.refuse(old.Box(), old.Label())

	err = a.Update(1, 99)
	assert.ErrorIs(t, err, errRelease)
	assert.Equal(t, []int{10, 20}, a.Items())
	assert.True(t, old.Position().ApproxEqual(home, 1e-9), "old node back in its slot")
	snap := rf.Snapshot()
	assert.Len(t, snap.Boxes(scene.RoleNode), 2)
	assert.Len(t, snap.Labels(), 2)
	assert.Equal(t, rf.Len(), rf.Objects(), "the new node is released")

	rf.refuse()
	require.NoError(t, a.Update(1, 99))
	assert.Equal(t, []int{10, 99}, a.Items())
	assert.Len(t, rf.Snapshot().Boxes(scene.RoleNode), 2)
}

func TestPhaseSequences(t *testing.T) {
	rec := &recorder{}
	q, err := NewQueue[int](scene.NewMemory(), nil, quiet, WithPhaseObserver(rec.observe))
	require.NoError(t, err)

	q.Dequeue()
	assert.Equal(t, []Phase{Staging, Committing, Settled}, rec.phases("dequeue"))
	rec.reset()

	q.Enqueue(1)
	assert.Equal(t, []Phase{Staging, Animating, Committing, RelayoutPending, Settled}, rec.phases("enqueue"))

	q.Dequeue()
	assert.Equal(t, []Phase{Staging, Committing, Animating, RelayoutPending, Settled}, rec.phases("dequeue"))

	a, err := NewArray[int](scene.NewMemory(), nil, quiet, WithPhaseObserver(rec.observe))
	require.NoError(t, err)
	rec.reset()
	a.Delete(3)
	assert.Equal(t, []Phase{Staging, Committing, Failed}, rec.phases("delete"))
}

func TestPhaseEventSize(t *testing.T) {
	rec := &recorder{}
	s, err := NewStack[int](scene.NewMemory(), nil, quiet, WithPhaseObserver(rec.observe), WithName("s"))
	require.NoError(t, err)
	s.Push(1)

	sizes := map[Phase]int{}
	for _, e := range rec.events {
		assert.Equal(t, "s", e.Presenter)
		sizes[e.Phase] = e.Size
	}
	assert.Equal(t, 0, sizes[Animating], "size is unchanged while the entry animates")
	assert.Equal(t, 1, sizes[RelayoutPending])
}

func TestIllegalTransitionPanics(t *testing.T) {
	o := &operation{op: "test", phase: Settled, emit: func(string, Phase) {}}
	assert.Panics(t, func() { o.enter(Animating) })

	o = &operation{op: "test", phase: RelayoutPending, emit: func(string, Phase) {}}
	assert.Panics(t, func() { o.enter(Committing) })
	assert.NotPanics(t, func() { o.enter(Settled) })
}

func TestOverlappingOperationIsBusy(t *testing.T) {
	m := tweentest.NewManual()
	q, err := NewQueue[int](scene.NewMemory(), m, quiet)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Enqueue(1)
	}()
	_, err = m.WaitFor(1, time.Second)
	require.NoError(t, err)

	_, err = q.Enqueue(2)
	assert.ErrorIs(t, err, ErrBusy)
	_, err = q.Dequeue()
	assert.ErrorIs(t, err, ErrBusy)

	m.CompleteAll()
	<-done
	_, err = q.Enqueue(2)
	assert.NoError(t, err)
}

func TestShellFloor(t *testing.T) {
	mem := scene.NewMemory()
	q, err := NewQueue[int](mem, nil, quiet, WithShellSize(3))
	require.NoError(t, err)

	slots := func() int { return len(mem.Snapshot().Boxes(scene.RoleShell)) }
	assert.Equal(t, 3, slots())
	for i := range 5 {
		q.Enqueue(i)
		assert.GreaterOrEqual(t, slots(), 3)
		assert.Equal(t, max(3, q.Size()), slots())
	}
	for range 5 {
		q.Dequeue()
		assert.Equal(t, max(3, q.Size()), slots())
	}
	assert.Equal(t, 3, q.Shell().Len())
}

func TestRendererFailurePropagates(t *testing.T) {
	mem := scene.NewMemory()
	q, err := NewQueue[int](mem, nil, quiet)
	require.NoError(t, err)

	boom := errors.New("context lost")
	mem.Fail(boom)
	_, err = q.Enqueue(1)
	assert.ErrorIs(t, err, boom)
	assert.True(t, q.IsEmpty())
	assert.Equal(t, mem.Len(), mem.Objects())

	mem.Fail(nil)
	_, err = q.Enqueue(1)
	assert.NoError(t, err)
}

func TestRemovedNodesAreReleased(t *testing.T) {
	mem := scene.NewMemory()
	q, err := NewQueue[int](mem, nil, quiet, WithShellSize(2))
	require.NoError(t, err)

	for i := range 20 {
		_, err := q.Enqueue(i)
		require.NoError(t, err)
		if i%3 != 0 {
			_, err := q.Dequeue()
			require.NoError(t, err)
		}
		assert.Equal(t, mem.Len(), mem.Objects(), "cycle %d", i)
	}

	require.NoError(t, q.Dispose())
	assert.Zero(t, mem.Objects())
}

func TestDispose(t *testing.T) {
	mem := scene.NewMemory()
	s, err := NewStack[int](mem, nil, quiet, WithShellSize(2))
	require.NoError(t, err)
	s.Push(1)
	s.Push(2)

	require.NoError(t, s.Dispose())
	assert.Zero(t, mem.Len())
	_, err = s.Push(3)
	assert.ErrorIs(t, err, ErrDisposed)
	assert.NoError(t, s.Dispose())
}

func TestInvalidOptions(t *testing.T) {
	mem := scene.NewMemory()
	_, err := NewQueue[int](mem, nil, WithNodeSize(0, 1, 1))
	assert.Error(t, err)
	_, err = NewQueue[int](mem, nil, WithShellSize(-1))
	assert.Error(t, err)
	_, err = NewQueue[int](mem, nil, WithDuration(-time.Second))
	assert.Error(t, err)
}

func TestCustomGeometry(t *testing.T) {
	mem := scene.NewMemory()
	a, err := NewArray[int](mem, nil, quiet,
		WithNodeSize(2, 1, 1),
		WithAnchor(scene.Vec3{X: 10, Y: 5}),
		WithLabelFunc(func(v any) string { return "#" }))
	require.NoError(t, err)
	a.Insert(0, 1)
	a.Insert(1, 2)

	nodes := a.Nodes()
	assert.Equal(t, scene.Vec3{X: 10, Y: 5}, nodes[0].Position())
	assert.Equal(t, scene.Vec3{X: 8, Y: 5}, nodes[1].Position())
	assert.Equal(t, "#", nodes[1].Text())
}

// ---------------------------------------------------------------------------
// Unimplemented
// ---------------------------------------------------------------------------

type partialQueue struct {
	UnimplementedQueue[int]
}

func (partialQueue) Size() int     { return 0 }
func (partialQueue) IsEmpty() bool { return true }

type partialArray struct {
	UnimplementedArray[int]
}

func (partialArray) Size() int     { return 0 }
func (partialArray) IsEmpty() bool { return true }

func TestUnimplementedOperations(t *testing.T) {
	var q Queue[int] = partialQueue{}
	_, err := q.Enqueue(1)
	assert.ErrorIs(t, err, ErrNotImplemented)
	_, err = q.Dequeue()
	assert.ErrorIs(t, err, ErrNotImplemented)

	var a Array[int] = partialArray{}
	assert.ErrorIs(t, a.Update(0, 1), ErrNotImplemented)
	_, err = a.Contains(1)
	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.NotErrorIs(t, err, collection.ErrIndexOutOfBounds)

	_, err = UnimplementedStack[int]{}.Pop()
	assert.ErrorIs(t, err, ErrNotImplemented)
}
