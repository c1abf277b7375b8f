// Package tweentest provides a Tweener whose completion is controlled by
// the test, so ordering between animation and logical commits can be
// asserted step by step.
package tweentest

import (
	"fmt"
	"sync"
	"time"

	"github.com/chazu/seqviz/pkg/tween"
)

// Request is one recorded tween.
type Request struct {
	Target   tween.Target
	Props    tween.Props
	Duration time.Duration

	once sync.Once
	done chan struct{}
}

// Complete applies the target values and signals completion. Calling it
// more than once is a no-op.
func (r *Request) Complete() {
	r.once.Do(func() {
		for p, v := range r.Props {
			r.Target.Set(p, v)
		}
		close(r.done)
	})
}

// Completed reports whether Complete has been called.
func (r *Request) Completed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Manual records requests and completes them only on demand.
type Manual struct {
	mu       sync.Mutex
	cond     *sync.Cond
	requests []*Request
}

// NewManual returns an empty Manual tweener.
func NewManual() *Manual {
	m := &Manual{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// To records the request. Nothing moves until Complete is called.
func (m *Manual) To(t tween.Target, props tween.Props, d time.Duration) tween.Done {
	r := &Request{Target: t, Props: props, Duration: d, done: make(chan struct{})}
	m.mu.Lock()
	m.requests = append(m.requests, r)
	m.cond.Broadcast()
	m.mu.Unlock()
	return r.done
}

// Requests returns every request recorded so far.
func (m *Manual) Requests() []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Len returns the number of recorded requests.
func (m *Manual) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// WaitFor blocks until at least n requests were recorded or the timeout
// elapses, and returns the requests.
func (m *Manual) WaitFor(n int, timeout time.Duration) ([]*Request, error) {
	deadline := time.Now().Add(timeout)
	timer := time.AfterFunc(timeout, func() {
		m.mu.Lock()
		m.cond.Broadcast()
		m.mu.Unlock()
	})
	defer timer.Stop()

	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.requests) < n {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("tweentest: got %d requests, want %d", len(m.requests), n)
		}
		m.cond.Wait()
	}
	out := make([]*Request, len(m.requests))
	copy(out, m.requests)
	return out, nil
}

// CompleteAll completes every pending request and returns how many it
// completed.
func (m *Manual) CompleteAll() int {
	n := 0
	for _, r := range m.Requests() {
		if !r.Completed() {
			r.Complete()
			n++
		}
	}
	return n
}
