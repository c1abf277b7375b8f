package tween

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Clock is a Tweener whose interpolations advance only when Advance is
// called, typically once per rendered frame. It is safe for concurrent
// use: presenters issue requests from one goroutine while a render loop
// advances the clock from another.
type Clock struct {
	mu     sync.Mutex
	active []*animation
	now    time.Duration
	easing Easing
	logger *log.Logger
}

type animation struct {
	target   Target
	from     Props
	to       Props
	start    time.Duration
	duration time.Duration
	done     chan struct{}
}

// ClockOption configures a Clock.
type ClockOption func(*Clock)

// WithEasing sets the easing applied to every tween.
func WithEasing(e Easing) ClockOption {
	return func(c *Clock) {
		if e != nil {
			c.easing = e
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) ClockOption {
	return func(c *Clock) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClock returns a Clock at time zero.
func NewClock(opts ...ClockOption) *Clock {
	c := &Clock{easing: Linear, logger: log.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// To starts interpolating props on t from their current values. A
// non-positive duration applies the targets immediately.
func (c *Clock) To(t Target, props Props, d time.Duration) Done {
	if d <= 0 || len(props) == 0 {
		apply(t, props)
		return closed
	}
	a := &animation{
		target:   t,
		from:     make(Props, len(props)),
		to:       make(Props, len(props)),
		duration: d,
		done:     make(chan struct{}),
	}
	for p, v := range props {
		a.from[p] = t.Get(p)
		a.to[p] = v
	}

	c.mu.Lock()
	a.start = c.now
	c.active = append(c.active, a)
	n := len(c.active)
	c.mu.Unlock()

	c.logger.Debug("tween started", "props", len(props), "duration", d, "active", n)
	return a.done
}

// Advance moves the clock forward by dt, writes interpolated values and
// completes every tween whose duration has elapsed.
func (c *Clock) Advance(dt time.Duration) {
	c.mu.Lock()
	c.now += dt
	now := c.now
	var finished []*animation
	remaining := c.active[:0]
	for _, a := range c.active {
		progress := float64(now-a.start) / float64(a.duration)
		if progress >= 1 {
			apply(a.target, a.to)
			finished = append(finished, a)
			continue
		}
		k := c.easing(progress)
		for p, to := range a.to {
			from := a.from[p]
			a.target.Set(p, from+(to-from)*k)
		}
		remaining = append(remaining, a)
	}
	for i := len(remaining); i < len(c.active); i++ {
		c.active[i] = nil
	}
	c.active = remaining
	c.mu.Unlock()

	// Signal outside the lock so waiters can issue new requests at once.
	for _, a := range finished {
		close(a.done)
	}
}

// Pending returns the number of tweens in flight.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.active)
}

// Now returns the clock's elapsed time.
func (c *Clock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Run advances the clock in real time at fps frames per second until ctx
// is done.
func (c *Clock) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			c.Advance(now.Sub(last))
			last = now
		}
	}
}
