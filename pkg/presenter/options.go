package presenter

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/chazu/seqviz/pkg/scene"
	"github.com/chazu/seqviz/pkg/visual"
)

// config holds the construction-time settings shared by all presenters.
type config struct {
	name          string
	node          visual.Spec
	anchor        scene.Vec3
	shellSize     int
	shellMaterial scene.Material
	duration      time.Duration
	exitDistance  float64
	highlightLift float64
	labelFunc     func(v any) string
	logger        *log.Logger
	observer      PhaseObserver
}

func defaultConfig() config {
	return config{
		node:          visual.DefaultSpec(),
		shellMaterial: scene.DefaultShellMaterial,
		exitDistance:  2,
		highlightLift: 0.5,
		labelFunc:     func(v any) string { return fmt.Sprint(v) },
		logger:        log.Default(),
	}
}

func (c config) validate() error {
	s := c.node.Size
	if s.X <= 0 || s.Y <= 0 || s.Z <= 0 {
		return fmt.Errorf("presenter: node size must be positive, got %s", s)
	}
	if c.shellSize < 0 {
		return fmt.Errorf("presenter: shell size must not be negative, got %d", c.shellSize)
	}
	if c.duration < 0 {
		return fmt.Errorf("presenter: duration must not be negative, got %s", c.duration)
	}
	if c.exitDistance <= 0 {
		return fmt.Errorf("presenter: exit distance must be positive, got %v", c.exitDistance)
	}
	return nil
}

// Option configures a presenter.
type Option func(*config)

// WithName sets the name used in log output.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithNodeSize sets the width, height and depth of every node.
func WithNodeSize(width, height, depth float64) Option {
	return func(c *config) { c.node.Size = scene.Vec3{X: width, Y: height, Z: depth} }
}

// WithAnchor sets the position of slot 0.
func WithAnchor(p scene.Vec3) Option {
	return func(c *config) { c.anchor = p }
}

// WithShellSize sets the declared capacity rendered as placeholder slots.
func WithShellSize(n int) Option {
	return func(c *config) { c.shellSize = n }
}

// WithDuration sets the duration of every animation step. Zero is instant.
func WithDuration(d time.Duration) Option {
	return func(c *config) { c.duration = d }
}

// WithNodeMaterial sets the material of node boxes.
func WithNodeMaterial(m scene.Material) Option {
	return func(c *config) { c.node.Material = m }
}

// WithLabelStyle sets the style of node labels.
func WithLabelStyle(s scene.LabelStyle) Option {
	return func(c *config) { c.node.LabelStyle = s }
}

// WithLabelOffset sets the label position relative to its box.
func WithLabelOffset(o scene.Vec3) Option {
	return func(c *config) { c.node.LabelOffset = o }
}

// WithShellMaterial sets the material of shell slots.
func WithShellMaterial(m scene.Material) Option {
	return func(c *config) { c.shellMaterial = m }
}

// WithExitDistance sets how far, in node sizes, nodes travel off-stage
// when entering or leaving.
func WithExitDistance(slots float64) Option {
	return func(c *config) { c.exitDistance = slots }
}

// WithHighlightLift sets how far, in node heights, a queried node rises.
func WithHighlightLift(heights float64) Option {
	return func(c *config) { c.highlightLift = heights }
}

// WithLabelFunc sets how values are turned into label text.
func WithLabelFunc(f func(v any) string) Option {
	return func(c *config) {
		if f != nil {
			c.labelFunc = f
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPhaseObserver registers a callback for every phase transition.
func WithPhaseObserver(o PhaseObserver) Option {
	return func(c *config) { c.observer = o }
}
