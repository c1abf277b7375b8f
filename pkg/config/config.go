// Package config loads seqviz settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/chazu/seqviz/pkg/presenter"
	"github.com/chazu/seqviz/pkg/scene"
	"github.com/chazu/seqviz/pkg/tween"
)

const (
	DefaultDuration   = 400 * time.Millisecond
	DefaultEasing     = "cubic"
	DefaultFPS        = 30
	DefaultTimeout    = 5 * time.Second
	DefaultRowSpacing = 3.0
	DefaultLogLevel   = "info"
)

type Config struct {
	Node      NodeConfig      `yaml:"node"`
	Shell     ShellConfig     `yaml:"shell"`
	Animation AnimationConfig `yaml:"animation"`
	Script    ScriptConfig    `yaml:"script"`
	LogLevel  string          `yaml:"log_level"`
}

type NodeConfig struct {
	Size        [3]float64       `yaml:"size,flow"`
	Material    scene.Material   `yaml:"material"`
	Label       scene.LabelStyle `yaml:"label"`
	LabelOffset [3]float64       `yaml:"label_offset,flow"`
}

type ShellConfig struct {
	Size     int            `yaml:"size"`
	Material scene.Material `yaml:"material"`
}

type AnimationConfig struct {
	Duration      time.Duration `yaml:"duration"`
	Easing        string        `yaml:"easing"`
	FPS           int           `yaml:"fps"`
	ExitDistance  float64       `yaml:"exit_distance"`
	HighlightLift float64       `yaml:"highlight_lift"`
}

// ScriptConfig places collections created by scripts. The first one
// without an explicit anchor sits at Origin, the next RowSpacing below.
type ScriptConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	Origin     [3]float64    `yaml:"origin,flow"`
	RowSpacing float64       `yaml:"row_spacing"`
}

func DefaultConfig() *Config {
	return &Config{
		Node: NodeConfig{
			Size:        [3]float64{1, 1, 1},
			Material:    scene.DefaultNodeMaterial,
			Label:       scene.DefaultLabelStyle,
			LabelOffset: [3]float64{0, 0, 0.51},
		},
		Shell: ShellConfig{
			Material: scene.DefaultShellMaterial,
		},
		Animation: AnimationConfig{
			Duration:      DefaultDuration,
			Easing:        DefaultEasing,
			FPS:           DefaultFPS,
			ExitDistance:  2,
			HighlightLift: 0.5,
		},
		Script: ScriptConfig{
			Timeout:    DefaultTimeout,
			RowSpacing: DefaultRowSpacing,
		},
		LogLevel: DefaultLogLevel,
	}
}

// Load reads path over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	// Role is not part of the file format.
	cfg.Node.Material.Role = scene.RoleNode
	cfg.Shell.Material.Role = scene.RoleShell
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	for i, v := range c.Node.Size {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("node.size[%d] must be positive, got %g", i, v))
		}
	}
	if c.Shell.Size < 0 {
		errs = append(errs, fmt.Errorf("shell.size must not be negative, got %d", c.Shell.Size))
	}
	if c.Animation.Duration < 0 {
		errs = append(errs, fmt.Errorf("animation.duration must not be negative, got %s", c.Animation.Duration))
	}
	if c.Animation.FPS <= 0 {
		errs = append(errs, fmt.Errorf("animation.fps must be positive, got %d", c.Animation.FPS))
	}
	if c.Animation.ExitDistance <= 0 {
		errs = append(errs, fmt.Errorf("animation.exit_distance must be positive, got %g", c.Animation.ExitDistance))
	}
	if _, err := tween.ParseEasing(c.Animation.Easing); err != nil {
		errs = append(errs, err)
	}
	if c.Script.RowSpacing <= 0 {
		errs = append(errs, fmt.Errorf("script.row_spacing must be positive, got %g", c.Script.RowSpacing))
	}
	if c.Script.Timeout < 0 {
		errs = append(errs, fmt.Errorf("script.timeout must not be negative, got %s", c.Script.Timeout))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	return errors.Join(errs...)
}

// Easing returns the configured easing curve.
func (c *Config) Easing() tween.Easing {
	e, err := tween.ParseEasing(c.Animation.Easing)
	if err != nil {
		return tween.Linear
	}
	return e
}

// Level returns the configured log level, or info when it does not parse.
func (c *Config) Level() log.Level {
	l, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return l
}

// Origin returns the anchor of the first script collection.
func (c *Config) Origin() scene.Vec3 { return vec(c.Script.Origin) }

// PresenterOptions converts the node, shell and animation settings.
func (c *Config) PresenterOptions() []presenter.Option {
	opts := []presenter.Option{
		presenter.WithNodeSize(c.Node.Size[0], c.Node.Size[1], c.Node.Size[2]),
		presenter.WithNodeMaterial(c.Node.Material),
		presenter.WithLabelStyle(c.Node.Label),
		presenter.WithLabelOffset(vec(c.Node.LabelOffset)),
		presenter.WithShellMaterial(c.Shell.Material),
		presenter.WithDuration(c.Animation.Duration),
		presenter.WithExitDistance(c.Animation.ExitDistance),
		presenter.WithHighlightLift(c.Animation.HighlightLift),
	}
	if c.Shell.Size > 0 {
		opts = append(opts, presenter.WithShellSize(c.Shell.Size))
	}
	return opts
}

func vec(a [3]float64) scene.Vec3 { return scene.Vec3{X: a[0], Y: a[1], Z: a[2]} }
