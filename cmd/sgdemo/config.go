package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/sg"
)

// Config is the demo configuration, read from a YAML file and overridden
// by flags.
type Config struct {
	Backend string `yaml:"backend"`
	Output  string `yaml:"output"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`

	Cache struct {
		Policy    string        `yaml:"policy"`
		Threshold int           `yaml:"threshold"`
		Cost      time.Duration `yaml:"cost"`
		Capacity  int           `yaml:"capacity"`
	} `yaml:"cache"`

	Scene struct {
		Grid       int     `yaml:"grid"`
		Complexity float64 `yaml:"complexity"`
	} `yaml:"scene"`

	Frames  int    `yaml:"frames"`
	Workers int    `yaml:"workers"`
	Context uint64 `yaml:"context"`
}

// DefaultConfig returns the configuration used without a file.
func DefaultConfig() Config {
	var c Config
	c.Backend = "raster"
	c.Output = "scene.png"
	c.Width, c.Height = 640, 480
	c.Cache.Policy = "auto"
	c.Cache.Threshold = 2
	c.Cache.Cost = time.Millisecond
	c.Scene.Grid = 4
	c.Scene.Complexity = 0.5
	c.Frames = 10
	c.Workers = 4
	c.Context = 1
	return c
}

// LoadConfig reads path over the defaults. An empty path returns the
// defaults.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, c.Validate()
}

// Validate checks the values a run depends on.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid viewport %dx%d", c.Width, c.Height)
	}
	if c.Scene.Grid <= 0 {
		return fmt.Errorf("scene grid must be positive, got %d", c.Scene.Grid)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	return nil
}

// Policy returns the configured cache policy.
func (c Config) Policy() (sg.CachePolicy, error) {
	p, ok := sg.ParseCachePolicy(c.Cache.Policy, c.Cache.Threshold, c.Cache.Cost)
	if !ok {
		return nil, fmt.Errorf("unknown cache policy %q", c.Cache.Policy)
	}
	return p, nil
}

// Viewport returns the configured viewport.
func (c Config) Viewport() sg.Viewport {
	vp := sg.DefaultViewport()
	vp.Width, vp.Height = c.Width, c.Height
	return vp
}

// ActionOptions returns the options shared by every action of a run.
func (c Config) ActionOptions() ([]sg.ActionOption, error) {
	p, err := c.Policy()
	if err != nil {
		return nil, err
	}
	return []sg.ActionOption{sg.WithCachePolicy(p), sg.WithViewport(c.Viewport())}, nil
}
