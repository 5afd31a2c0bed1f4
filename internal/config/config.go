package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"instanced-shapes/internal/palette"
	"instanced-shapes/internal/physics"
	"instanced-shapes/internal/shape"
)

// ConfigPath is the default config file, relative to the process working directory.
const ConfigPath = "config/shapes.yaml"

// Config holds everything the scene reads at startup. It does not change while the scene runs.
type Config struct {
	Instances Instances `yaml:"instances"`
	Shape     string    `yaml:"shape"`
	Palette   []string  `yaml:"palette"`
	Physics   Physics   `yaml:"physics"`
	Perturb   Perturb   `yaml:"perturb"`
	Window    Window    `yaml:"window"`
	Debug     Debug     `yaml:"debug"`
	Log       Log       `yaml:"log"`
}

type Instances struct {
	Count int     `yaml:"count"`
	Size  float32 `yaml:"size"`
}

type Physics struct {
	Gravity     [3]float32 `yaml:"gravity"`
	CellSize    float32    `yaml:"cell_size"`
	Substeps    int        `yaml:"substeps"`
	FixedStep   float32    `yaml:"fixed_step"`
	MaxSubSteps int        `yaml:"max_sub_steps"`
}

type Perturb struct {
	MaxHeight float32 `yaml:"max_height"`
}

type Window struct {
	Width      int32  `yaml:"width"`
	Height     int32  `yaml:"height"`
	Title      string `yaml:"title"`
	Fullscreen bool   `yaml:"fullscreen"`
	TargetFPS  int32  `yaml:"target_fps"`
}

type Debug struct {
	ShowFPS      bool `yaml:"show_fps"`
	ShowMemAlloc bool `yaml:"show_memalloc"`
}

type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the stock scene: 200 boxes of size 0.1, the five-colour palette, 60 Hz physics.
func Default() Config {
	return Config{
		Instances: Instances{Count: 200, Size: 0.1},
		Shape:     "box",
		Palette:   append([]string(nil), palette.Nice...),
		Physics: Physics{
			Gravity:     [3]float32{0, -9.81, 0},
			CellSize:    physics.DefaultCellSize,
			Substeps:    physics.DefaultSubsteps,
			FixedStep:   1.0 / 60.0,
			MaxSubSteps: 10,
		},
		Perturb: Perturb{MaxHeight: 2},
		Window: Window{
			Width:     1280,
			Height:    720,
			Title:     "instanced shapes",
			TargetFPS: 60,
		},
		Log: Log{Level: "info", File: "logs/shapes.log"},
	}
}

// Load reads the YAML file at path over Default(). A missing file is not an error and yields Default().
// Fields absent from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ErrExists is returned by Init when the target file is already there and overwrite is false.
var ErrExists = errors.New("config: file already exists")

// Init writes Default() to path. An existing file is left alone unless overwrite is set.
func Init(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config: %w", err)
		}
	}
	return Save(path, Default())
}

// Validate checks the values the scene cannot run without.
func (c Config) Validate() error {
	var errs []error
	if c.Instances.Count < 0 {
		errs = append(errs, fmt.Errorf("instances.count must be >= 0, got %d", c.Instances.Count))
	}
	if c.Instances.Size <= 0 {
		errs = append(errs, fmt.Errorf("instances.size must be > 0, got %g", c.Instances.Size))
	}
	if _, err := shape.ParseMode(c.Shape); err != nil {
		errs = append(errs, err)
	}
	if _, err := palette.Parse(c.Palette); err != nil {
		errs = append(errs, err)
	}
	if c.Physics.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("physics.cell_size must be > 0, got %g", c.Physics.CellSize))
	}
	if c.Physics.Substeps < 1 {
		errs = append(errs, fmt.Errorf("physics.substeps must be >= 1, got %d", c.Physics.Substeps))
	}
	if c.Physics.FixedStep <= 0 {
		errs = append(errs, fmt.Errorf("physics.fixed_step must be > 0, got %g", c.Physics.FixedStep))
	}
	if c.Physics.MaxSubSteps < 1 {
		errs = append(errs, fmt.Errorf("physics.max_sub_steps must be >= 1, got %d", c.Physics.MaxSubSteps))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
