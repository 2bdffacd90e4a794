// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

//go:embed schema.json
var schemaJSON string

const schemaURL = "universe25://config.schema.json"

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Phases    PhasesConfig    `yaml:"phases"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Host      HostConfig      `yaml:"host"`
	Observer  ObserverConfig  `yaml:"observer"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds grid dimensions and population sizing.
type WorldConfig struct {
	Width             int     `yaml:"width"`
	Height            int     `yaml:"height"`
	InitialPopulation int     `yaml:"initial_population"`
	MaxDensity        float64 `yaml:"max_density"` // Fraction of cells that may be occupied
}

// LifecycleConfig holds the physiology and reproduction constants.
type LifecycleConfig struct {
	MaxAge          int     `yaml:"max_age"`
	AdultAge        int     `yaml:"adult_age"`
	HungerRate      float64 `yaml:"hunger_rate"`
	EnergyRate      float64 `yaml:"energy_rate"`
	Gestation       int     `yaml:"gestation"`
	FemaleDriveRate float64 `yaml:"female_drive_rate"`
	MaleDriveRate   float64 `yaml:"male_drive_rate"`
	BaseLitter      int     `yaml:"base_litter"`
}

// PhasesConfig holds the density factors at which the phase ratchet advances.
type PhasesConfig struct {
	Growth    float64 `yaml:"growth"`
	Breakdown float64 `yaml:"breakdown"`
	Collapse  float64 `yaml:"collapse"`
}

// TelemetryConfig holds logging and output parameters.
type TelemetryConfig struct {
	LogEvery    int    `yaml:"log_every"`
	OutputDir   string `yaml:"output_dir"`
	SnapshotDir string `yaml:"snapshot_dir"`
	Database    string `yaml:"database"`
}

// HostConfig holds control surface parameters.
type HostConfig struct {
	Speeds          []int `yaml:"speeds"`
	InitialSpeed    int   `yaml:"initial_speed"`
	MaxSpeed        int   `yaml:"max_speed"`
	FrameIntervalMs int   `yaml:"frame_interval_ms"`
	MaxTicks        int64 `yaml:"max_ticks"`
}

// ObserverConfig holds HTTP observer parameters.
type ObserverConfig struct {
	Listen       string `yaml:"listen"`
	HistoryLimit int    `yaml:"history_limit"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	MaxCapacity   int           // floor(Width * Height * MaxDensity)
	FrameInterval time.Duration // Host.FrameIntervalMs as a duration
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// DefaultsYAML returns the embedded default configuration document.
func DefaultsYAML() []byte {
	return defaultsYAML
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		data = b
	}
	return Parse(data)
}

// Parse merges a YAML document over the embedded defaults, validates the
// result and computes derived values. An empty document yields the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if len(data) > 0 {
		// Unmarshal into same struct - only overwrites fields present in data
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// Validate checks the configuration against the embedded JSON schema and
// the cross-field rules the schema cannot express.
func (c *Config) Validate() error {
	schema, err := jsonschema.CompileString(schemaURL, schemaJSON)
	if err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}

	doc, err := c.document()
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	p := c.Phases
	if p.Growth > p.Breakdown || p.Breakdown > p.Collapse {
		return fmt.Errorf("invalid config: phase thresholds must be non-decreasing (growth %.2f, breakdown %.2f, collapse %.2f)",
			p.Growth, p.Breakdown, p.Collapse)
	}
	h := c.Host
	for _, s := range append([]int{h.InitialSpeed}, h.Speeds...) {
		if s > h.MaxSpeed {
			return fmt.Errorf("invalid config: speed %d exceeds max_speed %d", s, h.MaxSpeed)
		}
	}
	if c.Lifecycle.AdultAge >= c.Lifecycle.MaxAge {
		return fmt.Errorf("invalid config: adult_age %d must be below max_age %d",
			c.Lifecycle.AdultAge, c.Lifecycle.MaxAge)
	}
	return nil
}

// document renders the config as the generic JSON value the schema validates.
func (c *Config) document() (any, error) {
	y, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	var generic map[string]any
	if err := yaml.Unmarshal(y, &generic); err != nil {
		return nil, fmt.Errorf("re-reading config: %w", err)
	}
	j, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("encoding config as json: %w", err)
	}
	var doc any
	if err := json.Unmarshal(j, &doc); err != nil {
		return nil, fmt.Errorf("decoding config json: %w", err)
	}
	return doc, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.MaxCapacity = MaxCapacity(c.World.Width, c.World.Height, c.World.MaxDensity)
	c.Derived.FrameInterval = time.Duration(c.Host.FrameIntervalMs) * time.Millisecond
}

// Refresh recomputes derived values after fields were changed in code.
func (c *Config) Refresh() {
	c.computeDerived()
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Host.Speeds = append([]int(nil), c.Host.Speeds...)
	return &out
}

// MaxCapacity returns floor(width * height * maxDensity), never negative.
func MaxCapacity(width, height int, maxDensity float64) int {
	if width <= 0 || height <= 0 || maxDensity <= 0 {
		return 0
	}
	return int(float64(width*height) * maxDensity)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
