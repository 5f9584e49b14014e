// Package config provides configuration loading for the colony simulation.
// Embedded defaults are loaded first, then an optional YAML file, then
// environment overrides.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/world"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Env         string            `yaml:"env"`
	Seed        int64             `yaml:"seed"` // 0 = random
	World       WorldConfig       `yaml:"world"`
	Tick        TickConfig        `yaml:"tick"`
	Agents      AgentsConfig      `yaml:"agents"`
	Actions     ActionsConfig     `yaml:"actions"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	API         APIConfig         `yaml:"api"`
}

// WorldConfig holds map generation parameters.
type WorldConfig struct {
	Width          int      `yaml:"width"`
	Length         int      `yaml:"length"`
	Biome          string   `yaml:"biome"`        // Registered biome name
	CustomTiles    []string `yaml:"custom_tiles"` // Overrides Biome when non-empty
	FloraDensity   float64  `yaml:"flora_density"`
	FloraFrequency float64  `yaml:"flora_frequency"`
}

// TickConfig holds engine pacing.
type TickConfig struct {
	Interval    time.Duration `yaml:"interval"`
	Speed       float64       `yaml:"speed"`
	TicksPerDay uint64        `yaml:"ticks_per_day"`
}

// AgentsConfig holds the starting population.
type AgentsConfig struct {
	Colonists  int                  `yaml:"colonists"`
	Animals    int                  `yaml:"animals"`
	SightRange int                  `yaml:"sight_range"`
	Needs      agents.NeedsTemplate `yaml:"needs"`
}

// ActionsConfig tunes the built-in action systems.
type ActionsConfig struct {
	SleepRestore    float32 `yaml:"sleep_restore"`
	PlayRestore     float32 `yaml:"play_restore"`
	WanderRadius    int     `yaml:"wander_radius"`
	StartingRations int     `yaml:"starting_rations"`
}

// PersistenceConfig holds the event store location.
type PersistenceConfig struct {
	Path string `yaml:"path"` // Empty disables the store
}

// TelemetryConfig holds CSV output settings.
type TelemetryConfig struct {
	Dir string `yaml:"dir"` // Empty disables CSV output
}

// APIConfig holds the HTTP surface settings.
type APIConfig struct {
	Addr     string `yaml:"addr"` // Empty disables the API
	AdminKey string `yaml:"admin_key"`
}

// Default returns the embedded defaults.
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load reads defaults, overlays the file at path (if non-empty), applies
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("COLONY_ENV"); ok {
		c.Env = v
	}
	if v, ok := os.LookupEnv("COLONY_ADMIN_KEY"); ok {
		c.API.AdminKey = v
	}
	if v, ok := os.LookupEnv("COLONY_DB"); ok {
		c.Persistence.Path = v
	}
	if v, ok := os.LookupEnv("COLONY_HTTP_ADDR"); ok {
		c.API.Addr = v
	}
}

// Validate checks that the configuration can drive a simulation.
func (c Config) Validate() error {
	if c.World.Width < 3 || c.World.Length < 3 {
		return fmt.Errorf("world must be at least 3x3, got %dx%d", c.World.Width, c.World.Length)
	}
	if _, err := c.Biome(); err != nil {
		return err
	}
	if c.Tick.Interval <= 0 {
		return fmt.Errorf("tick.interval must be > 0")
	}
	if c.Tick.TicksPerDay == 0 {
		return fmt.Errorf("tick.ticks_per_day must be > 0")
	}
	if c.Agents.Colonists < 0 || c.Agents.Animals < 0 {
		return fmt.Errorf("agent counts must not be negative")
	}
	return nil
}

// Dimensions returns the configured grid size.
func (c Config) Dimensions() world.Dimensions {
	return world.Dimensions{Width: c.World.Width, Length: c.World.Length}
}

// Biome resolves the configured biome: custom tiles win over the name.
func (c Config) Biome() (world.Biome, error) {
	if len(c.World.CustomTiles) > 0 {
		return world.NewBiome("custom", c.World.CustomTiles)
	}
	b, ok := world.LookupBiome(c.World.Biome)
	if !ok {
		return world.Biome{}, fmt.Errorf("unknown biome %q (have %v)", c.World.Biome, world.BiomeNames())
	}
	return b, nil
}

// WriteYAML saves the configuration to path.
func (c Config) WriteYAML(path string) error {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
