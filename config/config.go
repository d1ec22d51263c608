// Package config loads the demo parameters for cmd/grimoire from YAML,
// overlaying a file on built-in defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can be written as
// "250ms" or "2s".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}

// Config holds every demo's parameters.
type Config struct {
	Counter CounterConfig `yaml:"counter"`
	Workers WorkersConfig `yaml:"workers"`
	Ticker  TickerConfig  `yaml:"ticker"`
	Flaky   FlakyConfig   `yaml:"flaky"`
	Fib     FibConfig     `yaml:"fib"`
}

// CounterConfig scripts the counter demo.
type CounterConfig struct {
	Initial    int `yaml:"initial"`
	Increments int `yaml:"increments"`
	Decrements int `yaml:"decrements"`
}

// WorkersConfig sizes the worker-pool demo; the input is 1..InputSize.
type WorkersConfig struct {
	Count     int `yaml:"count"`
	InputSize int `yaml:"input_size"`
}

// TickerConfig drives the periodic-timer demo.
type TickerConfig struct {
	Interval Duration `yaml:"interval"`
	Ticks    int      `yaml:"ticks"`
}

// FlakyConfig drives the breaker demo.
type FlakyConfig struct {
	Failures    int      `yaml:"failures"`
	MaxFailures int      `yaml:"max_failures"`
	Cooldown    Duration `yaml:"cooldown"`
}

// FibConfig caps the Fibonacci printout.
type FibConfig struct {
	N uint `yaml:"n"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Counter: CounterConfig{
			Initial:    0,
			Increments: 5,
			Decrements: 2,
		},
		Workers: WorkersConfig{
			Count:     3,
			InputSize: 6,
		},
		Ticker: TickerConfig{
			Interval: Duration{50 * time.Millisecond},
			Ticks:    3,
		},
		Flaky: FlakyConfig{
			Failures:    2,
			MaxFailures: 2,
			Cooldown:    Duration{100 * time.Millisecond},
		},
		Fib: FibConfig{N: 30},
	}
}

// Load reads path and overlays it on the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the demos cannot run with.
func (c *Config) Validate() error {
	if c.Workers.Count < 1 {
		return fmt.Errorf("workers.count must be at least 1, got %d", c.Workers.Count)
	}
	if c.Workers.InputSize < 0 {
		return fmt.Errorf("workers.input_size must not be negative, got %d", c.Workers.InputSize)
	}
	if c.Counter.Increments < 0 || c.Counter.Decrements < 0 {
		return fmt.Errorf("counter increments and decrements must not be negative")
	}
	if c.Ticker.Interval.Duration <= 0 {
		return fmt.Errorf("ticker.interval must be positive, got %v", c.Ticker.Interval.Duration)
	}
	if c.Ticker.Ticks < 1 {
		return fmt.Errorf("ticker.ticks must be at least 1, got %d", c.Ticker.Ticks)
	}
	if c.Flaky.MaxFailures < 1 {
		return fmt.Errorf("flaky.max_failures must be at least 1, got %d", c.Flaky.MaxFailures)
	}
	if c.Flaky.Cooldown.Duration <= 0 {
		return fmt.Errorf("flaky.cooldown must be positive, got %v", c.Flaky.Cooldown.Duration)
	}
	return nil
}
