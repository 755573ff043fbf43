// Package config handles run configuration: defaults, YAML files,
// positional counts and validation.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"csmc/internal/center"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultMaxWork and DefaultMaxHelp bound the random work and help
	// durations, in time units.
	DefaultMaxWork = 3
	DefaultMaxHelp = 3
	DefaultUnit    = time.Second
)

// Config is the root configuration structure.
type Config struct {
	Center  CenterConfig `yaml:"center"`
	Timing  TimingConfig `yaml:"timing"`
	Pairing string       `yaml:"pairing,omitempty"`
}

// CenterConfig holds the four counts a run is invoked with.
type CenterConfig struct {
	Students int `yaml:"students"`
	Tutors   int `yaml:"tutors"`
	Seats    int `yaml:"seats"`
	Helps    int `yaml:"helps"`
}

// TimingConfig controls simulated durations and randomness.
type TimingConfig struct {
	MaxWork     int           `yaml:"max_work"`
	MaxHelp     int           `yaml:"max_help"`
	Unit        time.Duration `yaml:"unit"`
	Seed        uint64        `yaml:"seed"`
	ArrivalRate int           `yaml:"arrival_rate"` // seat attempts per second, 0 = unlimited
}

// ValidationError reports a configuration value the simulation cannot run with.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s (got %s)", e.Field, e.Reason, e.Value)
}

// Default returns a Config with timing defaults and no counts set.
func Default() *Config {
	return &Config{
		Timing: TimingConfig{
			MaxWork: DefaultMaxWork,
			MaxHelp: DefaultMaxHelp,
			Unit:    DefaultUnit,
		},
		Pairing: string(center.PairingAnonymous),
	}
}

// LoadConfig reads a YAML configuration file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// Write encodes cfg as YAML.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}

// ParseCounts parses the positional students, tutors, seats and helps.
func ParseCounts(args []string) (CenterConfig, error) {
	if len(args) != 4 {
		return CenterConfig{}, fmt.Errorf("expected 4 counts, got %d", len(args))
	}
	names := [4]string{"students", "tutors", "seats", "helps"}
	var vals [4]int
	for i, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return CenterConfig{}, &ValidationError{Field: names[i], Value: strconv.Quote(arg), Reason: "must be an integer"}
		}
		vals[i] = n
	}
	return CenterConfig{Students: vals[0], Tutors: vals[1], Seats: vals[2], Helps: vals[3]}, nil
}

// Validate rejects configurations that cannot terminate: every count must
// be positive, so a run with no tutors or no seats is refused up front.
func (c *Config) Validate() error {
	var errs []error
	positive := func(field string, v int) {
		if v <= 0 {
			errs = append(errs, &ValidationError{Field: field, Value: strconv.Itoa(v), Reason: "must be positive"})
		}
	}

	positive("center.students", c.Center.Students)
	positive("center.tutors", c.Center.Tutors)
	positive("center.seats", c.Center.Seats)
	positive("center.helps", c.Center.Helps)
	positive("timing.max_work", c.Timing.MaxWork)
	positive("timing.max_help", c.Timing.MaxHelp)

	if c.Timing.Unit <= 0 {
		errs = append(errs, &ValidationError{Field: "timing.unit", Value: c.Timing.Unit.String(), Reason: "must be positive"})
	}
	if c.Timing.ArrivalRate < 0 {
		errs = append(errs, &ValidationError{Field: "timing.arrival_rate", Value: strconv.Itoa(c.Timing.ArrivalRate), Reason: "must not be negative"})
	}
	if _, err := center.ParsePairing(c.Pairing); err != nil {
		errs = append(errs, &ValidationError{Field: "pairing", Value: strconv.Quote(c.Pairing), Reason: "must be anonymous or ticket"})
	}

	return errors.Join(errs...)
}

// PairingMode returns the validated pairing, defaulting to anonymous.
func (c *Config) PairingMode() center.Pairing {
	p, err := center.ParsePairing(c.Pairing)
	if err != nil {
		return center.PairingAnonymous
	}
	return p
}
