package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/kepler/internal/dynamo"
	"github.com/san-kum/kepler/internal/integrators"
	"github.com/san-kum/kepler/internal/kepler"
)

const (
	DefaultMethod         = "RK4"
	DefaultA              = 1.0
	DefaultM              = 1.0
	DefaultE              = 0.0
	DefaultPeriods        = 1.0
	DefaultStepsPerPeriod = 1000
)

// Config describes one orbit run. The step is either given directly or
// derived from StepsPerPeriod; the span is either TEnd or Periods orbits.
type Config struct {
	Method         string          `yaml:"method"`
	Elements       kepler.Elements `yaml:"elements"`
	Step           float64         `yaml:"step,omitempty"`
	StepsPerPeriod int             `yaml:"steps_per_period,omitempty"`
	TEnd           float64         `yaml:"tend,omitempty"`
	Periods        float64         `yaml:"periods,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Method: DefaultMethod,
		Elements: kepler.Elements{
			A: DefaultA,
			M: DefaultM,
			E: DefaultE,
		},
		StepsPerPeriod: DefaultStepsPerPeriod,
		Periods:        DefaultPeriods,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

func (c *Config) Validate() error {
	if _, err := integrators.Lookup(c.Method); err != nil {
		return err
	}
	if err := c.Elements.Validate(); err != nil {
		return err
	}
	if !(c.Step >= 0) || math.IsInf(c.Step, 0) || (c.Step == 0 && c.StepsPerPeriod <= 0) {
		return fmt.Errorf("need a finite positive step or steps_per_period: %w", dynamo.ErrParameterBounds)
	}
	if !(c.TEnd >= 0) || math.IsInf(c.TEnd, 0) || (c.TEnd == 0 && !(c.Periods > 0 && !math.IsInf(c.Periods, 0))) {
		return fmt.Errorf("need a finite positive tend or periods: %w", dynamo.ErrParameterBounds)
	}
	return nil
}

// Plan is a validated run ready for the orbit driver.
type Plan struct {
	Method string
	Mass   float64
	Z0     dynamo.State
	Energy float64
	Period float64
	TEnd   float64
	Step   float64
}

// Plan validates c and resolves the initial state, step size and end time.
// An explicit Step or TEnd takes precedence over the per-period settings.
func (c *Config) Plan() (*Plan, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	init, err := c.Elements.Initial()
	if err != nil {
		return nil, err
	}

	p := &Plan{
		Method: c.Method,
		Mass:   c.Elements.M,
		Z0:     init.Z0,
		Energy: init.Energy,
		Period: init.Period,
		TEnd:   c.TEnd,
		Step:   c.Step,
	}
	if p.Step == 0 {
		p.Step = init.Period / float64(c.StepsPerPeriod)
	}
	if p.TEnd == 0 {
		p.TEnd = c.Periods * init.Period
	}
	if err := dynamo.CheckSpan(p.TEnd, p.Step); err != nil {
		return nil, err
	}
	return p, nil
}
