package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/kepler/internal/config"
	"github.com/san-kum/kepler/internal/dynamo"
	"github.com/san-kum/kepler/internal/integrators"
	"github.com/san-kum/kepler/internal/kepler"
	"github.com/san-kum/kepler/internal/metrics"
	"github.com/san-kum/kepler/internal/orbit"
	"github.com/san-kum/kepler/internal/sim"
)

// Scenario is a scripted batch of orbit runs.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Workers     int           `yaml:"workers"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun starts from a preset (or the defaults) and overrides any field
// that is set.
type ScenarioRun struct {
	Name           string           `yaml:"name"`
	Preset         string           `yaml:"preset"`
	Method         string           `yaml:"method"`
	Elements       *kepler.Elements `yaml:"elements"`
	Step           float64          `yaml:"step"`
	StepsPerPeriod int              `yaml:"steps_per_period"`
	TEnd           float64          `yaml:"tend"`
	Periods        float64          `yaml:"periods"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("scenario %s has no runs", path)
	}

	return &scenario, nil
}

// Config resolves the run against its preset.
func (r ScenarioRun) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if r.Preset != "" {
		cfg = config.GetPreset(r.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", r.Preset)
		}
	}

	if r.Method != "" {
		cfg.Method = r.Method
	}
	if r.Elements != nil {
		cfg.Elements = *r.Elements
	}
	if r.StepsPerPeriod > 0 {
		cfg.StepsPerPeriod = r.StepsPerPeriod
		cfg.Step = 0
	}
	if r.Step > 0 {
		cfg.Step = r.Step
	}
	if r.Periods > 0 {
		cfg.Periods = r.Periods
		cfg.TEnd = 0
	}
	if r.TEnd > 0 {
		cfg.TEnd = r.TEnd
	}
	return cfg, nil
}

// Jobs resolves every run into an orbit job. Unnamed runs are called
// run1, run2, ...
func (s *Scenario) Jobs() ([]orbit.Job, error) {
	jobs := make([]orbit.Job, 0, len(s.Runs))
	for i, r := range s.Runs {
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("run%d", i+1)
		}

		cfg, err := r.Config()
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", name, err)
		}
		plan, err := cfg.Plan()
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", name, err)
		}

		jobs = append(jobs, orbit.Job{
			Name:   name,
			Z0:     plan.Z0,
			Mass:   plan.Mass,
			TEnd:   plan.TEnd,
			Step:   plan.Step,
			Method: plan.Method,
		})
	}
	return jobs, nil
}

// RunScenario executes all runs concurrently. Trajectories are index-aligned
// with the returned jobs.
func RunScenario(ctx context.Context, scenario *Scenario) ([]orbit.Job, []*orbit.Trajectory, error) {
	jobs, err := scenario.Jobs()
	if err != nil {
		return nil, nil, err
	}

	results, err := orbit.Sweep(ctx, jobs, scenario.Workers)
	if err != nil {
		return jobs, nil, err
	}
	return jobs, results, nil
}

// MonteCarloConfig perturbs the initial velocity of one orbit.
type MonteCarloConfig struct {
	Elements       kepler.Elements
	Method         string
	Perturbation   float64 // relative, each velocity component scaled by 1 ± Perturbation
	NumTrials      int
	Periods        float64
	StepsPerPeriod int
	Radius         float64 // escape radius, 10a when zero
	Seed           int64
}

// MonteCarloResult holds the outcome of one perturbed trial.
type MonteCarloResult struct {
	TrialID    int
	InitState  dynamo.State
	FinalState dynamo.State
	Energy     float64
	Stability  float64
	Stable     bool // every sample stayed finite and inside Radius
}

// RunMonteCarlo executes NumTrials runs with random velocity perturbations.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	init, err := cfg.Elements.Initial()
	if err != nil {
		return nil, err
	}
	integ, err := integrators.Lookup(cfg.Method)
	if err != nil {
		return nil, err
	}
	if cfg.NumTrials <= 0 || cfg.StepsPerPeriod <= 0 || !(cfg.Periods > 0) {
		return nil, fmt.Errorf("need positive trials, steps per period and periods: %w", dynamo.ErrParameterBounds)
	}

	radius := cfg.Radius
	if radius <= 0 {
		radius = 10 * cfg.Elements.A
	}
	m := cfg.Elements.M
	h := init.Period / float64(cfg.StepsPerPeriod)
	runCfg := dynamo.Config{Dt: h, Duration: cfg.Periods * init.Period}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	dyn := kepler.New(m)
	stability := metrics.NewStability(radius)
	s := sim.New(dyn, integ)
	s.AddMetric(stability)

	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	for trial := 0; trial < cfg.NumTrials; trial++ {
		z0 := init.Z0.Clone()
		for i := 2; i < kepler.StateDim; i++ {
			z0[i] *= 1 + (rng.Float64()-0.5)*2*cfg.Perturbation
		}

		result, err := s.Run(ctx, z0, runCfg)
		if err != nil {
			return results, fmt.Errorf("trial %d: %w", trial, err)
		}

		value := result.Metrics[stability.Name()]
		results = append(results, MonteCarloResult{
			TrialID:    trial,
			InitState:  z0,
			FinalState: result.States[len(result.States)-1],
			Energy:     kepler.TotalEnergy(z0, m),
			Stability:  value,
			Stable:     value == 1 && !math.IsNaN(value),
		})
	}

	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
