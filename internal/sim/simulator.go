package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/kepler/internal/dynamo"
)

// Simulator advances a System with a fixed-step Integrator, feeding every
// recorded state to the attached metrics and observers.
type Simulator struct {
	dyn        dynamo.System
	integrator dynamo.Integrator
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
}

func New(dyn dynamo.System, integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Run integrates from t=0 for floor(Duration/Dt) steps. Time advances by
// repeated addition of Dt. A failing step aborts the run and returns the
// partial result together with a *dynamo.SimulationError.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := s.validate(x0, cfg); err != nil {
		return nil, err
	}

	steps := dynamo.Steps(cfg.Duration, cfg.Dt)
	result := &dynamo.Result{
		States:  make([]dynamo.State, 0, steps+1),
		Times:   make([]float64, 0, steps+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt
	f := s.rhs()

	s.record(result, x, t)
	initialEnergy := s.computeEnergy(x)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		newX, err := s.integrator.Step(f, t, x, dt)
		if err != nil {
			return result, &dynamo.SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: err}
		}

		if cfg.ValidateState && !newX.IsValid() {
			return result, &dynamo.SimulationError{Step: i + 1, Time: t + dt, State: newX, Wrapped: dynamo.ErrInvalidState}
		}

		x = newX
		t += dt
		result.StepsTaken++
		s.record(result, x, t)
	}

	finalEnergy := s.computeEnergy(x)
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) rhs() dynamo.Func {
	return func(t float64, z dynamo.State, _ ...float64) (dynamo.State, error) {
		return s.dyn.Derive(t, z)
	}
}

func (s *Simulator) record(result *dynamo.Result, x dynamo.State, t float64) {
	result.States = append(result.States, x)
	result.Times = append(result.Times, t)
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(x, t)
	}
}

func (s *Simulator) validate(x0 dynamo.State, cfg dynamo.Config) error {
	if err := dynamo.CheckSpan(cfg.Duration, cfg.Dt); err != nil {
		return err
	}
	if len(x0) != s.dyn.StateDim() {
		return fmt.Errorf("initial state has %d components, system has %d: %w", len(x0), s.dyn.StateDim(), dynamo.ErrDimensionMismatch)
	}
	return nil
}

func (s *Simulator) computeEnergy(x dynamo.State) float64 {
	if ec, ok := s.dyn.(dynamo.Hamiltonian); ok {
		return ec.Energy(x)
	}
	return 0
}
