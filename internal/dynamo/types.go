package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	if len(s) == 0 {
		return 0
	}
	return floats.Norm(s, 2)
}

// Sub and AddScaled panic when the lengths differ; callers check
// dimensions first.
func (s State) Sub(other State) State {
	return floats.SubTo(make(State, len(s)), s, other)
}

// AddScaled returns s + alpha*k.
func (s State) AddScaled(alpha float64, k State) State {
	return floats.AddScaledTo(make(State, len(s)), s, alpha, k)
}

// Func is the right-hand side of dz/dt = f(t, z, args...). The returned
// derivative must have the same length as z.
type Func func(t float64, z State, args ...float64) (State, error)

// Integrator advances z by one fixed step h. Implementations must not
// mutate z and must return any error produced by f unchanged.
type Integrator interface {
	Step(f Func, t float64, z State, h float64, args ...float64) (State, error)
	Order() int
}

type System interface {
	Derive(t float64, x State) (State, error)
	StateDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Rotational interface {
	AngularMomentum(x State) float64
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

type Config struct {
	Dt            float64
	Duration      float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      10.0,
		ValidateState: true,
	}
}

type Result struct {
	States      []State
	Times       []float64
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
}

// MaxSteps bounds the number of fixed steps in one run.
const MaxSteps = 100_000_000

// Steps returns floor(duration/dt), the number of fixed steps needed to
// cover duration. Callers check the span with CheckSpan first.
func Steps(duration, dt float64) int {
	return int(math.Floor(duration / dt))
}

// CheckSpan rejects a duration or step that is not finite and positive, and
// spans that need more than MaxSteps steps.
func CheckSpan(duration, dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("step must be finite and positive, got %g: %w", dt, ErrParameterBounds)
	}
	if !(duration > 0) || math.IsInf(duration, 0) {
		return fmt.Errorf("duration must be finite and positive, got %g: %w", duration, ErrParameterBounds)
	}
	if n := math.Floor(duration / dt); n > MaxSteps {
		return fmt.Errorf("duration %g with step %g needs %g steps, limit %d: %w", duration, dt, n, MaxSteps, ErrParameterBounds)
	}
	return nil
}
