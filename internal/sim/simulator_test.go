package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/kepler/internal/dynamo"
)

type testDynamics struct{}

func (d *testDynamics) Derive(t float64, x dynamo.State) (dynamo.State, error) {
	return dynamo.State{-x[0]}, nil
}

func (d *testDynamics) StateDim() int { return 1 }

func (d *testDynamics) Energy(x dynamo.State) float64 { return 0.5 * x[0] * x[0] }

type testIntegrator struct{}

func (i *testIntegrator) Order() int { return 1 }

func (i *testIntegrator) Step(f dynamo.Func, t float64, x dynamo.State, dt float64, args ...float64) (dynamo.State, error) {
	dx, err := f(t, x, args...)
	if err != nil {
		return nil, err
	}
	return dynamo.State{x[0] + dt*dx[0]}, nil
}

type failingDynamics struct {
	testDynamics
	after int
	calls int
}

var errBlowUp = errors.New("blow up")

func (d *failingDynamics) Derive(t float64, x dynamo.State) (dynamo.State, error) {
	d.calls++
	if d.calls > d.after {
		return nil, errBlowUp
	}
	return d.testDynamics.Derive(t, x)
}

func TestSimulatorRun(t *testing.T) {
	sim := New(&testDynamics{}, &testIntegrator{})

	cfg := dynamo.Config{
		Dt:       0.1,
		Duration: 1.0,
	}

	result, err := sim.Run(context.Background(), dynamo.State{1.0}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 11 {
		t.Errorf("expected 11 states, got %d", len(result.States))
	}

	if len(result.Times) != 11 {
		t.Errorf("expected 11 times, got %d", len(result.Times))
	}

	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}

	finalState := result.States[len(result.States)-1][0]
	expected := math.Pow(0.9, 10)
	if math.Abs(finalState-expected) > 1e-12 {
		t.Errorf("expected final state %.6f, got %.6f", expected, finalState)
	}

	if result.EnergyDrift <= 0 {
		t.Error("expected non-zero energy drift for a decaying system")
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(&testDynamics{}, &testIntegrator{})

	tests := []struct {
		name string
		x0   dynamo.State
		cfg  dynamo.Config
		want error
	}{
		{"zero dt", dynamo.State{1}, dynamo.Config{Dt: 0, Duration: 1.0}, dynamo.ErrParameterBounds},
		{"negative dt", dynamo.State{1}, dynamo.Config{Dt: -0.1, Duration: 1.0}, dynamo.ErrParameterBounds},
		{"zero duration", dynamo.State{1}, dynamo.Config{Dt: 0.1, Duration: 0}, dynamo.ErrParameterBounds},
		{"negative duration", dynamo.State{1}, dynamo.Config{Dt: 0.1, Duration: -1.0}, dynamo.ErrParameterBounds},
		{"wrong dimension", dynamo.State{1, 2}, dynamo.Config{Dt: 0.1, Duration: 1.0}, dynamo.ErrDimensionMismatch},
		{"infinite duration", dynamo.State{1}, dynamo.Config{Dt: 0.1, Duration: math.Inf(1)}, dynamo.ErrParameterBounds},
		{"NaN dt", dynamo.State{1}, dynamo.Config{Dt: math.NaN(), Duration: 1.0}, dynamo.ErrParameterBounds},
		{"too many steps", dynamo.State{1}, dynamo.Config{Dt: 1e-3, Duration: 1e20}, dynamo.ErrParameterBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.x0, tt.cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSimulatorStepError(t *testing.T) {
	dyn := &failingDynamics{after: 3}
	sim := New(dyn, &testIntegrator{})

	result, err := sim.Run(context.Background(), dynamo.State{1}, dynamo.Config{Dt: 0.1, Duration: 1})
	if !errors.Is(err, errBlowUp) {
		t.Fatalf("expected wrapped RHS error, got %v", err)
	}

	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected *dynamo.SimulationError, got %T", err)
	}
	if simErr.Step != 3 {
		t.Errorf("expected failure at step 3, got %d", simErr.Step)
	}
	if len(result.States) != 4 {
		t.Errorf("expected 4 recorded states before the failure, got %d", len(result.States))
	}
}

func TestSimulatorCanceled(t *testing.T) {
	sim := New(&testDynamics{}, &testIntegrator{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.Run(ctx, dynamo.State{1}, dynamo.Config{Dt: 0.1, Duration: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (m *testMetric) Name() string { return "test" }
func (m *testMetric) Observe(x dynamo.State, t float64) {
	m.count++
	m.sum += x[0]
}
func (m *testMetric) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
func (m *testMetric) Reset() {
	m.count = 0
	m.sum = 0
}

type countingObserver struct{ times []float64 }

func (o *countingObserver) OnStep(x dynamo.State, t float64) { o.times = append(o.times, t) }

func TestSimulatorMetrics(t *testing.T) {
	sim := New(&testDynamics{}, &testIntegrator{})

	metric := &testMetric{}
	obs := &countingObserver{}
	sim.AddMetric(metric)
	sim.AddObserver(obs)

	cfg := dynamo.Config{Dt: 0.1, Duration: 1.0}
	result, err := sim.Run(context.Background(), dynamo.State{1.0}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}

	if metric.count != 11 {
		t.Errorf("expected 11 observations, got %d", metric.count)
	}

	if len(obs.times) != 11 || obs.times[0] != 0 {
		t.Errorf("observer saw %v", obs.times)
	}
}
