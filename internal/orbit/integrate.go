package orbit

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/kepler/internal/dynamo"
	"github.com/san-kum/kepler/internal/integrators"
	"github.com/san-kum/kepler/internal/kepler"
	"github.com/san-kum/kepler/internal/metrics"
	"github.com/san-kum/kepler/internal/sim"
)

// IntegrateOrbit integrates z0 under mass m from t=0 to tend with fixed step
// h using the named stepper ("Euler", "RK2" or "RK4"). The trajectory has
// floor(tend/h)+1 samples.
func IntegrateOrbit(z0 dynamo.State, m, tend, h float64, method string) (*Trajectory, error) {
	return IntegrateOrbitContext(context.Background(), z0, m, tend, h, method)
}

// IntegrateOrbitContext is IntegrateOrbit with cancellation checked between
// steps.
func IntegrateOrbitContext(ctx context.Context, z0 dynamo.State, m, tend, h float64, method string) (*Trajectory, error) {
	if err := validate(z0, m, tend, h); err != nil {
		return nil, err
	}

	integ, err := integrators.Lookup(method)
	if err != nil {
		return nil, fmt.Errorf("select stepper: %w", err)
	}

	dyn := kepler.New(m)
	s := sim.New(dyn, integ)

	tr := newTrajectory(method, m, h, dynamo.Steps(tend, h)+1)
	s.AddObserver(&recorder{tr: tr})
	s.AddMetric(metrics.NewEnergyDrift(dyn))
	s.AddMetric(metrics.NewMomentumDrift(dyn))

	result, err := s.Run(ctx, z0, dynamo.Config{Dt: h, Duration: tend})
	if err != nil {
		return nil, fmt.Errorf("integrate orbit with %s: %w", method, err)
	}

	for name, v := range result.Metrics {
		tr.Metrics[name] = v
	}
	return tr, nil
}

func validate(z0 dynamo.State, m, tend, h float64) error {
	if len(z0) != kepler.StateDim {
		return fmt.Errorf("initial state has %d components, want %d: %w", len(z0), kepler.StateDim, dynamo.ErrDimensionMismatch)
	}
	if !(m > 0) || math.IsInf(m, 0) {
		return fmt.Errorf("mass must be finite and positive, got %g: %w", m, dynamo.ErrParameterBounds)
	}
	if err := dynamo.CheckSpan(tend, h); err != nil {
		return fmt.Errorf("end time %g, step %g: %w", tend, h, err)
	}
	return nil
}
