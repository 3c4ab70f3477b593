package kepler

import (
	"fmt"
	"math"

	"github.com/san-kum/kepler/internal/dynamo"
)

// Elements are the orbital elements of a bound orbit: semi-major axis A,
// total mass M and eccentricity E.
type Elements struct {
	A float64 `yaml:"a" json:"a"`
	M float64 `yaml:"m" json:"m"`
	E float64 `yaml:"e" json:"e"`
}

// Initial is the starting point of an orbit derived from its elements.
type Initial struct {
	Z0     dynamo.State
	Energy float64
	Period float64
}

func (el Elements) Validate() error {
	if !(el.A > 0) || math.IsInf(el.A, 0) {
		return fmt.Errorf("semi-major axis must be finite and positive, got %g: %w", el.A, dynamo.ErrParameterBounds)
	}
	if !(el.M > 0) || math.IsInf(el.M, 0) {
		return fmt.Errorf("mass must be finite and positive, got %g: %w", el.M, dynamo.ErrParameterBounds)
	}
	if !(el.E >= 0 && el.E < 1) {
		return fmt.Errorf("eccentricity must be in [0, 1), got %g: %w", el.E, dynamo.ErrParameterBounds)
	}
	return nil
}

// Initial places the body at x0 = a(1+e) on the x axis moving in +y, with
// the speed fixed by the orbital energy -m/(2a).
func (el Elements) Initial() (Initial, error) {
	if err := el.Validate(); err != nil {
		return Initial{}, err
	}

	a, m, e := el.A, el.M, el.E
	eps0 := -m / (2 * a)
	period := (math.Pi / math.Sqrt2) * m * math.Pow(math.Abs(eps0), -1.5)

	x0 := a * (1 + e)
	vy0 := math.Sqrt(2*eps0 + 2*m/x0)

	return Initial{
		Z0:     dynamo.State{x0, 0, 0, vy0},
		Energy: eps0,
		Period: period,
	}, nil
}

// SetInitialConditions returns the starting state, specific orbital energy
// and period for semi-major axis a, mass m and eccentricity e.
func SetInitialConditions(a, m, e float64) (dynamo.State, float64, float64, error) {
	init, err := Elements{A: a, M: m, E: e}.Initial()
	if err != nil {
		return nil, 0, 0, err
	}
	return init.Z0, init.Energy, init.Period, nil
}

// ElementsFromState recovers a and e from a state using the specific energy
// and angular momentum. Unbound states (energy >= 0) are rejected.
func ElementsFromState(z dynamo.State, m float64) (Elements, error) {
	if len(z) != StateDim {
		return Elements{}, fmt.Errorf("kepler state has %d components, want %d: %w", len(z), StateDim, dynamo.ErrDimensionMismatch)
	}
	if !(m > 0) {
		return Elements{}, fmt.Errorf("mass must be positive, got %g: %w", m, dynamo.ErrParameterBounds)
	}

	eps := TotalEnergy(z, m)
	if !(eps < 0) {
		return Elements{}, fmt.Errorf("orbit is not bound (energy %g): %w", eps, dynamo.ErrParameterBounds)
	}

	l := AngularMomentum(z)
	e2 := 1 + 2*eps*l*l/(m*m)
	if e2 < 0 {
		e2 = 0
	}

	return Elements{A: -m / (2 * eps), M: m, E: math.Sqrt(e2)}, nil
}
