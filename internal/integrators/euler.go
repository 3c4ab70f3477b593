package integrators

import (
	"fmt"

	"github.com/san-kum/kepler/internal/dynamo"
)

// Euler is the explicit forward Euler method, z + h·f(t, z).
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Order() int { return 1 }

func (e *Euler) Step(f dynamo.Func, t float64, z dynamo.State, h float64, args ...float64) (dynamo.State, error) {
	dz, err := derive(f, t, z, args)
	if err != nil {
		return nil, err
	}
	return z.AddScaled(h, dz), nil
}

// derive evaluates f and checks the derivative has the shape of z.
func derive(f dynamo.Func, t float64, z dynamo.State, args []float64) (dynamo.State, error) {
	dz, err := f(t, z, args...)
	if err != nil {
		return nil, err
	}
	if len(dz) != len(z) {
		return nil, fmt.Errorf("derivative has %d components, state has %d: %w", len(dz), len(z), dynamo.ErrDimensionMismatch)
	}
	return dz, nil
}
