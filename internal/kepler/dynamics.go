package kepler

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/kepler/internal/dynamo"
)

const StateDim = 4

// Derivs is the two-body right-hand side. The total mass m is passed as the
// first extra argument; t is unused since the system is autonomous.
//
//	dz/dt = [vx, vy, -m·x/|r|³, -m·y/|r|³]
func Derivs(t float64, z dynamo.State, args ...float64) (dynamo.State, error) {
	if len(z) != StateDim {
		return nil, fmt.Errorf("kepler state has %d components, want %d: %w", len(z), StateDim, dynamo.ErrDimensionMismatch)
	}
	if len(args) < 1 {
		return nil, fmt.Errorf("kepler derivs needs the mass argument: %w", dynamo.ErrParameterBounds)
	}
	m := args[0]

	r := z[0:2]
	rabs := floats.Norm(r, 2)
	k := -m / (rabs * rabs * rabs)

	return dynamo.State{z[2], z[3], k * r[0], k * r[1]}, nil
}

// Kepler binds a total mass to the two-body equations so the problem can
// be run through the generic simulator.
type Kepler struct {
	Mass float64
}

func New(m float64) *Kepler {
	return &Kepler{Mass: m}
}

func (k *Kepler) StateDim() int { return StateDim }

func (k *Kepler) Derive(t float64, x dynamo.State) (dynamo.State, error) {
	return Derivs(t, x, k.Mass)
}

func (k *Kepler) Energy(x dynamo.State) float64 {
	return TotalEnergy(x, k.Mass)
}

func (k *Kepler) AngularMomentum(x dynamo.State) float64 {
	return AngularMomentum(x)
}
