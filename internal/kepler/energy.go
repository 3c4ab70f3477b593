package kepler

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/kepler/internal/dynamo"
)

// KineticEnergy returns the kinetic energy per unit mass, 0.5·v·v.
func KineticEnergy(v []float64) float64 {
	return 0.5 * floats.Dot(v, v)
}

// PotentialEnergy returns the potential energy per unit mass, -m/|x|.
func PotentialEnergy(x []float64, m float64) float64 {
	return -m / floats.Norm(x, 2)
}

// TotalEnergy returns KE + PE for a state [x, y, vx, vy].
func TotalEnergy(z dynamo.State, m float64) float64 {
	return KineticEnergy(z[2:4]) + PotentialEnergy(z[0:2], m)
}

// AngularMomentum returns the specific angular momentum x·vy - y·vx.
func AngularMomentum(z dynamo.State) float64 {
	return z[0]*z[3] - z[1]*z[2]
}
