package kepler

import (
	"math"

	meeus "github.com/soniakeys/meeus/v3/kepler"
	"github.com/soniakeys/unit"

	"github.com/san-kum/kepler/internal/dynamo"
)

// MeanMotion returns n = sqrt(m/a³).
func (el Elements) MeanMotion() float64 {
	return math.Sqrt(el.M / (el.A * el.A * el.A))
}

// StateAt returns the exact state at time t of the orbit started by Initial.
// The body starts at apoapsis on +x, so periapsis lies on -x and the mean
// anomaly is π + n·t.
func (el Elements) StateAt(t float64) (dynamo.State, error) {
	if err := el.Validate(); err != nil {
		return nil, err
	}

	a, e := el.A, el.E
	n := el.MeanMotion()
	mean := math.Mod(math.Pi+n*t, 2*math.Pi)
	if mean < 0 {
		mean += 2 * math.Pi
	}

	ecc := float64(meeus.Kepler3(e, unit.Angle(mean)))
	sinE, cosE := math.Sincos(ecc)
	b := a * math.Sqrt(1-e*e)
	rate := n / (1 - e*cosE)

	// Perifocal (p toward periapsis, q along the motion at periapsis),
	// rotated by π into the x-y frame.
	p, q := a*(cosE-e), b*sinE
	dp, dq := -a*sinE*rate, b*cosE*rate
	return dynamo.State{-p, -q, -dp, -dq}, nil
}

// ExactPath returns the exact x and y at each of ts.
func (el Elements) ExactPath(ts []float64) (xs, ys []float64, err error) {
	xs = make([]float64, len(ts))
	ys = make([]float64, len(ts))
	for i, t := range ts {
		z, err := el.StateAt(t)
		if err != nil {
			return nil, nil, err
		}
		xs[i], ys[i] = z[0], z[1]
	}
	return xs, ys, nil
}
