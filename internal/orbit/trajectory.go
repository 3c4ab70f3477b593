package orbit

import (
	"math"

	"github.com/san-kum/kepler/internal/dynamo"
	"github.com/san-kum/kepler/internal/kepler"
)

// Trajectory holds one sample per step, index 0 being the initial state.
type Trajectory struct {
	Method string
	Mass   float64
	Step   float64

	Times []float64
	X     []float64
	Y     []float64
	KE    []float64
	PE    []float64
	TE    []float64

	Final   dynamo.State
	Metrics map[string]float64
}

func newTrajectory(method string, m, h float64, n int) *Trajectory {
	return &Trajectory{
		Method:  method,
		Mass:    m,
		Step:    h,
		Times:   make([]float64, n),
		X:       make([]float64, n),
		Y:       make([]float64, n),
		KE:      make([]float64, n),
		PE:      make([]float64, n),
		TE:      make([]float64, n),
		Metrics: make(map[string]float64),
	}
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

// Columns returns time, x, y, kinetic, potential and total energy.
func (tr *Trajectory) Columns() (ts, xs, ys, kes, pes, tes []float64) {
	return tr.Times, tr.X, tr.Y, tr.KE, tr.PE, tr.TE
}

// MaxEnergyError is max |TE[i] - TE[0]| / |TE[0]|.
func (tr *Trajectory) MaxEnergyError() float64 {
	if tr.Len() == 0 || tr.TE[0] == 0 {
		return 0
	}
	e0 := tr.TE[0]
	worst := 0.0
	for _, e := range tr.TE {
		d := math.Abs(e-e0) / math.Abs(e0)
		if math.IsNaN(d) {
			return math.Inf(1)
		}
		worst = math.Max(worst, d)
	}
	return worst
}

// recorder fills a Trajectory as the simulator reports states.
type recorder struct {
	tr   *Trajectory
	next int
}

func (r *recorder) OnStep(z dynamo.State, t float64) {
	i := r.next
	if i >= r.tr.Len() {
		return
	}
	ke := kepler.KineticEnergy(z[2:4])
	pe := kepler.PotentialEnergy(z[0:2], r.tr.Mass)

	r.tr.Times[i] = t
	r.tr.X[i] = z[0]
	r.tr.Y[i] = z[1]
	r.tr.KE[i] = ke
	r.tr.PE[i] = pe
	r.tr.TE[i] = ke + pe
	r.tr.Final = z
	r.next++
}
