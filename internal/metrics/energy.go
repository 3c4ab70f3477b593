package metrics

import (
	"math"

	"github.com/san-kum/kepler/internal/dynamo"
)

// EnergyDrift tracks the largest relative deviation of a Hamiltonian
// system's energy from its value at the first observed sample.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
	dyn           dynamo.System
}

func NewEnergyDrift(dyn dynamo.System) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		dyn:  dyn,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x dynamo.State, t float64) {
	ec, ok := e.dyn.(dynamo.Hamiltonian)
	if !ok {
		return
	}

	energy := ec.Energy(x)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = maxDrift(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift is the angular momentum counterpart of EnergyDrift.
type MomentumDrift struct {
	initial  float64
	maxDrift float64
	samples  int
	dyn      dynamo.System
}

func NewMomentumDrift(dyn dynamo.System) *MomentumDrift {
	return &MomentumDrift{dyn: dyn}
}

func (m *MomentumDrift) Name() string { return "momentum_drift" }

func (m *MomentumDrift) Observe(x dynamo.State, t float64) {
	rot, ok := m.dyn.(dynamo.Rotational)
	if !ok {
		return
	}

	l := rot.AngularMomentum(x)
	if m.samples == 0 {
		m.initial = l
	}
	m.samples++

	if m.initial != 0 {
		m.maxDrift = maxDrift(m.maxDrift, math.Abs(l-m.initial)/math.Abs(m.initial))
	}
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}

// maxDrift treats an undefined drift as unbounded so a singular run
// reports +Inf rather than NaN.
func maxDrift(cur, drift float64) float64 {
	if math.IsNaN(drift) {
		return math.Inf(1)
	}
	return math.Max(cur, drift)
}
