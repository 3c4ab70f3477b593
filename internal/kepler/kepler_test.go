package kepler

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/kepler/internal/dynamo"
)

func TestEnergies(t *testing.T) {
	tests := []struct {
		name       string
		z          dynamo.State
		m          float64
		ke, pe, te float64
	}{
		{"circular", dynamo.State{1, 0, 0, 1}, 1, 0.5, -1, -0.5},
		{"diagonal", dynamo.State{3, 4, 1, 2}, 10, 2.5, -2, 0.5},
		{"heavier", dynamo.State{0, 2, -0.5, 0}, 4, 0.125, -2, -1.875},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KineticEnergy(tt.z[2:4]); math.Abs(got-tt.ke) > 1e-15 {
				t.Errorf("KineticEnergy = %v, want %v", got, tt.ke)
			}
			if got := PotentialEnergy(tt.z[0:2], tt.m); math.Abs(got-tt.pe) > 1e-15 {
				t.Errorf("PotentialEnergy = %v, want %v", got, tt.pe)
			}
			if got := TotalEnergy(tt.z, tt.m); math.Abs(got-tt.te) > 1e-15 {
				t.Errorf("TotalEnergy = %v, want %v", got, tt.te)
			}
		})
	}
}

func TestPotentialEnergyAtOrigin(t *testing.T) {
	pe := PotentialEnergy([]float64{0, 0}, 1)
	if !math.IsInf(pe, -1) {
		t.Errorf("expected -Inf at the origin, got %v", pe)
	}
}

func TestDerivs(t *testing.T) {
	z := dynamo.State{3, 4, 0.1, -0.2}
	dz, err := Derivs(0, z, 2)
	if err != nil {
		t.Fatalf("Derivs: %v", err)
	}

	// |r| = 5 so a = -(2/125)·r.
	want := dynamo.State{0.1, -0.2, -2.0 * 3 / 125, -2.0 * 4 / 125}
	for i := range want {
		if math.Abs(dz[i]-want[i]) > 1e-15 {
			t.Errorf("dz[%d] = %v, want %v", i, dz[i], want[i])
		}
	}

	if z[0] != 3 || z[1] != 4 || z[2] != 0.1 || z[3] != -0.2 {
		t.Errorf("Derivs mutated its input: %v", z)
	}
}

func TestDerivsInverseSquare(t *testing.T) {
	for _, r := range []float64{0.5, 1, 2, 10} {
		dz, err := Derivs(0, dynamo.State{0, r, 0, 0}, 1)
		if err != nil {
			t.Fatal(err)
		}
		if got, want := -dz[3], 1/(r*r); math.Abs(got-want) > 1e-12 {
			t.Errorf("|a| at r=%v: got %v, want %v", r, got, want)
		}
		if dz[2] != 0 {
			t.Errorf("expected no x acceleration on the y axis, got %v", dz[2])
		}
	}
}

func TestDerivsIgnoresTime(t *testing.T) {
	z := dynamo.State{0.7, -0.3, 0.2, 0.9}
	a, _ := Derivs(0, z, 1)
	b, _ := Derivs(42, z, 1)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("component %d depends on t", i)
		}
	}
}

func TestDerivsSingular(t *testing.T) {
	dz, err := Derivs(0, dynamo.State{0, 0, 1, 0}, 1)
	if err != nil {
		t.Fatalf("a numeric singularity is not a contract error: %v", err)
	}
	if dz.IsValid() {
		t.Errorf("expected NaN/Inf acceleration at the origin, got %v", dz)
	}
}

func TestDerivsContract(t *testing.T) {
	if _, err := Derivs(0, dynamo.State{1, 0, 0}, 1); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("short state: expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := Derivs(0, dynamo.State{1, 0, 0, 1, 0}, 1); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("long state: expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := Derivs(0, dynamo.State{1, 0, 0, 1}); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("missing mass: expected ErrParameterBounds, got %v", err)
	}
}

func TestPureFunctionsAreRepeatable(t *testing.T) {
	z := dynamo.State{0.8123, -0.4471, 0.31, 1.07}
	m := 1.3

	if KineticEnergy(z[2:4]) != KineticEnergy(z[2:4]) {
		t.Error("KineticEnergy not repeatable")
	}
	if PotentialEnergy(z[0:2], m) != PotentialEnergy(z[0:2], m) {
		t.Error("PotentialEnergy not repeatable")
	}
	if TotalEnergy(z, m) != TotalEnergy(z, m) {
		t.Error("TotalEnergy not repeatable")
	}

	a, _ := Derivs(0, z, m)
	b, _ := Derivs(0, z, m)
	for i := range a {
		if math.Float64bits(a[i]) != math.Float64bits(b[i]) {
			t.Errorf("Derivs component %d not bit-identical", i)
		}
	}
}

func TestKeplerSystem(t *testing.T) {
	k := New(2)
	z := dynamo.State{1, 1, 0.5, -0.5}

	var _ dynamo.System = k
	var _ dynamo.Hamiltonian = k
	var _ dynamo.Rotational = k

	if k.StateDim() != 4 {
		t.Errorf("StateDim = %d", k.StateDim())
	}
	if k.Energy(z) != TotalEnergy(z, 2) {
		t.Error("Energy disagrees with TotalEnergy")
	}
	if got := k.AngularMomentum(z); got != -1 {
		t.Errorf("AngularMomentum = %v, want -1", got)
	}

	dz, err := k.Derive(0, z)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := Derivs(0, z, 2)
	for i := range want {
		if dz[i] != want[i] {
			t.Errorf("Derive[%d] = %v, want %v", i, dz[i], want[i])
		}
	}
}
