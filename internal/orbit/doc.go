// Package orbit drives fixed-step integration of two-body orbits.
//
// [IntegrateOrbit] selects a stepper by name, advances the state with
// [kepler.Derivs] bound to the total mass and records the trajectory as six
// index-aligned columns (time, x, y, kinetic, potential and total energy):
//
//	z0, _, period, _ := kepler.SetInitialConditions(1, 1, 0.5)
//	tr, err := orbit.IntegrateOrbit(z0, 1, period, period/10000, "RK4")
//	ts, xs, ys, kes, pes, tes := tr.Columns()
//
// Every call is self-contained. [Sweep] runs independent orbits concurrently.
package orbit
