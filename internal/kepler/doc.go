// Package kepler provides the planar two-body problem in reduced units (G = 1).
//
// The state vector is z = [x, y, vx, vy]. The package supplies the
// right-hand side [Derivs] for use with any [dynamo.Integrator], the
// per-unit-mass energies used as diagnostics, and synthesis of initial
// conditions from orbital elements:
//
//	z0, eps0, period, err := kepler.SetInitialConditions(1, 1, 0.5)
//	integ, _ := integrators.Lookup("RK4")
//	z1, err := integ.Step(kepler.Derivs, 0, z0, period/1000, 1)
//
// # Singularities
//
// Nothing here guards against |r| = 0. The potential evaluates to -Inf and
// the acceleration to NaN, and those values flow back to the caller.
package kepler
