// Package dynamo provides core primitives for fixed-step ODE integration.
//
// The package defines the fundamental contracts shared by the numerical core:
//
//   - [State]: vector representing system state
//   - [Func]: right-hand side of dz/dt = f(t, z, args...)
//   - [Integrator]: single-step advance of a state under a [Func]
//   - [System]: an ODE system that can be simulated
//
// # Example
//
//	integ, _ := integrators.Lookup("RK4")
//	z1, err := integ.Step(kepler.Derivs, 0, z0, 0.01, m)
//
// # Thread Safety
//
// States are plain slices and are never mutated by the integrators; every
// step returns a freshly allocated [State]. Integrators hold no state and may
// be shared between goroutines.
package dynamo
