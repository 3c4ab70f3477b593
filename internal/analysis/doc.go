// Package analysis provides diagnostics for fixed-step integrations.
//
//   - [Richardson] and [ConvergenceOrder]: empirical order of a stepper by
//     repeated step halving
//   - [PeriodFromCrossings]: period from upward zero crossings of a signal
//   - [DominantPeriod]: period of the strongest spectral peak
//   - [PowerSpectrum]: one-sided amplitude spectrum
//
// # Convergence
//
// A stepper of order p shrinks its global error by 2^p when h is halved:
//
//	integ, _ := integrators.Lookup("RK4")
//	p, _ := analysis.ConvergenceOrder(integ, f, z0, 1.0, 16)
//	// p ≈ 4
package analysis
