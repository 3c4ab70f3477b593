// Package automation runs batches of orbits: YAML scenarios executed
// concurrently through orbit.Sweep, and Monte Carlo trials that perturb the
// initial velocity and check whether the orbit stays inside an escape radius.
package automation
