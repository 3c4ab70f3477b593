// Package optim searches parameter grids, chiefly for the coarsest step
// size that keeps an orbit's energy error within a tolerance.
package optim
