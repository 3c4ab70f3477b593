// Package viz renders orbit integrations in the terminal.
//
//   - [Canvas]: Braille-based pixel canvas, 2x4 dots per character cell
//   - [OrbitCanvas]: the x-y path of a trajectory around the central mass
//   - [EnergyPlot], [EnergyErrorPlot], [PositionPlot]: asciigraph charts
//   - [Summary]: styled key/value report of a run
//   - [Live]: Bubble Tea program that integrates and draws an orbit in real time
//
// # Key Bindings (Live)
//
//	Space - Pause/Resume
//	R     - Reset to initial state
//	+/-   - More/fewer steps per frame
//	Q     - Quit
package viz
