package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/kepler/internal/dynamo"
)

var ErrInsufficientData = errors.New("analysis: not enough data")

// Level is one refinement of a Richardson sequence. Diff is the distance
// between the solutions with Steps and 2*Steps steps; Order compares Diff
// with the previous level and is NaN on the first one.
type Level struct {
	Steps int
	H     float64
	Diff  float64
	Order float64
}

// Richardson integrates f from 0 to tEnd with steps, 2·steps, … 2^levels·steps
// fixed steps and reports how the difference between successive solutions
// shrinks.
func Richardson(integ dynamo.Integrator, f dynamo.Func, z0 dynamo.State, tEnd float64, steps, levels int, args ...float64) ([]Level, error) {
	if steps <= 0 || levels < 2 {
		return nil, fmt.Errorf("need steps > 0 and levels >= 2, got %d and %d: %w", steps, levels, ErrInsufficientData)
	}
	if !(tEnd > 0) {
		return nil, fmt.Errorf("end time must be positive, got %g: %w", tEnd, dynamo.ErrParameterBounds)
	}

	prev, err := solve(integ, f, z0, tEnd, steps, args)
	if err != nil {
		return nil, err
	}

	out := make([]Level, 0, levels)
	n := steps
	for i := 0; i < levels; i++ {
		next, err := solve(integ, f, z0, tEnd, 2*n, args)
		if err != nil {
			return nil, err
		}

		lvl := Level{Steps: n, H: tEnd / float64(n), Diff: next.Sub(prev).Norm(), Order: math.NaN()}
		if i > 0 {
			lvl.Order = math.Log2(out[i-1].Diff / lvl.Diff)
		}
		out = append(out, lvl)

		prev = next
		n *= 2
	}
	return out, nil
}

// ConvergenceOrder returns the Richardson order estimate after three
// halvings of tEnd/steps.
func ConvergenceOrder(integ dynamo.Integrator, f dynamo.Func, z0 dynamo.State, tEnd float64, steps int, args ...float64) (float64, error) {
	levels, err := Richardson(integ, f, z0, tEnd, steps, 3, args...)
	if err != nil {
		return 0, err
	}
	return levels[len(levels)-1].Order, nil
}

func solve(integ dynamo.Integrator, f dynamo.Func, z0 dynamo.State, tEnd float64, n int, args []float64) (dynamo.State, error) {
	h := tEnd / float64(n)
	z := z0
	for i := 0; i < n; i++ {
		next, err := integ.Step(f, float64(i)*h, z, h, args...)
		if err != nil {
			return nil, err
		}
		z = next
	}
	return z, nil
}
