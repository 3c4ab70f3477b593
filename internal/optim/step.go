package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/kepler/internal/dynamo"
	"github.com/san-kum/kepler/internal/kepler"
	"github.com/san-kum/kepler/internal/orbit"
)

const stepsParam = "steps_per_period"

// StepChoice is the cheapest resolution found by CheapestStep.
type StepChoice struct {
	StepsPerPeriod int
	Step           float64
	EnergyError    float64
}

// CheapestStep returns the smallest steps-per-period among candidates whose
// run over the given number of periods keeps the maximum relative energy
// error at or below tol.
func CheapestStep(ctx context.Context, el kepler.Elements, method string, periods float64, candidates []int, tol float64) (StepChoice, error) {
	if len(candidates) == 0 || !(tol > 0) {
		return StepChoice{}, fmt.Errorf("need candidates and a positive tolerance: %w", dynamo.ErrParameterBounds)
	}

	grid := make([]float64, len(candidates))
	for i, c := range candidates {
		grid[i] = float64(c)
	}

	choices := make(map[int]StepChoice)
	var firstErr error
	objective := func(ctx context.Context, params map[string]float64) (float64, error) {
		spp := int(params[stepsParam])
		job, err := orbit.JobFromElements("", el, periods, spp, method)
		if err == nil {
			var tr *orbit.Trajectory
			tr, err = orbit.IntegrateOrbitContext(ctx, job.Z0, job.Mass, job.TEnd, job.Step, job.Method)
			if err == nil {
				e := tr.MaxEnergyError()
				choices[spp] = StepChoice{StepsPerPeriod: spp, Step: job.Step, EnergyError: e}
				if e > tol {
					return math.Inf(1), nil
				}
				return float64(spp), nil
			}
		}
		if firstErr == nil {
			firstErr = err
		}
		return 0, err
	}

	params, _, err := NewGridSearch([]string{stepsParam}, [][]float64{grid}).Search(ctx, objective)
	if err != nil {
		if firstErr != nil {
			return StepChoice{}, fmt.Errorf("%w: %w", err, firstErr)
		}
		return StepChoice{}, err
	}
	return choices[int(params[stepsParam])], nil
}
