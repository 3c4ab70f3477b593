package optim

import (
	"context"
	"errors"
	"maps"
	"math"
)

var ErrInfeasible = errors.New("optim: no grid point satisfied the objective")

// Objective scores one grid point; lower is better. Points that return an
// error or a non-finite score are skipped.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search evaluates every combination of the parameter ranges and returns the
// best point and its score.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), objective, &best, &bestParams); err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, ErrInfeasible
	}

	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		val, err := objective(ctx, current)
		if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}

		if val < *best {
			*best = val
			*bestParams = maps.Clone(current)
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := maps.Clone(current)
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, objective, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
