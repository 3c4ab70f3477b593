package orbit

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/kepler/internal/dynamo"
	"github.com/san-kum/kepler/internal/kepler"
)

// Job describes one independent orbit integration.
type Job struct {
	Name   string
	Z0     dynamo.State
	Mass   float64
	TEnd   float64
	Step   float64
	Method string
}

// JobFromElements builds a job covering the given number of periods of the
// orbit described by el, with stepsPerPeriod steps per period.
func JobFromElements(name string, el kepler.Elements, periods float64, stepsPerPeriod int, method string) (Job, error) {
	init, err := el.Initial()
	if err != nil {
		return Job{}, err
	}
	if stepsPerPeriod <= 0 {
		return Job{}, fmt.Errorf("steps per period must be positive, got %d: %w", stepsPerPeriod, dynamo.ErrParameterBounds)
	}
	return Job{
		Name:   name,
		Z0:     init.Z0,
		Mass:   el.M,
		TEnd:   periods * init.Period,
		Step:   init.Period / float64(stepsPerPeriod),
		Method: method,
	}, nil
}

// Sweep integrates jobs concurrently with at most workers in flight
// (GOMAXPROCS when workers <= 0). Results are index-aligned with jobs. The
// first failure cancels the remaining jobs and is returned.
func Sweep(ctx context.Context, jobs []Job, workers int) ([]*Trajectory, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*Trajectory, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		g.Go(func() error {
			tr, err := IntegrateOrbitContext(ctx, job.Z0, job.Mass, job.TEnd, job.Step, job.Method)
			if err != nil {
				if job.Name != "" {
					return fmt.Errorf("job %s: %w", job.Name, err)
				}
				return fmt.Errorf("job %d: %w", i, err)
			}
			results[i] = tr
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
