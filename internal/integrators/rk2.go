package integrators

import "github.com/san-kum/kepler/internal/dynamo"

// RK2 is the second-order midpoint method.
type RK2 struct{}

func NewRK2() *RK2 {
	return &RK2{}
}

func (r *RK2) Order() int { return 2 }

func (r *RK2) Step(f dynamo.Func, t float64, z dynamo.State, h float64, args ...float64) (dynamo.State, error) {
	k1, err := derive(f, t, z, args)
	if err != nil {
		return nil, err
	}

	k2, err := derive(f, t+h*0.5, z.AddScaled(h*0.5, k1), args)
	if err != nil {
		return nil, err
	}

	return z.AddScaled(h, k2), nil
}
