package integrators

import "github.com/san-kum/kepler/internal/dynamo"

// RK4 is the classic fourth-order Runge-Kutta method.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Order() int { return 4 }

func (r *RK4) Step(f dynamo.Func, t float64, z dynamo.State, h float64, args ...float64) (dynamo.State, error) {
	k1, err := derive(f, t, z, args)
	if err != nil {
		return nil, err
	}

	k2, err := derive(f, t+h*0.5, z.AddScaled(h*0.5, k1), args)
	if err != nil {
		return nil, err
	}

	// AddScaled allocates, so f may retain its argument.
	k3, err := derive(f, t+h*0.5, z.AddScaled(h*0.5, k2), args)
	if err != nil {
		return nil, err
	}

	k4, err := derive(f, t+h, z.AddScaled(h, k3), args)
	if err != nil {
		return nil, err
	}

	slope := make(dynamo.State, len(z))
	for i := range slope {
		slope[i] = k1[i] + 2*k2[i] + 2*k3[i] + k4[i]
	}
	return z.AddScaled(h/6.0, slope), nil
}
