package metrics

import (
	"math"

	"github.com/san-kum/kepler/internal/dynamo"
)

// Stability is the fraction of samples whose position stays finite and
// within radius of the origin. Position is taken from the first two
// components of the state.
type Stability struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewStability(radius float64) *Stability {
	return &Stability{
		name:   "stability",
		radius: radius,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x dynamo.State, t float64) {
	s.samples++
	if len(x) < 2 {
		return
	}
	r := math.Hypot(x[0], x[1])
	if math.IsNaN(r) || r > s.radius {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
