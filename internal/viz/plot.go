package viz

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/kepler/internal/orbit"
)

const (
	plotWidth  = 80
	plotHeight = 12
)

// OrbitCanvas draws the path of tr with the central mass marked at the origin.
func OrbitCanvas(tr *orbit.Trajectory, w, h int) *Canvas {
	c := NewCanvas(w, h)
	b := FitBounds(tr.X, tr.Y)
	c.DrawPath(b, tr.X, tr.Y)
	c.DrawMarker(b, 0, 0)
	return c
}

// EnergyPlot charts kinetic, potential and total energy against sample index.
func EnergyPlot(tr *orbit.Trajectory) string {
	if tr.Len() == 0 {
		return ""
	}
	return asciigraph.PlotMany(
		[][]float64{finiteOnly(tr.KE), finiteOnly(tr.PE), finiteOnly(tr.TE)},
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red, asciigraph.Green),
		asciigraph.Caption(fmt.Sprintf("energy (%s, h=%g): kinetic blue, potential red, total green", tr.Method, tr.Step)),
	)
}

// EnergyErrorPlot charts (TE[i] - TE[0]) / |TE[0]|.
func EnergyErrorPlot(tr *orbit.Trajectory) string {
	if tr.Len() == 0 {
		return ""
	}
	e0 := math.Abs(tr.TE[0])
	if e0 == 0 {
		e0 = 1
	}
	rel := make([]float64, tr.Len())
	for i, e := range tr.TE {
		rel[i] = (e - tr.TE[0]) / e0
	}
	return asciigraph.Plot(finiteOnly(rel),
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("relative energy error"),
	)
}

// PositionPlot charts x and y against sample index.
func PositionPlot(tr *orbit.Trajectory) string {
	if tr.Len() == 0 {
		return ""
	}
	return asciigraph.PlotMany(
		[][]float64{finiteOnly(tr.X), finiteOnly(tr.Y)},
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		asciigraph.Caption("position: x blue, y red"),
	)
}

// Summary renders the headline numbers of a run.
func Summary(title string, tr *orbit.Trajectory, period float64) string {
	rows := []Row{
		{"method", tr.Method},
		{"mass", Sci(tr.Mass)},
		{"step", Sci(tr.Step)},
		{"samples", fmt.Sprintf("%d", tr.Len())},
	}
	if period > 0 {
		rows = append(rows, Row{"period", Sci(period)})
	}
	if tr.Len() > 0 {
		n := tr.Len() - 1
		rows = append(rows,
			Row{"t end", Sci(tr.Times[n])},
			Row{"final x, y", fmt.Sprintf("%.6g, %.6g", tr.X[n], tr.Y[n])},
			Row{"energy", fmt.Sprintf("%.10g -> %.10g", tr.TE[0], tr.TE[n])},
			Row{"max rel dE", Sci(tr.MaxEnergyError())},
		)
	}
	for _, name := range sortedKeys(tr.Metrics) {
		rows = append(rows, Row{name, Sci(tr.Metrics[name])})
	}
	return BoxWithTitle(title, KeyValues(rows))
}

// finiteOnly drops everything from the first non-finite value on, since
// asciigraph cannot scale Inf or NaN.
func finiteOnly(v []float64) []float64 {
	for i, x := range v {
		if !finite(x) {
			if i == 0 {
				return []float64{0}
			}
			return v[:i]
		}
	}
	return v
}

func sortedKeys(m map[string]float64) []string {
	return slices.Sorted(maps.Keys(m))
}
