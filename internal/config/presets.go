package config

import (
	"sort"

	"github.com/san-kum/kepler/internal/kepler"
)

var Presets = map[string]*Config{
	"circular": {
		Method: "RK4", StepsPerPeriod: 1000, Periods: 1,
		Elements: kepler.Elements{A: 1, M: 1, E: 0},
	},
	"eccentric": {
		Method: "RK4", StepsPerPeriod: 10000, Periods: 2,
		Elements: kepler.Elements{A: 1, M: 1, E: 0.5},
	},
	"comet": {
		Method: "RK4", StepsPerPeriod: 20000, Periods: 1,
		Elements: kepler.Elements{A: 5, M: 1, E: 0.95},
	},
	"coarse": {
		Method: "Euler", StepsPerPeriod: 200, Periods: 3,
		Elements: kepler.Elements{A: 1, M: 1, E: 0.3},
	},
	"binary": {
		Method: "RK2", StepsPerPeriod: 2000, Periods: 5,
		Elements: kepler.Elements{A: 2, M: 2, E: 0.2},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
