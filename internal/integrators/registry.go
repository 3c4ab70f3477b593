package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/kepler/internal/dynamo"
)

var methods = map[string]func() dynamo.Integrator{
	"Euler": func() dynamo.Integrator { return NewEuler() },
	"RK2":   func() dynamo.Integrator { return NewRK2() },
	"RK4":   func() dynamo.Integrator { return NewRK4() },
}

// Lookup returns the stepper registered under name. Names are case sensitive.
func Lookup(name string) (dynamo.Integrator, error) {
	fn, ok := methods[name]
	if !ok {
		return nil, fmt.Errorf("%q (available: %v): %w", name, Names(), dynamo.ErrUnknownMethod)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
