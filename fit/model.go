package fit

import (
	"fmt"
	"math"
	"sort"
)

// Model is a parametric curve y = f(x; params). Implementations must be
// stateless: Evaluate is called concurrently during batch fitting.
type Model interface {
	// Evaluate returns the model value at x for the given parameters.
	Evaluate(x float64, params []float64) float64
	// ParamCount returns the number of free parameters.
	ParamCount() int
	// Name identifies the model in reports and storage.
	Name() string
}

// Linear is y = a*x + b with params [a, b].
type Linear struct{}

func (Linear) Evaluate(x float64, p []float64) float64 { return p[0]*x + p[1] }
func (Linear) ParamCount() int                         { return 2 }
func (Linear) Name() string                            { return "linear" }

// Exponential is y = a*exp(-x/tau) with params [a, tau].
type Exponential struct{}

func (Exponential) Evaluate(x float64, p []float64) float64 { return p[0] * math.Exp(-x/p[1]) }
func (Exponential) ParamCount() int                         { return 2 }
func (Exponential) Name() string                            { return "exp" }

// DoubleExponential is y = a1*exp(-x/tau1) + a2*exp(-x/tau2) with
// params [a1, tau1, a2, tau2].
type DoubleExponential struct{}

func (DoubleExponential) Evaluate(x float64, p []float64) float64 {
	return p[0]*math.Exp(-x/p[1]) + p[2]*math.Exp(-x/p[3])
}
func (DoubleExponential) ParamCount() int { return 4 }
func (DoubleExponential) Name() string    { return "exp2" }

var builtins = map[string]func() Model{
	"linear": func() Model { return Linear{} },
	"exp":    func() Model { return Exponential{} },
	"exp2":   func() Model { return DoubleExponential{} },
}

// ModelNamed returns the built-in model registered under name.
func ModelNamed(name string) (Model, error) {
	fn, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(), nil
}

// ModelNames lists the built-in model names.
func ModelNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
