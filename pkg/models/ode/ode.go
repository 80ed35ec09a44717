// Package ode provides the fixed-step integrator shared by the builtin
// simulation models. The models in this platform are autonomous scalar ODEs,
// so the interface is deliberately narrow.
package ode

import "math"

// maxSubstep bounds the internal step size so accuracy does not degrade for
// large time steps.
const maxSubstep = 0.1

// RK4 integrates dy/dt = f(y) from y0 over an interval of length dt using
// classic fourth-order Runge-Kutta. dt must be positive; callers validate.
func RK4(f func(float64) float64, y0, dt float64) float64 {
	n := int(math.Ceil(dt / maxSubstep))
	if n < 1 {
		n = 1
	}
	h := dt / float64(n)

	y := y0
	for range n {
		k1 := f(y)
		k2 := f(y + h/2*k1)
		k3 := f(y + h/2*k2)
		k4 := f(y + h*k3)
		y += h / 6 * (k1 + 2*k2 + 2*k3 + k4)
	}
	return y
}
