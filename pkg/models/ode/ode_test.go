package ode

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const odeTestTolerance = 1e-6

func TestRK4_ExponentialDecay(t *testing.T) {
	// dy/dt = -0.5y from y0=10 has the closed form y(t) = 10 e^(-0.5t).
	f := func(y float64) float64 { return -0.5 * y }

	got := RK4(f, 10.0, 2.0)
	want := 10.0 * math.Exp(-1.0)

	assert.InDelta(t, want, got, odeTestTolerance)
}

func TestRK4_ForcedLinear(t *testing.T) {
	// dy/dt = u - ky from y0=0 has the closed form y(t) = (u/k)(1 - e^(-kt)).
	const (
		u = 10.0
		k = 0.1
	)
	f := func(y float64) float64 { return u - k*y }

	got := RK4(f, 0.0, 1.0)
	want := u / k * (1.0 - math.Exp(-k))

	assert.InDelta(t, want, got, odeTestTolerance)
}

func TestRK4_EquilibriumIsFixed(t *testing.T) {
	// At equilibrium (f(y) = 0) the solution must not move.
	f := func(y float64) float64 { return 10.0 - 0.1*y }

	assert.InDelta(t, 100.0, RK4(f, 100.0, 5.0), odeTestTolerance)
}

func TestRK4_LargeStepSubdivides(t *testing.T) {
	f := func(y float64) float64 { return -0.5 * y }

	got := RK4(f, 10.0, 20.0)
	want := 10.0 * math.Exp(-10.0)

	assert.InDelta(t, want, got, odeTestTolerance)
}
