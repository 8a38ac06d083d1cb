package ode

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linear 返回 dy/dt = λ·y 的导数函数
func linear(lambda ...complex128) DerivativeFunc {
	return func(_ float64, y, dy []complex128) error {
		for i := range y {
			dy[i] = lambda[i] * y[i]
		}
		return nil
	}
}

func TestExponential(t *testing.T) {
	lambda := []complex128{complex(-0.5, 2), complex(0, -3), -1}
	y0 := []complex128{1, 0.5i, 2}
	times := []float64{0, 0.1, 0.5, 0.5, 1, 2.5, 4}

	it, err := NewIntegrator(Config{AbsTol: 1e-10, RelTol: 1e-10})
	require.NoError(t, err)

	var got []float64
	err = it.Integrate(times, linear(lambda...), y0, func(tt float64, y []complex128) error {
		got = append(got, tt)
		for i := range y {
			want := y0[i] * cmplx.Exp(lambda[i]*complex(tt, 0))
			assert.InDelta(t, 0, cmplx.Abs(y[i]-want), 1e-7, "t=%g i=%d", tt, i)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, times, got)
	assert.Greater(t, it.Stats().Accepted, 0)
	// 初值未被修改
	assert.Equal(t, complex128(1), y0[0])
}

func TestStopFromOutput(t *testing.T) {
	stop := errors.New("stop")
	it, err := NewIntegrator(DefaultConfig())
	require.NoError(t, err)

	calls := 0
	err = it.Integrate([]float64{0, 1, 2, 3}, linear(-1), []complex128{1}, func(tt float64, _ []complex128) error {
		calls++
		if tt >= 1 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, calls)
}

func TestMaxSteps(t *testing.T) {
	it, err := NewIntegrator(Config{MaxSteps: 3, MaxStep: 0.01})
	require.NoError(t, err)
	err = it.Integrate([]float64{0, 1}, linear(-1), []complex128{1}, nil)
	assert.ErrorIs(t, err, ErrMaxSteps)
}

func TestStepTooSmall(t *testing.T) {
	it, err := NewIntegrator(Config{MinStep: 0.5, InitialStep: 0.5, AbsTol: 1e-14, RelTol: 1e-14})
	require.NoError(t, err)
	err = it.Integrate([]float64{0, 10}, linear(-50), []complex128{1}, nil)
	assert.ErrorIs(t, err, ErrStepTooSmall)
}

func TestInvalidInput(t *testing.T) {
	it, err := NewIntegrator(DefaultConfig())
	require.NoError(t, err)
	assert.Error(t, it.Integrate(nil, linear(-1), []complex128{1}, nil))
	assert.Error(t, it.Integrate([]float64{0, 1, 0.5}, linear(-1), []complex128{1}, nil))
	assert.Error(t, it.Integrate([]float64{0, math.NaN()}, linear(-1), []complex128{1}, nil))

	_, err = NewIntegrator(Config{Safety: 2})
	assert.Error(t, err)
	_, err = NewIntegrator(Config{MinStep: 1, MaxStep: 0.1})
	assert.Error(t, err)
}
