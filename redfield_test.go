package redfield

import (
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redfield/evolution"
	"redfield/load"
	"redfield/ode"
	"redfield/tensor"
	"redfield/types"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))

func TestSolveTwoLevel(t *testing.T) {
	h := types.MustOperator([][]complex128{{0, 0}, {0, 1}})
	specs := []types.InteractionSpec{{Op: types.MustOperator([][]complex128{{0, 1}, {1, 0}}), Spectrum: types.Constant(1)}}
	opts := SolveOptions{Tensor: tensor.DefaultOptions()}
	opts.Tensor.Logger = quiet
	opts.Evolution.ODE = ode.Config{AbsTol: 1e-10, RelTol: 1e-10}

	times := []float64{0, 0.25, 0.5, 1, 2}
	gen, res, err := Solve(h, specs, types.BasisKet(2, 1), times, opts)
	require.NoError(t, err)
	require.Len(t, gen.Kets, 2)
	for i, rho := range res.States {
		assert.InDelta(t, 0.5+0.5*math.Exp(-2*times[i]), real(rho.Get(1, 1)), 1e-7)
	}

	_, _, err = Solve(h, specs, types.BasisKet(2, 1), nil, opts)
	assert.ErrorIs(t, err, types.ErrInvalidTimes)
}

const scenario = `
name: damped
hamiltonian: [[0, 0], [0, 1]]
couplings:
  - op: sx
    spectrum: {kind: constant, value: 1}
initial: {level: 1}
times: {start: 0, stop: 1, steps: 11}
expect:
  - {name: sz, op: sz}
output:
  csv: out/damped.csv
  plot: out/damped.png
  coherence_plot: out/damped_coherence.png
  expect_plot: out/damped_sz.png
  json: out/damped.json
`

func TestSimulateAndExport(t *testing.T) {
	s, err := load.LoadString(scenario)
	require.NoError(t, err)

	run, err := Simulate(s, quiet)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 11, run.Record.Len())
	require.Len(t, run.Evolution.Expect, 1)
	assert.InDelta(t, -math.Exp(-2), real(run.Evolution.Expect[0][10]), 1e-5)
	assert.InDelta(t, run.Record.Expect[10][0], real(run.Evolution.Expect[0][10]), 1e-12)

	dir := t.TempDir()
	files, err := run.Export(dir)
	require.NoError(t, err)
	assert.Len(t, files, 5)
	for _, f := range files {
		info, err := os.Stat(f)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
	assert.FileExists(t, filepath.Join(dir, "out", "damped.csv"))
	assert.FileExists(t, filepath.Join(dir, "out", "damped_sz.png"))
}

func TestSimulateStopsOnError(t *testing.T) {
	s, err := load.LoadString("name: bad\nhamiltonian: [[1, 0], [0, 1]]\ncouplings: [{op: sx, spectrum: {kind: constant}}]\ninitial: {level: 0}\n")
	require.NoError(t, err)
	_, err = Simulate(s, quiet)
	assert.ErrorIs(t, err, types.ErrDegenerateSpectrum)
}

func TestSolveStop(t *testing.T) {
	h := types.MustOperator([][]complex128{{0, 0}, {0, 1}})
	opts := SolveOptions{}
	opts.Evolution.Callback = func(t float64, v *evolution.View) error {
		if t > 0 {
			return evolution.ErrStop
		}
		return nil
	}
	_, res, err := Solve(h, nil, types.BasisKet(2, 0), []float64{0, 1, 2}, opts)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, res.Times)
}
