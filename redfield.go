// Package redfield 组装 Bloch-Redfield 主方程并在本征基下求解密度矩阵演化
package redfield

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"redfield/debug"
	"redfield/evolution"
	"redfield/load"
	"redfield/tensor"
	"redfield/types"
)

// SolveOptions 组装与演化参数
type SolveOptions struct {
	Tensor    tensor.Options
	Evolution evolution.Options
}

// Solve 组装生成元并演化初态
func Solve(h *types.Operator, specs []types.InteractionSpec, rho0 evolution.State, times []float64, opts SolveOptions) (*tensor.Result, *evolution.Result, error) {
	if opts.Evolution.Logger == nil {
		opts.Evolution.Logger = opts.Tensor.Logger
	}
	gen, err := tensor.Assemble(h, specs, opts.Tensor)
	if err != nil {
		return nil, nil, err
	}
	res, err := evolution.Evolve(times, rho0, gen.Generator, gen.Basis, opts.Evolution)
	if err != nil {
		return gen, nil, err
	}
	return gen, res, nil
}

// Run 一次场景求解
type Run struct {
	ID        string
	Scenario  *load.Scenario
	Problem   *load.Problem
	Tensor    *tensor.Result
	Evolution *evolution.Result
	Record    *debug.Record
	Elapsed   time.Duration
}

// Simulate 进行仿真：构造问题、组装生成元、演化并记录轨迹
func Simulate(s *load.Scenario, logger *slog.Logger) (*Run, error) {
	if logger == nil {
		logger = slog.Default()
	}
	run := &Run{ID: uuid.NewString(), Scenario: s}
	logger = logger.With("run", run.ID, "scenario", s.Name)
	start := time.Now()

	p, err := s.Build()
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	run.Problem = p

	observables := make([]debug.Observable, len(p.ExpectOps))
	for i, op := range p.ExpectOps {
		observables[i] = debug.Observable{Name: p.ExpectNames[i], Op: op}
	}
	run.Record = debug.NewRecord(p.H.Dim(), observables...)

	var recorder types.Recorder = run.Record
	gen, res, err := Solve(p.H, p.Interactions, p.Initial, p.Times, SolveOptions{
		Tensor: tensor.Options{
			Jumps:         p.Jumps,
			Secular:       p.Secular,
			SecularCutoff: p.SecularCutoff,
			Logger:        logger,
		},
		Evolution: evolution.Options{
			ODE:       p.ODE,
			ExpectOps: p.ExpectOps,
			Callback: func(t float64, v *evolution.View) error {
				recorder.Record(t, v.Clone())
				return nil
			},
		},
	})
	run.Tensor = gen
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	run.Evolution = res
	run.Elapsed = time.Since(start)
	logger.Info("simulation finished",
		"dim", p.H.Dim(), "outputs", len(res.Times), "warnings", len(gen.Warnings),
		"nnz", gen.Generator.NonZeroCount(), "elapsed", run.Elapsed)
	return run, nil
}

// Export 按场景的 output 配置写出结果，相对路径以 dir 为基准，返回写出的文件
func (run *Run) Export(dir string) ([]string, error) {
	out := run.Scenario.Output
	var written []string
	write := func(name string, render func(f *os.File) error) error {
		if name == "" {
			return nil
		}
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := render(f); err != nil {
			return errors.Join(err, f.Close())
		}
		if err := f.Close(); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	charts := debug.NewCharts(run.Record, out.Format)
	err := errors.Join(
		write(out.CSV, func(f *os.File) error { return run.Record.WriteCSV(f) }),
		write(out.JSON, func(f *os.File) error { return run.Record.Render(f) }),
		write(out.Plot, func(f *os.File) error { return charts.Render(f) }),
		write(out.CoherencePlot, func(f *os.File) error { return charts.RenderCoherences(f) }),
		write(out.ExpectPlot, func(f *os.File) error { return charts.RenderExpect(f) }),
	)
	if err != nil {
		return written, fmt.Errorf("export %q: %w", run.Scenario.Name, err)
	}
	return written, nil
}
