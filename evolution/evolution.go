// Package evolution 在哈密顿量本征基下积分主方程，并将结果变换回原始基
package evolution

import (
	"errors"
	"fmt"
	"log/slog"

	"redfield/eigen"
	"redfield/maths"
	"redfield/ode"
	"redfield/types"
)

// ErrStop 回调返回该错误时提前结束积分，Evolve 不报错
var ErrStop = errors.New("evolution: stop requested")

// State 初态：*types.Operator（密度矩阵）或 *types.Ket（纯态，自动取外积）
type State interface {
	Dim() int
}

// Callback 每个输出时刻调用一次，v 只在调用期间有效
type Callback func(t float64, v *View) error

// Options 演化参数
type Options struct {
	ODE       ode.Config        // 透传给积分器
	ExpectOps []*types.Operator // 需要计算期望值 Tr(O·ρ) 的算符
	Callback  Callback          // 非空时不保存密度矩阵序列
	Logger    *slog.Logger
}

// Result 演化结果
type Result struct {
	Times  []float64         // 实际输出的时刻
	States []*types.Operator // 各时刻密度矩阵（原始基），有回调时为空
	Expect [][]complex128    // Expect[i][j] = Tr(O_i·ρ(t_j))
	Stats  ode.Stats
}

// Evolve 以生成元 gen（本征基下，N²×N²）演化初态 rho0
func Evolve(times []float64, rho0 State, gen maths.Matrix[complex128], basis *eigen.Basis, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if basis == nil {
		return nil, types.NewConfigError("evolve", types.ErrDimensionMismatch, "nil basis")
	}
	n := basis.Dim()
	if err := checkTimes(times); err != nil {
		return nil, err
	}
	if gen == nil || gen.Rows() != n*n || gen.Cols() != n*n {
		return nil, types.NewConfigError("evolve", types.ErrDimensionMismatch, "generator does not act on %d-level density matrices", n)
	}
	if err := types.CheckDims("evolve", n, opts.ExpectOps...); err != nil {
		return nil, err
	}
	rho, err := densityOperator(rho0, n)
	if err != nil {
		return nil, err
	}

	integrator, err := ode.NewIntegrator(opts.ODE)
	if err != nil {
		return nil, fmt.Errorf("evolve: %w", err)
	}
	rhoEb, err := basis.ToEigenbasis(rho.Matrix)
	if err != nil {
		return nil, err
	}
	y0 := maths.Vec(rhoEb)

	result := &Result{
		Times:  make([]float64, 0, len(times)),
		Expect: make([][]complex128, len(opts.ExpectOps)),
	}
	// 复用的暂存矩阵：本征基下的 ρ、中间乘积、原始基下的 ρ
	scratchEb := maths.NewDenseMatrix[complex128](n, n)
	tmp := maths.NewDenseMatrix[complex128](n, n)
	current := maths.NewDenseMatrix[complex128](n, n)

	deriv := func(_ float64, y, dy []complex128) error {
		gen.MulVecTo(dy, y)
		return nil
	}
	output := func(t float64, y []complex128) error {
		maths.UnvecTo(scratchEb, y)
		if err := basis.FromEigenbasisTo(current, tmp, scratchEb); err != nil {
			return err
		}
		result.Times = append(result.Times, t)
		for i, op := range opts.ExpectOps {
			result.Expect[i] = append(result.Expect[i], op.Expect(current))
		}
		if opts.Callback == nil {
			state := types.NewOperator(n)
			current.Copy(state.Matrix)
			result.States = append(result.States, state)
			return nil
		}
		v := &View{t: t, rho: current}
		err := opts.Callback(t, v)
		v.rho = nil
		return err
	}

	err = integrator.Integrate(times, deriv, y0, output)
	result.Stats = integrator.Stats()
	switch {
	case errors.Is(err, ErrStop):
		logger.Debug("evolution stopped by callback", "t", result.Times[len(result.Times)-1], "outputs", len(result.Times))
	case err != nil:
		return nil, fmt.Errorf("evolve: %w", err)
	}
	logger.Debug("evolution finished",
		"dim", n, "outputs", len(result.Times),
		"accepted", result.Stats.Accepted, "rejected", result.Stats.Rejected)
	return result, nil
}

func checkTimes(times []float64) error {
	if len(times) == 0 {
		return types.NewConfigError("evolve", types.ErrInvalidTimes, "")
	}
	for i := 1; i < len(times); i++ {
		if !(times[i] >= times[i-1]) {
			return types.NewConfigError("evolve", types.ErrInvalidTimes, "times[%d]=%g after %g", i, times[i], times[i-1])
		}
	}
	return nil
}

// densityOperator 将初态转换为密度矩阵
func densityOperator(s State, n int) (*types.Operator, error) {
	switch v := s.(type) {
	case *types.Operator:
		if err := types.CheckDims("evolve", n, v); err != nil {
			return nil, err
		}
		return v, nil
	case *types.Ket:
		if v == nil || v.Dim() != n {
			return nil, types.NewConfigError("evolve", types.ErrDimensionMismatch, "initial ket")
		}
		return v.Projector(), nil
	default:
		return nil, types.NewConfigError("evolve", types.ErrDimensionMismatch, "unsupported initial state %T", s)
	}
}
