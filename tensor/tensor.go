// Package tensor 组装 Bloch-Redfield 弛豫张量及完整生成元
package tensor

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"redfield/eigen"
	"redfield/liouville"
	"redfield/maths"
	"redfield/types"
)

// Options 组装参数
type Options struct {
	Jumps         []*types.Operator // Lindblad 跃迁算符（原始基）
	Secular       bool              // 是否启用久期近似
	SecularCutoff float64           // 截断比例，w_cutoff = dw_min * SecularCutoff
	Tolerance     float64           // 相对稀疏化阈值（乘以 max|R|），<=0 时取 types.DefaultSparseTol
	Logger        *slog.Logger
}

// DefaultOptions 启用久期近似，截断比例 0.1
func DefaultOptions() Options {
	return Options{Secular: true, SecularCutoff: types.DefaultSecularCutoff}
}

// Result 组装结果
type Result struct {
	Generator maths.Matrix[complex128]       // 本征基下的完整生成元（基准 + R）
	Tensor    maths.SparseMatrix[complex128] // 仅弛豫张量 R
	Basis     *eigen.Basis
	Kets      []*types.Ket    // 本征态
	Warnings  []types.Warning // 物理模型警告
}

// Assemble 计算哈密顿量本征基下的 Bloch-Redfield 生成元
// R[a,b,c,d] 存放于 Liouville 矩阵第 a+N·b 行、第 c+N·d 列
func Assemble(h *types.Operator, specs []types.InteractionSpec, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tol := opts.Tolerance
	if tol <= 0 {
		tol = types.DefaultSparseTol
	}
	if h == nil {
		return nil, types.NewConfigError("tensor", types.ErrNotSquare, "nil hamiltonian")
	}
	n := h.Dim()
	if err := types.CheckDims("tensor", n, opts.Jumps...); err != nil {
		return nil, err
	}
	for k, s := range specs {
		if err := types.CheckDims("tensor", n, s.Op); err != nil {
			return nil, fmt.Errorf("interaction %d: %w", k, err)
		}
		if s.Spectrum == nil {
			return nil, types.NewConfigError("tensor", types.ErrMissingSpectrum, "interaction %d", k)
		}
	}
	if opts.Secular && !(opts.SecularCutoff > 0) {
		return nil, types.NewConfigError("tensor", types.ErrInvalidCutoff, "cutoff %g", opts.SecularCutoff)
	}

	start := time.Now()
	basis, err := eigen.Decompose(h)
	if err != nil {
		return nil, err
	}
	baseline, err := baselineGenerator(basis, opts.Jumps)
	if err != nil {
		return nil, err
	}
	result := &Result{Basis: basis, Kets: basis.Kets()}
	if len(specs) == 0 {
		result.Generator = baseline
		result.Tensor = maths.NewSparseMatrixTol[complex128](n*n, n*n, 0)
		return result, nil
	}

	a, warnings, err := couplings(basis, specs)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		w.Log(logger)
	}
	result.Warnings = warnings

	w := transitions(basis.Evals)
	jw := sample(w, specs)

	cutoff := math.Inf(1)
	if opts.Secular {
		dwMin, ok := minGap(w, basis.Evals)
		if !ok {
			return nil, types.NewConfigError("tensor", types.ErrDegenerateSpectrum, "")
		}
		cutoff = dwMin * opts.SecularCutoff
	}

	r := build(n, a, jw, w, cutoff, tol)
	gen, err := maths.Add[complex128](baseline, r)
	if err != nil {
		return nil, fmt.Errorf("tensor: %w", err)
	}
	result.Generator = gen
	result.Tensor = r

	logger.Debug("redfield tensor assembled",
		"dim", n, "couplings", len(specs), "secular", opts.Secular,
		"nnz", r.NonZeroCount(), "elapsed", time.Since(start))
	return result, nil
}

// baselineGenerator 以本征基下的 H 与跃迁算符构造基准生成元
func baselineGenerator(basis *eigen.Basis, jumps []*types.Operator) (maths.SparseMatrix[complex128], error) {
	n := basis.Dim()
	hEb := types.NewOperator(n)
	for i, e := range basis.Evals {
		hEb.Set(i, i, complex(e, 0))
	}
	jEb := make([]*types.Operator, len(jumps))
	for k, j := range jumps {
		m, err := basis.ToEigenbasis(j.Matrix)
		if err != nil {
			return nil, err
		}
		if jEb[k], err = types.WrapOperator(m); err != nil {
			return nil, err
		}
	}
	return liouville.Liouvillian(hEb, jEb)
}

// couplings 将耦合算符变换到本征基，按行优先展开为 A[k][a*N+c]
func couplings(basis *eigen.Basis, specs []types.InteractionSpec) ([][]complex128, []types.Warning, error) {
	n := basis.Dim()
	var warnings []types.Warning
	a := make([][]complex128, len(specs))
	for k, s := range specs {
		if !s.Op.IsHermitian(types.HermitianTol) {
			warnings = append(warnings, types.Warning{
				Kind:    types.WarnNonHermitian,
				Index:   k,
				Message: "interaction operator is not hermitian",
			})
		}
		m, err := basis.ToEigenbasis(s.Op.Matrix)
		if err != nil {
			return nil, nil, err
		}
		flat := make([]complex128, n*n)
		for i := 0; i < n; i++ {
			cols, vals := m.GetRow(i)
			for p, c := range cols {
				flat[i*n+c] = vals[p]
			}
		}
		a[k] = flat
	}
	return a, warnings, nil
}

// transitions 跃迁频率 W[a*N+b] = E_a - E_b
func transitions(evals []float64) []float64 {
	n := len(evals)
	w := make([]float64, n*n)
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			w[a*n+b] = evals[a] - evals[b]
		}
	}
	return w
}

// sample 谱密度采样 Jw[k][a*N+b] = S_k(W[a,b])
func sample(w []float64, specs []types.InteractionSpec) [][]complex128 {
	jw := make([][]complex128, len(specs))
	for k, s := range specs {
		row := make([]complex128, len(w))
		for i, f := range w {
			row[i] = s.Spectrum(f)
		}
		jw[k] = row
	}
	return jw
}

// minGap 最小非零跃迁频率；|W| <= DegeneracyTol·max|E| 的频率视为零
func minGap(w, evals []float64) (float64, bool) {
	var scale float64
	for _, e := range evals {
		scale = max(scale, math.Abs(e))
	}
	zero := types.DegeneracyTol * scale
	dw, ok := math.Inf(1), false
	for _, f := range w {
		if af := math.Abs(f); af > zero && af < dw {
			dw, ok = af, true
		}
	}
	return dw, ok
}

// build 逐行构造弛豫张量 R，丢弃模不超过 tol·max|R| 的元素
// term2 仅在 b==d 时出现，只依赖 (a,c)；term3 仅在 a==c 时出现，只依赖 (d,b)，均预先求出
func build(n int, a, jw [][]complex128, w []float64, cutoff, tol float64) maths.SparseMatrix[complex128] {
	term2 := make([]complex128, n*n) // [a*N+c]
	term3 := make([]complex128, n*n) // [d*N+b]
	for k := range a {
		ak, jk := a[k], jw[k]
		for x := 0; x < n; x++ {
			for y := 0; y < n; y++ {
				var s2, s3 complex128
				for m := 0; m < n; m++ {
					s2 += ak[x*n+m] * ak[m*n+y] * jk[y*n+m]
					s3 += ak[x*n+m] * ak[m*n+y] * jk[x*n+m]
				}
				term2[x*n+y] -= s2
				term3[x*n+y] -= s3
			}
		}
	}

	nn := n * n
	r := maths.NewSparseMatrixTol[complex128](nn, nn, 0)
	cols := make([]int, 0, nn)
	vals := make([]complex128, 0, nn)
	for b := 0; b < n; b++ {
		for ai := 0; ai < n; ai++ {
			cols, vals = cols[:0], vals[:0]
			wab := w[ai*n+b]
			for d := 0; d < n; d++ {
				for c := 0; c < n; c++ {
					if math.Abs(wab-w[c*n+d]) > cutoff {
						continue
					}
					var sum complex128
					for k := range a {
						sum += a[k][ai*n+c] * a[k][d*n+b] * (jw[k][c*n+ai] + jw[k][d*n+b])
					}
					if b == d {
						sum += term2[ai*n+c]
					}
					if ai == c {
						sum += term3[d*n+b]
					}
					cols = append(cols, maths.PairIndex(n, c, d))
					vals = append(vals, 0.5*sum)
				}
			}
			r.AppendRow(cols, vals)
		}
	}
	return maths.Sparsify(r, tol*maths.MaxAbs(r))
}
