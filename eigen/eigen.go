// Package eigen 厄米哈密顿量本征分解及本征基变换
package eigen

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"

	"redfield/maths"
	"redfield/types"
)

// Basis 本征基映射（构造后只读）
type Basis struct {
	Evals []float64                // 本征值（升序）
	U     maths.Matrix[complex128] // 列为归一化本征矢
	UInv  maths.Matrix[complex128] // U 的逆
}

// Dim 返回维度 N
func (b *Basis) Dim() int {
	return len(b.Evals)
}

// Decompose 对厄米哈密顿量做本征分解
// 将 H = A + iB 嵌入实对称矩阵 [[A, -B], [B, A]]，其谱为 H 的谱重复两次，
// 本征矢 [x; y] 对应 H 的本征矢 x + iy
func Decompose(h *types.Operator) (*Basis, error) {
	if h == nil || !h.IsSquare() {
		return nil, types.NewConfigError("eigen", types.ErrNotSquare, "")
	}
	if !h.IsHermitian(types.HermitianTol) {
		return nil, types.NewConfigError("eigen", types.ErrNotHermitian, "")
	}
	n := h.Dim()
	if n == 0 {
		return nil, types.NewConfigError("eigen", types.ErrDimensionMismatch, "empty hamiltonian")
	}

	// 取厄米部分 (H+H†)/2，消除数值构造带来的微小非厄米误差
	sym := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := 0.5 * (h.Get(i, j) + cmplx.Conj(h.Get(j, i)))
			a, b := real(v), imag(v)
			sym.SetSym(i, j, a)
			sym.SetSym(n+i, n+j, a)
			sym.SetSym(i, n+j, -b)
			sym.SetSym(j, n+i, b)
		}
	}
	var es mat.EigenSym
	if !es.Factorize(sym, true) {
		return nil, types.NewConfigError("eigen", types.ErrEigenNotConverged, "")
	}
	values := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	kets, evals, err := selectVectors(n, values, &vecs)
	if err != nil {
		return nil, err
	}

	u := maths.NewDenseMatrix[complex128](n, n)
	for j, k := range kets {
		for i, v := range k {
			u.Set(i, j, v)
		}
	}
	uInv, err := maths.Inverse(u)
	if err != nil {
		return nil, types.NewConfigError("eigen", types.ErrEigenNotConverged, "eigenvector matrix: %v", err)
	}
	return &Basis{Evals: evals, U: u, UInv: uInv}, nil
}

// selectVectors 从 2N 个实本征矢中选出 N 个复正交本征矢
// 每轮取当前残差最大的候选，再从其余候选中扣除其投影，最后按本征值升序排列
func selectVectors(n int, values []float64, vecs *mat.Dense) ([][]complex128, []float64, error) {
	cand := make([][]complex128, 2*n)
	for j := range cand {
		c := make([]complex128, n)
		for i := 0; i < n; i++ {
			c[i] = complex(vecs.At(i, j), vecs.At(n+i, j))
		}
		cand[j] = c
	}

	type picked struct {
		vec  []complex128
		eval float64
	}
	used := make([]bool, 2*n)
	out := make([]picked, 0, n)
	for len(out) < n {
		best, bestNorm := -1, 0.0
		for j, c := range cand {
			if used[j] {
				continue
			}
			if nr := norm(c); nr > bestNorm {
				best, bestNorm = j, nr
			}
		}
		if best < 0 || bestNorm < 1e-6 {
			return nil, nil, types.NewConfigError("eigen", types.ErrEigenNotConverged, "found %d of %d eigenvectors", len(out), n)
		}
		used[best] = true
		q := cand[best]
		for i := range q {
			q[i] /= complex(bestNorm, 0)
		}
		for j, c := range cand {
			if used[j] {
				continue
			}
			p := inner(q, c)
			for i := range c {
				c[i] -= p * q[i]
			}
		}
		out = append(out, picked{vec: q, eval: values[best]})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].eval < out[j].eval })
	kets := make([][]complex128, n)
	evals := make([]float64, n)
	for i, p := range out {
		kets[i], evals[i] = p.vec, p.eval
	}
	return kets, evals, nil
}

// inner 复内积 ⟨a|b⟩
func inner(a, b []complex128) complex128 {
	var s complex128
	for i := range a {
		s += cmplx.Conj(a[i]) * b[i]
	}
	return s
}

func norm(a []complex128) float64 {
	return math.Sqrt(real(inner(a, a)))
}

// Kets 以态矢量形式返回本征矢（按本征值升序）
func (b *Basis) Kets() []*types.Ket {
	n := b.Dim()
	kets := make([]*types.Ket, n)
	for j := 0; j < n; j++ {
		amp := make([]complex128, n)
		for i := 0; i < n; i++ {
			amp[i] = b.U.Get(i, j)
		}
		kets[j] = types.NewKet(amp)
	}
	return kets
}

// ToEigenbasis 计算 U⁻¹·op·U
func (b *Basis) ToEigenbasis(op maths.Matrix[complex128]) (maths.Matrix[complex128], error) {
	return b.transform(b.UInv, op, b.U)
}

// FromEigenbasis 计算 U·op·U⁻¹
func (b *Basis) FromEigenbasis(op maths.Matrix[complex128]) (maths.Matrix[complex128], error) {
	return b.transform(b.U, op, b.UInv)
}

func (b *Basis) transform(left, op, right maths.Matrix[complex128]) (maths.Matrix[complex128], error) {
	n := b.Dim()
	if op.Rows() != n || op.Cols() != n {
		return nil, types.NewConfigError("eigen", types.ErrDimensionMismatch, "operator %dx%d, basis %d", op.Rows(), op.Cols(), n)
	}
	tmp := maths.NewDenseMatrix[complex128](n, n)
	dst := maths.NewDenseMatrix[complex128](n, n)
	if err := b.transformTo(dst, tmp, left, op, right); err != nil {
		return nil, err
	}
	return dst, nil
}

// FromEigenbasisTo 计算 dst = U·op·U⁻¹，tmp 为 N×N 暂存矩阵
func (b *Basis) FromEigenbasisTo(dst, tmp, op maths.Matrix[complex128]) error {
	return b.transformTo(dst, tmp, b.U, op, b.UInv)
}

// ToEigenbasisTo 计算 dst = U⁻¹·op·U，tmp 为 N×N 暂存矩阵
func (b *Basis) ToEigenbasisTo(dst, tmp, op maths.Matrix[complex128]) error {
	return b.transformTo(dst, tmp, b.UInv, op, b.U)
}

func (b *Basis) transformTo(dst, tmp, left, op, right maths.Matrix[complex128]) error {
	if err := maths.MulTo(tmp, left, op); err != nil {
		return fmt.Errorf("eigen transform: %w", err)
	}
	if err := maths.MulTo(dst, tmp, right); err != nil {
		return fmt.Errorf("eigen transform: %w", err)
	}
	return nil
}
