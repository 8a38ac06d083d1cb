// Package liouville 构建 Lindblad 形式的基准 Liouville 生成元
package liouville

import (
	"redfield/maths"
	"redfield/types"
)

// Liouvillian 返回作用于列优先向量化密度矩阵的生成元
//
//	L = -i(I⊗H - Hᵀ⊗I) + Σ_k [J̄_k⊗J_k - ½ I⊗(J_k†J_k) - ½ (J_k†J_k)ᵀ⊗I]
//
// 采用 vec(AXB) = (Bᵀ⊗A)·vec(X)。各项以稀疏形式累加，
// 模不超过 DefaultSparseTol·max|L| 的元素（相消残差）被丢弃
func Liouvillian(h *types.Operator, jumps []*types.Operator) (maths.SparseMatrix[complex128], error) {
	if h == nil || !h.IsSquare() {
		return nil, types.NewConfigError("liouvillian", types.ErrNotSquare, "")
	}
	n := h.Dim()
	if err := types.CheckDims("liouvillian", n, jumps...); err != nil {
		return nil, err
	}
	id := maths.NewIdentity[complex128](n)

	gen := maths.AddSparse(
		maths.Kron(-1i, id, h.Matrix),
		maths.Kron(1i, maths.Transpose(h.Matrix), id),
	)
	for _, j := range jumps {
		gen = addDissipator(gen, j.Matrix, id)
	}
	return maths.Sparsify(gen, types.DefaultSparseTol*maths.MaxAbs(gen)), nil
}

// addDissipator 返回 gen + D[J]
func addDissipator(gen maths.SparseMatrix[complex128], j, id maths.Matrix[complex128]) maths.SparseMatrix[complex128] {
	jd := maths.Dagger(j)
	// 维度已由 CheckDims 保证
	jdj, _ := maths.Mul(jd, j)
	// J̄ = (J†)ᵀ
	gen = maths.AddSparse(gen, maths.Kron(1, maths.Transpose(jd), j))
	gen = maths.AddSparse(gen, maths.Kron(-0.5, id, jdj))
	return maths.AddSparse(gen, maths.Kron(-0.5, maths.Transpose(jdj), id))
}
