package liouville

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redfield/maths"
	"redfield/types"
)

// apply 计算 unvec(L·vec(ρ))
func apply(l maths.Matrix[complex128], rho maths.Matrix[complex128]) maths.Matrix[complex128] {
	v := maths.Vec(rho)
	out := make([]complex128, len(v))
	l.MulVecTo(out, v)
	return maths.Unvec(out, rho.Rows())
}

func TestCommutator(t *testing.T) {
	h := types.MustOperator([][]complex128{{1, 0.5i}, {-0.5i, -1}})
	l, err := Liouvillian(h, nil)
	require.NoError(t, err)
	require.Equal(t, 4, l.Rows())

	rho := maths.NewDenseMatrixFrom([][]complex128{{0.3, 0.1 + 0.2i}, {0.1 - 0.2i, 0.7}})
	got := apply(l, rho)

	hr, _ := maths.Mul(h.Matrix, rho)
	rh, _ := maths.Mul(rho, h.Matrix)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want := -1i * (hr.Get(i, j) - rh.Get(i, j))
			assert.InDelta(t, 0, cmplx.Abs(want-got.Get(i, j)), 1e-12)
		}
	}
}

func TestDecay(t *testing.T) {
	// σ- 衰减：激发态布居以速率 1 流向基态
	h := types.MustOperator([][]complex128{{0, 0}, {0, 1}})
	sm := types.MustOperator([][]complex128{{0, 1}, {0, 0}})
	l, err := Liouvillian(h, []*types.Operator{sm})
	require.NoError(t, err)

	rho := maths.NewDenseMatrixFrom([][]complex128{{0, 0}, {0, 1}})
	got := apply(l, rho)
	assert.InDelta(t, 1, real(got.Get(0, 0)), 1e-12)
	assert.InDelta(t, -1, real(got.Get(1, 1)), 1e-12)

	// 相干项以速率 ½ 衰减（另有 -i·ω 的转动）
	coh := maths.NewDenseMatrixFrom([][]complex128{{0, 1}, {0, 0}})
	got = apply(l, coh)
	assert.InDelta(t, 0, cmplx.Abs(got.Get(0, 1)-complex(-0.5, 1)), 1e-12)

	// 迹守恒：Σ_a L[(a,a), :] = 0
	for c := 0; c < 4; c++ {
		var s complex128
		for a := 0; a < 2; a++ {
			s += l.Get(maths.PairIndex(2, a, a), c)
		}
		assert.InDelta(t, 0, cmplx.Abs(s), 1e-12)
	}
}

func TestDimensionMismatch(t *testing.T) {
	h := types.NewOperator(2)
	_, err := Liouvillian(h, []*types.Operator{types.NewOperator(3)})
	assert.ErrorIs(t, err, types.ErrDimensionMismatch)
}

func TestTinyEnergyScaleKept(t *testing.T) {
	s := 1e-15
	h := types.MustOperator([][]complex128{{0, 0}, {0, complex(s, 0)}})
	l, err := Liouvillian(h, nil)
	require.NoError(t, err)
	// 对角 H 只有 a≠b 的相位项
	assert.Equal(t, 2, l.NonZeroCount())
	assert.InDelta(t, 0, cmplx.Abs(l.Get(maths.PairIndex(2, 0, 1), maths.PairIndex(2, 0, 1))-complex(0, s)), 1e-30)
}

func TestSparseStructure(t *testing.T) {
	h := types.MustOperator([][]complex128{{1, 0, 0}, {0, 2, 0}, {0, 0, 4}})
	sm := types.MustOperator([][]complex128{{0, 1, 0}, {0, 0, 0}, {0, 0, 0}})
	l, err := Liouvillian(h, []*types.Operator{sm})
	require.NoError(t, err)
	// 相位项 6 个（a≠b）；反对易子项落在 5 个对角元上，只有 (1,1) 不与相位项重合；J̄⊗J 1 个
	assert.Equal(t, 8, l.NonZeroCount())
	assert.Equal(t, complex128(1), l.Get(maths.PairIndex(3, 0, 0), maths.PairIndex(3, 1, 1)))
}
