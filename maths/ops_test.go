package maths

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVecColumnMajor(t *testing.T) {
	m := NewDenseMatrixFrom([][]complex128{
		{1, 3},
		{2, 4},
	})
	// (a,b) ↦ a + n*b
	assert.Equal(t, []complex128{1, 2, 3, 4}, Vec(m))
	assert.Equal(t, 3, PairIndex(2, 1, 1))
	assert.Equal(t, m.ToDense(), Unvec(Vec(m), 2).ToDense())
}

// vec(A X B) = (Bᵀ ⊗ A) vec(X)
func TestKronMatchesVecIdentity(t *testing.T) {
	a := NewDenseMatrixFrom([][]complex128{{1, 2i}, {0, 3}})
	x := NewDenseMatrixFrom([][]complex128{{1, -1}, {2i, 5}})
	b := NewDenseMatrixFrom([][]complex128{{0, 1}, {1 - 1i, 2}})

	ax, err := Mul(a, x)
	require.NoError(t, err)
	axb, err := Mul(ax, b)
	require.NoError(t, err)

	super := Kron(1, Transpose(b), a)
	got := make([]complex128, 4)
	super.MulVecTo(got, Vec(x))
	want := Vec(axb)
	for i := range want {
		assert.InDelta(t, 0, Abs(got[i]-want[i]), 1e-12, "index %d", i)
	}
}

func TestKronScaledSparse(t *testing.T) {
	id := NewIdentity[complex128](2)
	h := NewDenseMatrixFrom([][]complex128{{1, 2}, {0, 3}})
	k := Kron(-1i, id, h)
	// I⊗H 为块对角，零元素不存储
	assert.Equal(t, 6, k.NonZeroCount())
	assert.Equal(t, complex(0, -2), k.Get(0, 1))
	assert.Equal(t, complex(0, -3), k.Get(3, 3))
	assert.Equal(t, complex128(0), k.Get(0, 2))
}

func TestMaxAbs(t *testing.T) {
	m := NewDenseMatrixFrom([][]complex128{{1, -3i}, {2, 0}})
	assert.Equal(t, 3.0, MaxAbs(m))
	assert.Equal(t, 0.0, MaxAbs(NewSparseMatrix[float64](3, 3)))
}

func TestAddSparseKeepsSmallerTolerance(t *testing.T) {
	a := NewSparseMatrixTol[float64](1, 2, 1e-3)
	a.AppendRow([]int{0}, []float64{1})
	b := NewSparseMatrixTol[float64](1, 2, 1e-20)
	b.AppendRow([]int{1}, []float64{1e-10})

	sum := AddSparse(a, b)
	assert.Equal(t, 1e-20, sum.Tolerance())
	assert.Equal(t, 1e-10, sum.Get(0, 1))
	assert.Panics(t, func() { AddSparse(a, NewSparseMatrix[float64](2, 2)) })
}

func TestAddSparseKeepsSparse(t *testing.T) {
	a := Sparsify(NewDenseMatrixFrom([][]float64{{1, 0}, {0, 2}}), Epsilon)
	b := Sparsify(NewDenseMatrixFrom([][]float64{{0, 3}, {0, -2}}), Epsilon)

	sum, err := Add[float64](a, b)
	require.NoError(t, err)
	_, ok := sum.(SparseMatrix[float64])
	require.True(t, ok, "sum of two sparse matrices should stay sparse")
	assert.Equal(t, [][]float64{{1, 3}, {0, 0}}, sum.ToDense())
	assert.Equal(t, 2, sum.NonZeroCount())

	dense := NewDenseMatrix[float64](2, 2)
	_, err = Add[float64](dense, NewDenseMatrix[float64](3, 3))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestDaggerAndTrace(t *testing.T) {
	m := NewDenseMatrixFrom([][]complex128{
		{1 + 1i, 2},
		{3i, 4},
	})
	d := Dagger(m)
	assert.Equal(t, [][]complex128{{1 - 1i, -3i}, {2, 4}}, d.ToDense())
	assert.Equal(t, complex128(5+1i), Trace(m))
}

func TestMulDimensionMismatch(t *testing.T) {
	_, err := Mul(NewDenseMatrix[float64](2, 3), NewDenseMatrix[float64](2, 3))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
