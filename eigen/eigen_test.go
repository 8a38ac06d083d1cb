package eigen

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redfield/maths"
	"redfield/types"
)

func assertMatrixNear(t *testing.T, want, got maths.Matrix[complex128], tol float64) {
	t.Helper()
	require.Equal(t, want.Rows(), got.Rows())
	require.Equal(t, want.Cols(), got.Cols())
	for i := 0; i < want.Rows(); i++ {
		for j := 0; j < want.Cols(); j++ {
			assert.InDelta(t, 0, cmplx.Abs(want.Get(i, j)-got.Get(i, j)), tol, "(%d,%d)", i, j)
		}
	}
}

func TestDecomposePauliY(t *testing.T) {
	sy := types.MustOperator([][]complex128{{0, -1i}, {1i, 0}})
	b, err := Decompose(sy)
	require.NoError(t, err)
	require.Len(t, b.Evals, 2)
	assert.InDelta(t, -1, b.Evals[0], 1e-12)
	assert.InDelta(t, 1, b.Evals[1], 1e-12)

	d, err := b.ToEigenbasis(sy.Matrix)
	require.NoError(t, err)
	assertMatrixNear(t, maths.NewDenseMatrixFrom([][]complex128{{-1, 0}, {0, 1}}), d, 1e-10)

	for _, k := range b.Kets() {
		assert.InDelta(t, 1, k.Norm(), 1e-12)
	}
}

func TestDecomposeAscending(t *testing.T) {
	h := types.MustOperator([][]complex128{
		{3, 0.2 + 0.1i, 0},
		{0.2 - 0.1i, -1, 0.5i},
		{0, -0.5i, 1},
	})
	b, err := Decompose(h)
	require.NoError(t, err)
	for i := 1; i < len(b.Evals); i++ {
		assert.Less(t, b.Evals[i-1], b.Evals[i])
	}
	// 迹不变
	var sum float64
	for _, e := range b.Evals {
		sum += e
	}
	assert.InDelta(t, 3, sum, 1e-10)

	d, err := b.ToEigenbasis(h.Matrix)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = b.Evals[i]
			}
			assert.InDelta(t, 0, cmplx.Abs(d.Get(i, j)-complex(want, 0)), 1e-10)
		}
	}
}

func TestDecomposeDegenerate(t *testing.T) {
	h := types.MustOperator([][]complex128{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 2, 1i},
		{0, 0, -1i, 2},
	})
	b, err := Decompose(h)
	require.NoError(t, err)
	assert.InDelta(t, 1, b.Evals[0], 1e-12)
	assert.InDelta(t, 1, b.Evals[1], 1e-12)
	assert.InDelta(t, 1, b.Evals[2], 1e-12)
	assert.InDelta(t, 3, b.Evals[3], 1e-12)

	id, err := maths.Mul(b.UInv, b.U)
	require.NoError(t, err)
	assertMatrixNear(t, maths.NewIdentity[complex128](4), id, 1e-10)
}

func TestRoundTrip(t *testing.T) {
	h := types.MustOperator([][]complex128{{0.5, 0.3 - 0.7i}, {0.3 + 0.7i, -0.25}})
	b, err := Decompose(h)
	require.NoError(t, err)

	x := maths.NewDenseMatrixFrom([][]complex128{{1, 2i}, {-3, 0.5 + 0.5i}})
	y, err := b.ToEigenbasis(x)
	require.NoError(t, err)
	back, err := b.FromEigenbasis(y)
	require.NoError(t, err)
	assertMatrixNear(t, x, back, 1e-12)

	dst := maths.NewDenseMatrix[complex128](2, 2)
	tmp := maths.NewDenseMatrix[complex128](2, 2)
	require.NoError(t, b.FromEigenbasisTo(dst, tmp, y))
	assertMatrixNear(t, x, dst, 1e-12)
}

// scaledHamiltonian 数值构造 H = Q·diag(s·[1,2,3,4])·Q†，Q 为两个二维酉矩阵的张量积
func scaledHamiltonian(t *testing.T, s float64) *types.Operator {
	t.Helper()
	c, sn := complex(math.Cos(0.3), 0), complex(math.Sin(0.3), 0)
	u := maths.NewDenseMatrixFrom([][]complex128{{complex(1/math.Sqrt2, 0), complex(0, 1/math.Sqrt2)}, {complex(0, 1/math.Sqrt2), complex(1/math.Sqrt2, 0)}})
	v := maths.NewDenseMatrixFrom([][]complex128{{c, -sn}, {sn, c}})
	q := maths.Kron(1, u, v)
	d := maths.NewDenseMatrix[complex128](4, 4)
	for i := 0; i < 4; i++ {
		d.Set(i, i, complex(s*float64(i+1), 0))
	}
	qd, err := maths.Mul[complex128](q, d)
	require.NoError(t, err)
	h, err := maths.Mul(qd, maths.Dagger[complex128](q))
	require.NoError(t, err)
	return &types.Operator{Matrix: h}
}

func TestDecomposeLargeScale(t *testing.T) {
	for _, s := range []float64{1, 1e6, 1e9} {
		b, err := Decompose(scaledHamiltonian(t, s))
		require.NoError(t, err, "scale %g", s)
		for i, e := range b.Evals {
			assert.InDelta(t, s*float64(i+1), e, 1e-9*s, "scale %g eval %d", s, i)
		}
	}
}

func TestDecomposeErrors(t *testing.T) {
	_, err := Decompose(types.MustOperator([][]complex128{{0, 1}, {0, 0}}))
	assert.ErrorIs(t, err, types.ErrNotHermitian)

	b, err := Decompose(types.MustOperator([][]complex128{{1, 0}, {0, 2}}))
	require.NoError(t, err)
	_, err = b.ToEigenbasis(maths.NewDenseMatrix[complex128](3, 3))
	assert.ErrorIs(t, err, types.ErrDimensionMismatch)
	assert.False(t, math.IsNaN(b.Evals[0]))
}
