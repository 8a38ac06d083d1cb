package maths

import (
	"errors"
	"math/rand"
	"testing"
)

// TestLuDenseSolve 验证实数稠密矩阵的 LU 分解和求解过程。
func TestLuDenseSolve(t *testing.T) {
	// A = [[2, 3, 1],
	//      [1, 2, 3],
	//      [3, 1, 2]]
	// b = [9, 6, 8]
	// 预期解 x = [35/18, 29/18, 5/18]
	a := NewDenseMatrixFrom([][]float64{
		{2, 3, 1},
		{1, 2, 3},
		{3, 1, 2},
	})
	b := NewDenseVectorWithData([]float64{9, 6, 8})

	lu, err := NewLU[float64](3)
	if err != nil {
		t.Fatalf("NewLU failed: %v", err)
	}
	if err := lu.Decompose(a); err != nil {
		t.Fatalf("Decomposition failed: %v", err)
	}

	x := NewDenseVector[float64](3)
	if err := lu.SolveReuse(b, x); err != nil {
		t.Fatalf("SolveReuse failed: %v", err)
	}

	expected := []float64{35.0 / 18.0, 29.0 / 18.0, 5.0 / 18.0}
	for i := 0; i < 3; i++ {
		if Abs(x.Get(i)-expected[i]) > 1e-9 {
			t.Errorf("Element x[%d] is incorrect. Got %f, expected %f", i, x.Get(i), expected[i])
		}
	}
}

// TestLuDenseSolveComplex 验证复数稠密矩阵的 LU 分解和求解过程。
func TestLuDenseSolveComplex(t *testing.T) {
	// A = [[1+2i, 2+3i],
	//      [3+4i, 4+5i]]
	// x = [1+i, 2-i]
	a := NewDenseMatrixFrom([][]complex128{
		{1 + 2i, 2 + 3i},
		{3 + 4i, 4 + 5i},
	})
	want := []complex128{1 + 1i, 2 - 1i}
	b := NewDenseVector[complex128](2)
	a.MulVecTo(b.ToDense(), want)

	lu, err := NewLU[complex128](2)
	if err != nil {
		t.Fatalf("NewLU failed for complex: %v", err)
	}
	if err := lu.Decompose(a); err != nil {
		t.Fatalf("Decomposition failed for complex: %v", err)
	}

	x := NewDenseVector[complex128](2)
	if err := lu.SolveReuse(b, x); err != nil {
		t.Fatalf("SolveReuse failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if Abs(x.Get(i)-want[i]) > 1e-9 {
			t.Errorf("Element x[%d] is incorrect. Got %v, expected %v", i, x.Get(i), want[i])
		}
	}
}

// TestLuDenseSingular 验证 Decompose 能识别奇异矩阵。
func TestLuDenseSingular(t *testing.T) {
	a := NewDenseMatrixFrom([][]float64{
		{1, 2, 3},
		{4, 5, 6},
		{0, 0, 0},
	})
	lu, err := NewLU[float64](3)
	if err != nil {
		t.Fatalf("NewLU failed: %v", err)
	}
	if err := lu.Decompose(a); !errors.Is(err, ErrSingular) {
		t.Fatalf("Decompose should fail with ErrSingular, got %v", err)
	}
}

// TestInverseComplex 验证 A*A⁻¹ = I。
func TestInverseComplex(t *testing.T) {
	a := NewDenseMatrixFrom([][]complex128{
		{2, 1i, 0},
		{-1i, 3, 1},
		{0, 1, 4 + 1i},
	})
	inv, err := Inverse(a)
	if err != nil {
		t.Fatalf("Inverse failed: %v", err)
	}
	prod, err := Mul(a, inv)
	if err != nil {
		t.Fatalf("Mul failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var want complex128
			if i == j {
				want = 1
			}
			if Abs(prod.Get(i, j)-want) > 1e-12 {
				t.Errorf("(A*A⁻¹)[%d,%d] = %v, expected %v", i, j, prod.Get(i, j), want)
			}
		}
	}
}

// BenchmarkLuDenseDecompose 测试对复数稠密矩阵进行 LU 分解的性能。
func BenchmarkLuDenseDecompose(b *testing.B) {
	size := 64
	m := NewDenseMatrix[complex128](size, size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			m.Set(i, j, complex(rand.Float64(), rand.Float64()))
		}
		m.Increment(i, i, complex(float64(size), 0))
	}
	lu, err := NewLU[complex128](size)
	if err != nil {
		b.Fatalf("NewLU failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := lu.Decompose(m); err != nil {
			b.Fatalf("Decomposition failed during benchmark: %v", err)
		}
	}
}
