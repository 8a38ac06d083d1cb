package maths

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch 矩阵或向量维度不匹配
var ErrDimensionMismatch = errors.New("dimension mismatch")

// Mul 计算矩阵乘积 a*b（结果为稠密矩阵）
// 逐行遍历a的非零元素，稀疏输入同样适用
func Mul[T Number](a, b Matrix[T]) (Matrix[T], error) {
	if a.Cols() != b.Rows() {
		return nil, fmt.Errorf("mul %dx%d * %dx%d: %w", a.Rows(), a.Cols(), b.Rows(), b.Cols(), ErrDimensionMismatch)
	}
	result := NewDenseMatrix[T](a.Rows(), b.Cols())
	if err := MulTo(result, a, b); err != nil {
		return nil, err
	}
	return result, nil
}

// MulTo 计算 dst = a*b，dst 必须预先分配（不可与a、b共用存储）
func MulTo[T Number](dst, a, b Matrix[T]) error {
	if a.Cols() != b.Rows() || dst.Rows() != a.Rows() || dst.Cols() != b.Cols() {
		return fmt.Errorf("mul into %dx%d from %dx%d * %dx%d: %w",
			dst.Rows(), dst.Cols(), a.Rows(), a.Cols(), b.Rows(), b.Cols(), ErrDimensionMismatch)
	}
	dst.Zero()
	for i := 0; i < a.Rows(); i++ {
		cols, vals := a.GetRow(i)
		for k, c := range cols {
			aik := vals[k]
			for j := 0; j < b.Cols(); j++ {
				if v := b.Get(c, j); v != 0 {
					dst.Increment(i, j, aik*v)
				}
			}
		}
	}
	return nil
}

// Add 计算 a+b；两者均为稀疏矩阵时结果保持稀疏
func Add[T Number](a, b Matrix[T]) (Matrix[T], error) {
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return nil, fmt.Errorf("add %dx%d + %dx%d: %w", a.Rows(), a.Cols(), b.Rows(), b.Cols(), ErrDimensionMismatch)
	}
	sa, okA := a.(SparseMatrix[T])
	sb, okB := b.(SparseMatrix[T])
	if okA && okB {
		return AddSparse(sa, sb), nil
	}
	result := NewDenseMatrix[T](a.Rows(), a.Cols())
	a.Copy(result)
	for i := 0; i < b.Rows(); i++ {
		cols, vals := b.GetRow(i)
		for k, c := range cols {
			result.Increment(i, c, vals[k])
		}
	}
	return result, nil
}

// AddSparse 按行归并两个CSR矩阵，零判定阈值取两者中较小者
func AddSparse[T Number](a, b SparseMatrix[T]) SparseMatrix[T] {
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		panic(fmt.Sprintf("sparse add: %dx%d + %dx%d", a.Rows(), a.Cols(), b.Rows(), b.Cols()))
	}
	tol := min(a.Tolerance(), b.Tolerance())
	result := NewSparseMatrixTol[T](a.Rows(), a.Cols(), tol)
	for i := 0; i < a.Rows(); i++ {
		ca, va := a.GetRow(i)
		cb, vb := b.GetRow(i)
		cols := make([]int, 0, len(ca)+len(cb))
		vals := make([]T, 0, len(ca)+len(cb))
		p, q := 0, 0
		for p < len(ca) || q < len(cb) {
			switch {
			case q >= len(cb) || (p < len(ca) && ca[p] < cb[q]):
				cols, vals = append(cols, ca[p]), append(vals, va[p])
				p++
			case p >= len(ca) || cb[q] < ca[p]:
				cols, vals = append(cols, cb[q]), append(vals, vb[q])
				q++
			default:
				cols, vals = append(cols, ca[p]), append(vals, va[p]+vb[q])
				p++
				q++
			}
		}
		result.AppendRow(cols, vals)
	}
	return result
}

// Transpose 返回转置矩阵
func Transpose[T Number](m Matrix[T]) Matrix[T] {
	result := NewDenseMatrix[T](m.Cols(), m.Rows())
	for i := 0; i < m.Rows(); i++ {
		cols, vals := m.GetRow(i)
		for k, c := range cols {
			result.Set(c, i, vals[k])
		}
	}
	return result
}

// Dagger 返回共轭转置矩阵
func Dagger[T Number](m Matrix[T]) Matrix[T] {
	result := NewDenseMatrix[T](m.Cols(), m.Rows())
	for i := 0; i < m.Rows(); i++ {
		cols, vals := m.GetRow(i)
		for k, c := range cols {
			result.Set(c, i, Conj(vals[k]))
		}
	}
	return result
}

// Trace 返回方阵的迹
func Trace[T Number](m Matrix[T]) T {
	var sum T
	n := min(m.Rows(), m.Cols())
	for i := 0; i < n; i++ {
		sum += m.Get(i, i)
	}
	return sum
}

// Inverse 求方阵的逆：LU分解后对单位阵逐列求解
func Inverse[T Number](m Matrix[T]) (Matrix[T], error) {
	if !m.IsSquare() {
		return nil, fmt.Errorf("inverse of %dx%d: %w", m.Rows(), m.Cols(), ErrDimensionMismatch)
	}
	n := m.Rows()
	lu, err := NewLU[T](n)
	if err != nil {
		return nil, err
	}
	if err := lu.Decompose(m); err != nil {
		return nil, fmt.Errorf("inverse: %w", err)
	}
	inv := NewDenseMatrix[T](n, n)
	e := NewDenseVector[T](n)
	x := NewDenseVector[T](n)
	for j := 0; j < n; j++ {
		e.Zero()
		e.Set(j, 1)
		if err := lu.SolveReuse(e, x); err != nil {
			return nil, fmt.Errorf("inverse: %w", err)
		}
		for i := 0; i < n; i++ {
			inv.Set(i, j, x.Get(i))
		}
	}
	return inv, nil
}

// Kron 计算 alpha·(a⊗b)，结果为稀疏矩阵（仅丢弃精确为零的元素）
// (a⊗b)[i*rb+k, j*cb+l] = a[i,j]*b[k,l]，按结果行的顺序逐行追加
func Kron[T Number](alpha T, a, b Matrix[T]) SparseMatrix[T] {
	rb, cb := b.Rows(), b.Cols()
	result := NewSparseMatrixTol[T](a.Rows()*rb, a.Cols()*cb, 0)
	var cols []int
	var vals []T
	for i := 0; i < a.Rows(); i++ {
		colsA, valsA := a.GetRow(i)
		for k := 0; k < rb; k++ {
			colsB, valsB := b.GetRow(k)
			cols, vals = cols[:0], vals[:0]
			for p, j := range colsA {
				for q, l := range colsB {
					cols = append(cols, j*cb+l)
					vals = append(vals, alpha*valsA[p]*valsB[q])
				}
			}
			result.AppendRow(cols, vals)
		}
	}
	return result
}

// MaxAbs 返回矩阵元素模的最大值
func MaxAbs[T Number](m Matrix[T]) float64 {
	var mx float64
	for i := 0; i < m.Rows(); i++ {
		_, vals := m.GetRow(i)
		for _, v := range vals {
			mx = max(mx, Abs(v))
		}
	}
	return mx
}

// Sparsify 转换为CSR稀疏矩阵，丢弃模不超过 tol 的元素
func Sparsify[T Number](m Matrix[T], tol float64) SparseMatrix[T] {
	result := NewSparseMatrixTol[T](m.Rows(), m.Cols(), tol)
	for i := 0; i < m.Rows(); i++ {
		result.AppendRow(m.GetRow(i))
	}
	return result
}

// PairIndex 返回 Liouville 空间中 (a,b) 的列优先向量化索引 a + n*b
func PairIndex(n, a, b int) int {
	return a + n*b
}

// Vec 按列优先将 n×n 矩阵展开为长度 n² 的切片
func Vec[T Number](m Matrix[T]) []T {
	v := make([]T, m.Rows()*m.Cols())
	VecTo(v, m)
	return v
}

// VecTo 按列优先展开写入 dst
func VecTo[T Number](dst []T, m Matrix[T]) {
	rows := m.Rows()
	if len(dst) != rows*m.Cols() {
		panic(fmt.Sprintf("vec: dst length %d, matrix %dx%d", len(dst), rows, m.Cols()))
	}
	clear(dst)
	for i := 0; i < rows; i++ {
		cols, vals := m.GetRow(i)
		for k, c := range cols {
			dst[i+rows*c] = vals[k]
		}
	}
}

// Unvec 将长度 n² 的列优先切片还原为 n×n 稠密矩阵
func Unvec[T Number](v []T, n int) Matrix[T] {
	m := NewDenseMatrix[T](n, n)
	UnvecTo(m, v)
	return m
}

// UnvecTo 将列优先切片写入预分配的矩阵 dst
func UnvecTo[T Number](dst Matrix[T], v []T) {
	rows, cols := dst.Rows(), dst.Cols()
	if len(v) != rows*cols {
		panic(fmt.Sprintf("unvec: vector length %d, matrix %dx%d", len(v), rows, cols))
	}
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			dst.Set(i, j, v[i+rows*j])
		}
	}
}
