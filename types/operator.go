package types

import (
	"fmt"
	"math/cmplx"

	"redfield/maths"
)

// Operator 希尔伯特空间上的算符（N×N 复方阵，稠密或稀疏存储）
type Operator struct {
	maths.Matrix[complex128]
}

// NewOperator 创建 n 维零算符（稠密）
func NewOperator(n int) *Operator {
	return &Operator{Matrix: maths.NewDenseMatrix[complex128](n, n)}
}

// NewOperatorFrom 由二维切片创建算符，非方阵返回错误
func NewOperatorFrom(dense [][]complex128) (*Operator, error) {
	n := len(dense)
	for i, row := range dense {
		if len(row) != n {
			return nil, &ConfigError{Op: "operator", Err: fmt.Errorf("row %d has %d entries, want %d: %w", i, len(row), n, ErrNotSquare)}
		}
	}
	return &Operator{Matrix: maths.NewDenseMatrixFrom(dense)}, nil
}

// WrapOperator 包装已有矩阵（不复制），非方阵返回错误
func WrapOperator(m maths.Matrix[complex128]) (*Operator, error) {
	if !m.IsSquare() {
		return nil, &ConfigError{Op: "operator", Err: fmt.Errorf("%dx%d: %w", m.Rows(), m.Cols(), ErrNotSquare)}
	}
	return &Operator{Matrix: m}, nil
}

// MustOperator 同 NewOperatorFrom，出错时 panic，用于常量算符
func MustOperator(dense [][]complex128) *Operator {
	op, err := NewOperatorFrom(dense)
	if err != nil {
		panic(err)
	}
	return op
}

// Dim 返回希尔伯特空间维度 N
func (o *Operator) Dim() int {
	return o.Rows()
}

// Clone 深拷贝（结果为稠密存储）
func (o *Operator) Clone() *Operator {
	c := NewOperator(o.Dim())
	o.Copy(c.Matrix)
	return c
}

// Dag 返回共轭转置
func (o *Operator) Dag() *Operator {
	return &Operator{Matrix: maths.Dagger(o.Matrix)}
}

// IsHermitian 判断 |O[i,j] - conj(O[j,i])| <= tol·max|O| 是否对所有元素成立
// 容差相对于最大元素的模，与算符的能量尺度无关
func (o *Operator) IsHermitian(tol float64) bool {
	n := o.Dim()
	tol *= maths.MaxAbs(o.Matrix)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if cmplx.Abs(o.Get(i, j)-cmplx.Conj(o.Get(j, i))) > tol {
				return false
			}
		}
	}
	return true
}

// Trace 返回迹
func (o *Operator) Trace() complex128 {
	return maths.Trace(o.Matrix)
}

// Expect 返回期望值 Tr(O·ρ)
func (o *Operator) Expect(rho maths.Matrix[complex128]) complex128 {
	var sum complex128
	n := o.Dim()
	for i := 0; i < n; i++ {
		cols, vals := o.GetRow(i)
		for k, c := range cols {
			sum += vals[k] * rho.Get(c, i)
		}
	}
	return sum
}

// CheckDims 校验所有算符与 n 维一致
func CheckDims(op string, n int, ops ...*Operator) error {
	for i, o := range ops {
		if o == nil {
			return &ConfigError{Op: op, Err: fmt.Errorf("operator %d is nil: %w", i, ErrDimensionMismatch)}
		}
		if !o.IsSquare() || o.Dim() != n {
			return &ConfigError{Op: op, Err: fmt.Errorf("operator %d is %dx%d, want %dx%d: %w", i, o.Rows(), o.Cols(), n, n, ErrDimensionMismatch)}
		}
	}
	return nil
}
