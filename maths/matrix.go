package maths

import (
	"fmt"
	"strings"
)

// denseMatrix 稠密矩阵实现（行优先存储所有元素）
type denseMatrix[T Number] struct {
	DataManager[T]
	rows, cols int
}

// NewDenseMatrix 创建指定维度的空稠密矩阵
func NewDenseMatrix[T Number](rows, cols int) Matrix[T] {
	if rows < 0 || cols < 0 {
		panic("invalid matrix dimensions: cannot be negative")
	}
	return &denseMatrix[T]{
		DataManager: NewDataManager[T](rows * cols),
		rows:        rows,
		cols:        cols,
	}
}

// NewDenseMatrixFrom 由二维切片创建稠密矩阵（复制数据）
func NewDenseMatrixFrom[T Number](dense [][]T) Matrix[T] {
	rows := len(dense)
	cols := 0
	if rows > 0 {
		cols = len(dense[0])
	}
	m := NewDenseMatrix[T](rows, cols)
	m.BuildFromDense(dense)
	return m
}

// NewIdentity 创建n阶单位矩阵
func NewIdentity[T Number](n int) Matrix[T] {
	m := NewDenseMatrix[T](n, n)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// index 计算行优先索引（越界panic）
func (m *denseMatrix[T]) index(row, col int) int {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Sprintf("matrix index out of range: row=%d, col=%d (rows=%d, cols=%d)", row, col, m.rows, m.cols))
	}
	return row*m.cols + col
}

// Rows 返回矩阵行数
func (m *denseMatrix[T]) Rows() int {
	return m.rows
}

// Cols 返回矩阵列数
func (m *denseMatrix[T]) Cols() int {
	return m.cols
}

// IsSquare 判断是否为方阵
func (m *denseMatrix[T]) IsSquare() bool {
	return m.rows == m.cols
}

// Get 获取指定行列元素值
func (m *denseMatrix[T]) Get(row, col int) T {
	return m.DataManager.Get(m.index(row, col))
}

// Set 设置指定行列元素值
func (m *denseMatrix[T]) Set(row, col int, value T) {
	m.DataManager.Set(m.index(row, col), value)
}

// Increment 增量更新矩阵元素
func (m *denseMatrix[T]) Increment(row, col int, value T) {
	m.DataManager.Increment(m.index(row, col), value)
}

// GetRow 获取指定行的非零元素（返回：列索引切片+值切片）
func (m *denseMatrix[T]) GetRow(row int) ([]int, []T) {
	if row < 0 || row >= m.rows {
		panic(fmt.Sprintf("row index out of range: %d (rows: %d)", row, m.rows))
	}
	var zero T
	data := m.DataPtr()[row*m.cols : (row+1)*m.cols]
	cols := make([]int, 0, m.cols)
	values := make([]T, 0, m.cols)
	for j, v := range data {
		if v != zero {
			cols = append(cols, j)
			values = append(values, v)
		}
	}
	return cols, values
}

// ToDense 转换为二维稠密切片
func (m *denseMatrix[T]) ToDense() [][]T {
	data := m.DataPtr()
	dense := make([][]T, m.rows)
	for i := range dense {
		dense[i] = make([]T, m.cols)
		copy(dense[i], data[i*m.cols:(i+1)*m.cols])
	}
	return dense
}

// BuildFromDense 从稠密矩阵构建（覆盖原有数据）
func (m *denseMatrix[T]) BuildFromDense(dense [][]T) {
	if len(dense) != m.rows {
		panic(fmt.Sprintf("dense matrix dimension mismatch: expected %d rows, got %d", m.rows, len(dense)))
	}
	data := m.DataPtr()
	for i, row := range dense {
		if len(row) != m.cols {
			panic(fmt.Sprintf("dense matrix dimension mismatch: row %d has %d cols, expected %d", i, len(row), m.cols))
		}
		copy(data[i*m.cols:], row)
	}
}

// Copy 复制自身数据到目标矩阵（支持稠密/稀疏等类型）
func (m *denseMatrix[T]) Copy(a Matrix[T]) {
	if a.Rows() != m.rows || a.Cols() != m.cols {
		panic(fmt.Sprintf("dimension mismatch: source %dx%d, target %dx%d", m.rows, m.cols, a.Rows(), a.Cols()))
	}
	switch target := a.(type) {
	case *denseMatrix[T]:
		m.DataManager.Copy(target.DataManager)
	default:
		// 异类型逐个元素复制（兼容稀疏矩阵）
		a.Zero()
		var zero T
		for i := 0; i < m.rows; i++ {
			for j := 0; j < m.cols; j++ {
				if val := m.Get(i, j); val != zero {
					a.Set(i, j, val)
				}
			}
		}
	}
}

// SwapRows 交换两行
func (m *denseMatrix[T]) SwapRows(row1, row2 int) {
	if row1 == row2 {
		return
	}
	data := m.DataPtr()
	r1 := data[m.index(row1, 0) : m.index(row1, 0)+m.cols]
	r2 := data[m.index(row2, 0) : m.index(row2, 0)+m.cols]
	for j := range r1 {
		r1[j], r2[j] = r2[j], r1[j]
	}
}

// MulVecTo 计算 dst = A*x
func (m *denseMatrix[T]) MulVecTo(dst, x []T) {
	if len(x) != m.cols || len(dst) != m.rows {
		panic(fmt.Sprintf("vector dimension mismatch: x=%d, dst=%d, matrix %dx%d", len(x), len(dst), m.rows, m.cols))
	}
	data := m.DataPtr()
	for i := 0; i < m.rows; i++ {
		var sum T
		row := data[i*m.cols : (i+1)*m.cols]
		for j, v := range row {
			sum += v * x[j]
		}
		dst[i] = sum
	}
}

// String 格式化输出矩阵
func (m *denseMatrix[T]) String() string {
	var sb strings.Builder
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			fmt.Fprintf(&sb, "%10.4g ", m.Get(i, j))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
