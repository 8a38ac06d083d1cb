package maths

import (
	"fmt"
	"sort"
	"strings"
)

// sparseMatrix 稀疏矩阵数据结构
// 使用CSR (Compressed Sparse Row) 格式存储，基于DataManager管理非零值
type sparseMatrix[T Number] struct {
	rows, cols int
	rowPtr     []int          // 行指针：rowPtr[i] = 第i行非零元素在colInd/values中的起始索引
	colInd     []int          // 列索引：存储非零元素的列号
	values     DataManager[T] // 非零元素值：与colInd一一对应
	tol        float64        // 零判定阈值
	filled     int            // AppendRow 已写入的行数
}

// SparseMatrix 稀疏矩阵扩展接口（支持按行顺序快速构建）
type SparseMatrix[T Number] interface {
	Matrix[T]
	// AppendRow 按行顺序追加一行（列索引须递增），用于一次性构建
	AppendRow(cols []int, values []T)
	// Tolerance 返回零判定阈值
	Tolerance() float64
}

// NewSparseMatrix 创建新的稀疏矩阵（零判定阈值为 Epsilon）
func NewSparseMatrix[T Number](rows, cols int) SparseMatrix[T] {
	return NewSparseMatrixTol[T](rows, cols, Epsilon)
}

// NewSparseMatrixTol 创建指定零判定阈值的稀疏矩阵
func NewSparseMatrixTol[T Number](rows, cols int, tol float64) SparseMatrix[T] {
	if rows < 0 || cols < 0 {
		panic("invalid matrix dimensions: cannot be negative")
	}
	return &sparseMatrix[T]{
		rows:   rows,
		cols:   cols,
		rowPtr: make([]int, rows+1), // 多一个元素用于存储结束位置
		colInd: make([]int, 0),
		values: NewDataManager[T](0),
		tol:    tol,
	}
}

// checkIndex 越界检查
func (m *sparseMatrix[T]) checkIndex(row, col int) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Sprintf("matrix index out of range: row=%d, col=%d (rows=%d, cols=%d)", row, col, m.rows, m.cols))
	}
}

// search 二分查找列索引在当前行的位置
func (m *sparseMatrix[T]) search(row, col int) int {
	start := m.rowPtr[row]
	end := m.rowPtr[row+1]
	return sort.Search(end-start, func(i int) bool {
		return m.colInd[start+i] >= col
	}) + start
}

// Tolerance 返回零判定阈值
func (m *sparseMatrix[T]) Tolerance() float64 {
	return m.tol
}

// Set 设置矩阵元素值（非零则插入/更新，零则删除）
func (m *sparseMatrix[T]) Set(row, col int, value T) {
	m.checkIndex(row, col)
	pos := m.search(row, col)
	if pos < m.rowPtr[row+1] && m.colInd[pos] == col {
		if IsZero(value, m.tol) {
			m.deleteElement(row, pos)
		} else {
			m.values.Set(pos, value)
		}
	} else if !IsZero(value, m.tol) {
		m.insertElement(row, col, value, pos)
	}
}

// Increment 增量更新矩阵元素（累加后为零则删除）
func (m *sparseMatrix[T]) Increment(row, col int, value T) {
	m.checkIndex(row, col)
	pos := m.search(row, col)
	if pos < m.rowPtr[row+1] && m.colInd[pos] == col {
		newVal := m.values.Get(pos) + value
		if IsZero(newVal, m.tol) {
			m.deleteElement(row, pos)
		} else {
			m.values.Set(pos, newVal)
		}
	} else if !IsZero(value, m.tol) {
		m.insertElement(row, col, value, pos)
	}
}

// Get 获取矩阵元素值
func (m *sparseMatrix[T]) Get(row, col int) T {
	m.checkIndex(row, col)
	pos := m.search(row, col)
	if pos < m.rowPtr[row+1] && m.colInd[pos] == col {
		return m.values.Get(pos)
	}
	var zero T
	return zero
}

// deleteElement 删除指定位置的非零元素
func (m *sparseMatrix[T]) deleteElement(row, pos int) {
	m.colInd = append(m.colInd[:pos], m.colInd[pos+1:]...)
	m.values.RemoveInPlace(pos, 1)
	for i := row + 1; i <= m.rows; i++ {
		m.rowPtr[i]--
	}
}

// insertElement 在指定位置插入非零元素
func (m *sparseMatrix[T]) insertElement(row, col int, value T, pos int) {
	m.colInd = append(m.colInd, 0)
	copy(m.colInd[pos+1:], m.colInd[pos:])
	m.colInd[pos] = col
	m.values.InsertInPlace(pos, value)
	for i := row + 1; i <= m.rows; i++ {
		m.rowPtr[i]++
	}
}

// AppendRow 按行顺序追加一行，跳过阈值内的零元素
// 只能在矩阵为空或仅由 AppendRow 写入时使用
func (m *sparseMatrix[T]) AppendRow(cols []int, values []T) {
	if m.filled >= m.rows {
		panic(fmt.Sprintf("sparse append: all %d rows already filled", m.rows))
	}
	if len(cols) != len(values) {
		panic("sparse append: cols and values length mismatch")
	}
	last := -1
	for i, c := range cols {
		if c <= last || c >= m.cols {
			panic(fmt.Sprintf("sparse append: column %d out of order or range in row %d", c, m.filled))
		}
		last = c
		if IsZero(values[i], m.tol) {
			continue
		}
		m.colInd = append(m.colInd, c)
		m.values.AppendInPlace(values[i])
	}
	m.filled++
	m.rowPtr[m.filled] = len(m.colInd)
	// 未写入的行保持为空
	for i := m.filled + 1; i <= m.rows; i++ {
		m.rowPtr[i] = len(m.colInd)
	}
}

// Rows 返回行数
func (m *sparseMatrix[T]) Rows() int {
	return m.rows
}

// Cols 返回列数
func (m *sparseMatrix[T]) Cols() int {
	return m.cols
}

// IsSquare 检查是否为方阵
func (m *sparseMatrix[T]) IsSquare() bool {
	return m.rows == m.cols
}

// NonZeroCount 返回非零元素数量
func (m *sparseMatrix[T]) NonZeroCount() int {
	return m.values.Length()
}

// GetRow 获取指定行的非零元素（返回副本）
func (m *sparseMatrix[T]) GetRow(row int) ([]int, []T) {
	if row < 0 || row >= m.rows {
		panic(fmt.Sprintf("row index out of range: %d (rows: %d)", row, m.rows))
	}
	start, end := m.rowPtr[row], m.rowPtr[row+1]
	cols := make([]int, end-start)
	copy(cols, m.colInd[start:end])
	values := make([]T, end-start)
	copy(values, m.values.DataPtr()[start:end])
	return cols, values
}

// ToDense 转换为二维稠密切片
func (m *sparseMatrix[T]) ToDense() [][]T {
	dense := make([][]T, m.rows)
	data := m.values.DataPtr()
	for i := range dense {
		dense[i] = make([]T, m.cols)
		for j := m.rowPtr[i]; j < m.rowPtr[i+1]; j++ {
			dense[i][m.colInd[j]] = data[j]
		}
	}
	return dense
}

// BuildFromDense 从稠密矩阵构建稀疏矩阵（仅保留非零元素）
func (m *sparseMatrix[T]) BuildFromDense(dense [][]T) {
	if len(dense) != m.rows || (len(dense) > 0 && len(dense[0]) != m.cols) {
		panic("dense matrix dimension mismatch")
	}
	m.Zero()
	cols := make([]int, m.cols)
	for j := range cols {
		cols[j] = j
	}
	for _, row := range dense {
		m.AppendRow(cols, row)
	}
}

// Zero 清空矩阵为零矩阵
func (m *sparseMatrix[T]) Zero() {
	m.colInd = m.colInd[:0]
	m.values = NewDataManager[T](0)
	clear(m.rowPtr)
	m.filled = 0
}

// Copy 复制矩阵
func (m *sparseMatrix[T]) Copy(a Matrix[T]) {
	if a.Rows() != m.rows || a.Cols() != m.cols {
		panic(fmt.Sprintf("dimension mismatch: source %dx%d, target %dx%d", m.rows, m.cols, a.Rows(), a.Cols()))
	}
	switch target := a.(type) {
	case *sparseMatrix[T]:
		target.rowPtr = append(target.rowPtr[:0], m.rowPtr...)
		target.colInd = append(target.colInd[:0], m.colInd...)
		target.values = NewDataManagerWithData(m.values.DataCopy())
		target.filled = m.filled
	default:
		a.Zero()
		data := m.values.DataPtr()
		for i := 0; i < m.rows; i++ {
			for j := m.rowPtr[i]; j < m.rowPtr[i+1]; j++ {
				a.Set(i, m.colInd[j], data[j])
			}
		}
	}
}

// SwapRows 交换两行
func (m *sparseMatrix[T]) SwapRows(row1, row2 int) {
	if row1 == row2 {
		return
	}
	c1, v1 := m.GetRow(row1)
	c2, v2 := m.GetRow(row2)
	var zero T
	for _, c := range c1 {
		m.Set(row1, c, zero)
	}
	for _, c := range c2 {
		m.Set(row2, c, zero)
	}
	for i, c := range c2 {
		m.Set(row1, c, v2[i])
	}
	for i, c := range c1 {
		m.Set(row2, c, v1[i])
	}
}

// MulVecTo 计算 dst = A*x
func (m *sparseMatrix[T]) MulVecTo(dst, x []T) {
	if len(x) != m.cols || len(dst) != m.rows {
		panic(fmt.Sprintf("vector dimension mismatch: x=%d, dst=%d, matrix %dx%d", len(x), len(dst), m.rows, m.cols))
	}
	data := m.values.DataPtr()
	for i := 0; i < m.rows; i++ {
		var sum T
		for j := m.rowPtr[i]; j < m.rowPtr[i+1]; j++ {
			sum += data[j] * x[m.colInd[j]]
		}
		dst[i] = sum
	}
}

// String 字符串表示（零元素也显示）
func (m *sparseMatrix[T]) String() string {
	var sb strings.Builder
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			fmt.Fprintf(&sb, "%10.4g ", m.Get(i, j))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
