package maths

import (
	"math"
	"math/cmplx"
)

// Epsilon 浮点精度阈值，绝对值不超过该值的元素视为零
const Epsilon = 1e-16

// Number 是一个约束，允许任何浮点或复数类型
type Number interface {
	~float32 | ~float64 | ~complex64 | ~complex128
}

// Abs 返回任何支持的 Number 类型的绝对值（复数取模）
func Abs[T Number](v T) float64 {
	switch x := any(v).(type) {
	case float32:
		return math.Abs(float64(x))
	case float64:
		return math.Abs(x)
	case complex64:
		return cmplx.Abs(complex128(x))
	case complex128:
		return cmplx.Abs(x)
	}
	return 0
}

// Conj 返回共轭值（实数原样返回）
func Conj[T Number](v T) T {
	switch x := any(v).(type) {
	case complex64:
		return any(complex64(cmplx.Conj(complex128(x)))).(T)
	case complex128:
		return any(cmplx.Conj(x)).(T)
	}
	return v
}

// IsZero 判断元素是否在 tol 范围内为零
func IsZero[T Number](v T, tol float64) bool {
	return Abs(v) <= tol
}

// DataManager 一维数据管理器（底层存储核心）
type DataManager[T Number] interface {
	Length() int    // 获取数据长度
	String() string // 返回数据的字符串表示

	Get(index int) T              // 获取指定索引处的元素值
	Set(index int, value T)       // 设置指定索引处的元素值
	Increment(index int, value T) // 增量更新指定索引处的元素值

	DataCopy() []T // 返回数据的切片副本
	DataPtr() []T  // 返回数据的切片引用（直接操作底层数据）

	Zero()                                // 原地将所有元素设置为零
	AppendInPlace(values ...T)            // 原地追加元素
	InsertInPlace(index int, values ...T) // 在指定位置原地插入元素
	RemoveInPlace(index int, count int)   // 从指定位置原地移除指定数量的元素

	NonZeroCount() int          // 统计非零元素数量
	Copy(target DataManager[T]) // 复制数据到目标管理器
}

// Vector 向量接口定义
type Vector[T Number] interface {
	Length() int    // 获取向量长度
	String() string // 格式化字符串输出

	Get(index int) T              // 获取指定索引元素值
	Set(index int, value T)       // 设置指定索引元素值
	Increment(index int, value T) // 增量更新元素（value累加）

	ToDense() []T             // 返回底层稠密切片（直接引用）
	BuildFromDense(dense []T) // 从稠密切片构建向量

	Zero()            // 清空向量为零向量
	Copy(a Vector[T]) // 复制自身数据到目标向量a

	NonZeroCount() int // 统计非零元素数量
}

// Matrix 矩阵接口定义，支持稠密和稀疏两种实现
type Matrix[T Number] interface {
	Rows() int      // 获取矩阵行数
	Cols() int      // 获取矩阵列数
	String() string // 格式化字符串输出
	IsSquare() bool // 判断是否为方阵（行数=列数）

	Get(row, col int) T              // 获取指定行列元素值
	Set(row, col int, value T)       // 设置指定行列元素值
	Increment(row, col int, value T) // 增量更新元素
	GetRow(row int) ([]int, []T)     // 获取指定行非零元素（列索引+值）

	ToDense() [][]T             // 转换为二维稠密切片（新分配）
	BuildFromDense(dense [][]T) // 从稠密矩阵构建

	Zero()                   // 清空矩阵为零矩阵
	Copy(a Matrix[T])        // 复制自身数据到目标矩阵a
	SwapRows(row1, row2 int) // 交换两行

	MulVecTo(dst, x []T) // 矩阵向量乘法写入dst（不分配内存）

	NonZeroCount() int // 统计非零元素数量
}

// LU 接口定义了 LU 分解和求解线性方程组的操作。
type LU[T Number] interface {
	Decompose(matrix Matrix[T]) error // 对输入方阵执行LU分解（PA=LU）
	SolveReuse(b, x Vector[T]) error  // 重用向量求解Ax=b（利用LU分解结果）
}
