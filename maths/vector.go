package maths

import (
	"fmt"
	"strings"
)

// denseVector 稠密向量实现
// 基于 DataManager 实现 Vector 接口
type denseVector[T Number] struct {
	DataManager[T]
}

// NewDenseVector 创建新的稠密向量
func NewDenseVector[T Number](length int) Vector[T] {
	return &denseVector[T]{
		DataManager: NewDataManager[T](length),
	}
}

// NewDenseVectorWithData 从现有数据创建稠密向量（共享底层切片）
func NewDenseVectorWithData[T Number](data []T) Vector[T] {
	return &denseVector[T]{
		DataManager: NewDataManagerWithData(data),
	}
}

// BuildFromDense 从稠密切片构建向量
func (v *denseVector[T]) BuildFromDense(dense []T) {
	if len(dense) != v.Length() {
		panic(fmt.Sprintf("vector dimension mismatch: dense=%d, vector=%d", len(dense), v.Length()))
	}
	copy(v.DataPtr(), dense)
}

// Copy 将自身值复制到 a 向量
func (v *denseVector[T]) Copy(a Vector[T]) {
	if a.Length() != v.Length() {
		panic(fmt.Sprintf("vector dimension mismatch: source=%d, target=%d", v.Length(), a.Length()))
	}
	if target, ok := a.(*denseVector[T]); ok {
		v.DataManager.Copy(target.DataManager)
		return
	}
	for i := 0; i < v.Length(); i++ {
		a.Set(i, v.Get(i))
	}
}

// ToDense 返回底层切片
func (v *denseVector[T]) ToDense() []T {
	return v.DataPtr()
}

// String 返回向量的字符串表示
func (v *denseVector[T]) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < v.Length(); i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%.4g", v.Get(i))
	}
	sb.WriteString("]")
	return sb.String()
}
