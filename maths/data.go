package maths

import (
	"fmt"
)

// dataManager 提供了 DataManager 接口的通用实现。
type dataManager[T Number] struct {
	data []T
}

// NewDataManager 创建一个指定长度的新的 DataManager。
func NewDataManager[T Number](length int) DataManager[T] {
	return &dataManager[T]{
		data: make([]T, length),
	}
}

// NewDataManagerWithData 使用给定的数据切片创建一个新的 DataManager（不复制）。
func NewDataManagerWithData[T Number](data []T) DataManager[T] {
	return &dataManager[T]{
		data: data,
	}
}

// Length 返回数据的长度。
func (dm *dataManager[T]) Length() int {
	return len(dm.data)
}

// String 返回数据的字符串表示形式。
func (dm *dataManager[T]) String() string {
	return fmt.Sprintf("%v", dm.data)
}

// Get 返回指定索引处的值。
func (dm *dataManager[T]) Get(index int) T {
	return dm.data[index]
}

// Set 设置指定索引处的值。
func (dm *dataManager[T]) Set(index int, value T) {
	dm.data[index] = value
}

// Increment 增加指定索引处的值。
func (dm *dataManager[T]) Increment(index int, value T) {
	dm.data[index] += value
}

// DataCopy 返回数据切片的副本。
func (dm *dataManager[T]) DataCopy() []T {
	cpy := make([]T, len(dm.data))
	copy(cpy, dm.data)
	return cpy
}

// DataPtr 返回底层数据切片。
// 注意：直接修改返回的切片会影响原始数据。
func (dm *dataManager[T]) DataPtr() []T {
	return dm.data
}

// Zero 将所有元素设置为零。
func (dm *dataManager[T]) Zero() {
	clear(dm.data)
}

// AppendInPlace 在末尾追加一个或多个值。
func (dm *dataManager[T]) AppendInPlace(values ...T) {
	dm.data = append(dm.data, values...)
}

// InsertInPlace 在指定索引处插入一个或多个值。
func (dm *dataManager[T]) InsertInPlace(index int, values ...T) {
	n := len(values)
	dm.data = append(dm.data, values...)
	copy(dm.data[index+n:], dm.data[index:len(dm.data)-n])
	copy(dm.data[index:], values)
}

// RemoveInPlace 从指定索引处移除指定数量的元素。
func (dm *dataManager[T]) RemoveInPlace(index int, count int) {
	dm.data = append(dm.data[:index], dm.data[index+count:]...)
}

// NonZeroCount 计算非零元素的数量。
func (dm *dataManager[T]) NonZeroCount() int {
	count := 0
	var zero T
	for _, v := range dm.data {
		if v != zero {
			count++
		}
	}
	return count
}

// Copy 将数据复制到另一个 DataManager。
// 如果目标是 `*dataManager[T]` 类型，则使用 `copy` 函数，否则逐个元素复制。
func (dm *dataManager[T]) Copy(target DataManager[T]) {
	if dm.Length() != target.Length() {
		panic("dataManager.Copy: length mismatch")
	}
	if targetDm, ok := target.(*dataManager[T]); ok {
		copy(targetDm.data, dm.data)
		return
	}
	for i := 0; i < dm.Length(); i++ {
		target.Set(i, dm.Get(i))
	}
}
