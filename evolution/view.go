package evolution

import (
	"redfield/maths"
	"redfield/types"
)

// View 回调期间的只读密度矩阵句柄
// 底层存储在下一个输出时刻被覆盖，回调返回后调用任何方法都会 panic；需要保留时用 Clone
type View struct {
	t   float64
	rho maths.Matrix[complex128]
}

func (v *View) matrix() maths.Matrix[complex128] {
	if v.rho == nil {
		panic("evolution: view used after callback returned")
	}
	return v.rho
}

// Time 当前时刻
func (v *View) Time() float64 {
	return v.t
}

// Dim 维度
func (v *View) Dim() int {
	return v.matrix().Rows()
}

// At 返回 ρ[i,j]
func (v *View) At(i, j int) complex128 {
	return v.matrix().Get(i, j)
}

// Trace 返回 Tr ρ
func (v *View) Trace() complex128 {
	return maths.Trace(v.matrix())
}

// Expect 返回 Tr(O·ρ)
func (v *View) Expect(op *types.Operator) complex128 {
	return op.Expect(v.matrix())
}

// Clone 返回独立副本
func (v *View) Clone() *types.Operator {
	m := v.matrix()
	c := types.NewOperator(m.Rows())
	m.Copy(c.Matrix)
	return c
}
