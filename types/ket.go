package types

import (
	"math"
	"math/cmplx"

	"redfield/maths"
)

// Ket 态矢量（长度 N 的复向量）
type Ket struct {
	maths.Vector[complex128]
}

// NewKet 由振幅创建态矢量（复制数据）
func NewKet(amplitudes []complex128) *Ket {
	data := make([]complex128, len(amplitudes))
	copy(data, amplitudes)
	return &Ket{Vector: maths.NewDenseVectorWithData(data)}
}

// BasisKet 返回 n 维第 i 个基矢 |i⟩
func BasisKet(n, i int) *Ket {
	k := &Ket{Vector: maths.NewDenseVector[complex128](n)}
	k.Set(i, 1)
	return k
}

// Dim 返回维度
func (k *Ket) Dim() int {
	return k.Length()
}

// Norm 返回 2-范数
func (k *Ket) Norm() float64 {
	var s float64
	for _, v := range k.ToDense() {
		s += real(v * cmplx.Conj(v))
	}
	return math.Sqrt(s)
}

// Projector 返回外积 |ψ⟩⟨ψ|
func (k *Ket) Projector() *Operator {
	n := k.Dim()
	amp := k.ToDense()
	op := NewOperator(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			op.Set(i, j, amp[i]*cmplx.Conj(amp[j]))
		}
	}
	return op
}
