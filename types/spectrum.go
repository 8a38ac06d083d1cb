package types

import (
	"math"
)

// SpectralDensity 热库谱密度函数 S(ω)，ω 为跃迁频率
// 正频率对应体系向低能级跃迁（发射）
type SpectralDensity func(w float64) complex128

// InteractionSpec 体系-热库耦合：耦合算符与对应谱密度
type InteractionSpec struct {
	Op       *Operator
	Spectrum SpectralDensity
}

// Constant 常数谱密度（白噪声）
func Constant(s float64) SpectralDensity {
	return func(float64) complex128 { return complex(s, 0) }
}

// Func 包装实值函数为谱密度
func Func(f func(w float64) float64) SpectralDensity {
	return func(w float64) complex128 { return complex(f(w), 0) }
}

// Ohmic 欧姆谱密度，指数截断并满足细致平衡
//
//	S(ω) = η·ω·exp(-|ω|/ωc) / (1 - exp(-ω/T))
//
// cutoff <= 0 表示无截断；temperature <= 0 为零温极限（仅正频率非零）
// ω → 0 时取极限 η·T
func Ohmic(eta, cutoff, temperature float64) SpectralDensity {
	return func(w float64) complex128 {
		damp := 1.0
		if cutoff > 0 {
			damp = math.Exp(-math.Abs(w) / cutoff)
		}
		if temperature <= 0 {
			if w <= 0 {
				return 0
			}
			return complex(eta*w*damp, 0)
		}
		if math.Abs(w) < 1e-12*temperature {
			return complex(eta*temperature, 0)
		}
		return complex(eta*w*damp/(-math.Expm1(-w/temperature)), 0)
	}
}
