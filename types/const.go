package types

// 默认参数常量定义
var (
	HermitianTol         = 1e-10 // 厄米性判定的相对容差（乘以最大元素的模）
	DefaultSecularCutoff = 0.1   // 久期近似默认截断比例
	DefaultSparseTol     = 1e-14 // 生成元稀疏化的相对阈值（乘以最大元素的模）
	DegeneracyTol        = 1e-12 // 跃迁频率视为零的相对阈值（乘以最大本征值的模）
)
