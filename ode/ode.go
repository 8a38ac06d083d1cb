// Package ode 复向量线性常微分方程的自适应步长积分
package ode

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// 常量定义（通用配置阈值）
const (
	minValidStep    = 1e-12 // 最小有效步长（避免数值下溢）
	defaultAbsTol   = 1e-8  // 默认绝对误差容差
	defaultRelTol   = 1e-6  // 默认相对误差容差
	defaultSafety   = 0.9   // 默认步长调整安全系数
	defaultMaxSteps = 500000

	// 步长调整参数
	maxStepScale       = 2.5                              // 最大步长增长倍数
	minStepScale       = 0.2                              // 最小步长缩减倍数
	stepAdjustOrder    = 4                                // 误差估计阶数
	stepAdjustExponent = 1.0 / float64(stepAdjustOrder+1) // 步长调整指数
)

var (
	// ErrStepTooSmall 误差无法满足且步长已低于下限
	ErrStepTooSmall = errors.New("ode: step size below minimum")
	// ErrMaxSteps 超过最大步数
	ErrMaxSteps = errors.New("ode: maximum number of steps exceeded")
)

// Config 积分器参数，零值字段取默认值
type Config struct {
	AbsTol      float64 // 绝对误差容差
	RelTol      float64 // 相对误差容差
	MinStep     float64 // 最小步长
	MaxStep     float64 // 最大步长（0 表示不限）
	InitialStep float64 // 初始步长（0 表示自动估计）
	MaxSteps    int     // 单次积分最大尝试步数
	Safety      float64 // 步长调整安全系数（0~1）
}

// DefaultConfig 返回默认参数
func DefaultConfig() Config {
	return Config{
		AbsTol:   defaultAbsTol,
		RelTol:   defaultRelTol,
		MinStep:  minValidStep,
		MaxSteps: defaultMaxSteps,
		Safety:   defaultSafety,
	}
}

// withDefaults 填充零值字段并校验
func (c Config) withDefaults() (Config, error) {
	d := DefaultConfig()
	if c.AbsTol == 0 {
		c.AbsTol = d.AbsTol
	}
	if c.RelTol == 0 {
		c.RelTol = d.RelTol
	}
	if c.MinStep == 0 {
		c.MinStep = d.MinStep
	}
	if c.MaxSteps == 0 {
		c.MaxSteps = d.MaxSteps
	}
	if c.Safety == 0 {
		c.Safety = d.Safety
	}
	switch {
	case c.AbsTol < 0 || c.RelTol < 0 || c.AbsTol+c.RelTol == 0:
		return c, errors.New("容差必须大于0")
	case c.MinStep < 0 || c.MaxStep < 0 || c.InitialStep < 0:
		return c, errors.New("步长参数不能为负")
	case c.MaxStep > 0 && c.MaxStep < c.MinStep:
		return c, fmt.Errorf("步长范围无效：需满足 minStep(%v) ≤ maxStep(%v)", c.MinStep, c.MaxStep)
	case c.MaxSteps < 0:
		return c, errors.New("最大步数必须大于0")
	case c.Safety <= 0 || c.Safety > 1:
		return c, errors.New("安全系数必须位于 (0, 1]")
	}
	return c, nil
}

// DerivativeFunc 导数函数：将 dy/dt 写入 dy（不得保留 y、dy 的引用）
type DerivativeFunc func(t float64, y, dy []complex128) error

// OutputFunc 输出函数：在每个请求时刻调用，y 只在调用期间有效
// 返回的错误原样传回 Integrate 的调用方
type OutputFunc func(t float64, y []complex128) error

// Stats 积分统计
type Stats struct {
	Accepted int     // 接受步数
	Rejected int     // 拒绝步数
	LastStep float64 // 最后一次尝试的步长
}

// Integrator Dormand-Prince 5(4) 嵌入式 Runge-Kutta 积分器
// 高阶解推进，低阶解只用于误差估计；第七级导数复用为下一步第一级
type Integrator struct {
	cfg   Config
	k     [7][]complex128
	ytmp  []complex128
	ynew  []complex128
	stats Stats
}

// NewIntegrator 创建积分器
func NewIntegrator(cfg Config) (*Integrator, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Integrator{cfg: cfg}, nil
}

// Stats 返回最近一次积分的统计
func (it *Integrator) Stats() Stats {
	return it.stats
}

// Dormand-Prince 系数
var (
	dpC = [7]float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1}
	dpA = [7][6]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	}
	// 五阶解与四阶解系数之差
	dpE = [7]float64{71.0 / 57600, 0, -71.0 / 16695, 71.0 / 1920, -17253.0 / 339200, 22.0 / 525, -1.0 / 40}
)

func (it *Integrator) alloc(n int) {
	if len(it.ytmp) == n {
		return
	}
	for i := range it.k {
		it.k[i] = make([]complex128, n)
	}
	it.ytmp = make([]complex128, n)
	it.ynew = make([]complex128, n)
}

// Integrate 自 times[0] 起积分，在每个 times[i] 处调用 out（times[0] 处输出初值）
// times 须非空且非递减；y0 不会被修改
func (it *Integrator) Integrate(times []float64, f DerivativeFunc, y0 []complex128, out OutputFunc) error {
	if len(times) == 0 {
		return errors.New("ode: no output times")
	}
	for i := 1; i < len(times); i++ {
		if !(times[i] >= times[i-1]) {
			return fmt.Errorf("ode: output times not non-decreasing at index %d", i)
		}
	}
	if f == nil {
		return errors.New("ode: nil derivative function")
	}
	n := len(y0)
	it.alloc(n)
	it.stats = Stats{}
	y := make([]complex128, n)
	copy(y, y0)

	t := times[0]
	if out != nil {
		if err := out(t, y); err != nil {
			return err
		}
	}
	if len(times) == 1 || n == 0 {
		for _, tt := range times[1:] {
			if out != nil {
				if err := out(tt, y); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := f(t, y, it.k[0]); err != nil {
		return fmt.Errorf("ode: derivative at t=%g: %w", t, err)
	}
	h := it.initialStep(times[len(times)-1]-t, y, it.k[0])
	attempts := 0

	for _, target := range times[1:] {
		for t < target {
			if attempts++; attempts > it.cfg.MaxSteps {
				return fmt.Errorf("t=%g: %w", t, ErrMaxSteps)
			}
			last := false
			hs := h
			if t+hs >= target {
				hs = target - t
				last = true
			}
			it.stats.LastStep = hs
			errNorm, err := it.step(f, t, hs, y)
			if err != nil {
				return err
			}

			scale := maxStepScale
			if errNorm > 0 {
				scale = math.Max(minStepScale, math.Min(maxStepScale, it.cfg.Safety*math.Pow(errNorm, -stepAdjustExponent)))
			}
			if errNorm > 1 {
				it.stats.Rejected++
				h = hs * scale
				if h < it.cfg.MinStep {
					if hs <= it.cfg.MinStep {
						return fmt.Errorf("t=%g h=%g: %w", t, hs, ErrStepTooSmall)
					}
					h = it.cfg.MinStep
				}
				continue
			}

			it.stats.Accepted++
			copy(y, it.ynew)
			it.k[0], it.k[6] = it.k[6], it.k[0]
			if last {
				t = target
			} else {
				t += hs
			}
			// 截断到输出时刻的短步不参与步长增长
			if !last || hs >= h {
				h = hs * scale
			}
			if it.cfg.MaxStep > 0 {
				h = math.Min(h, it.cfg.MaxStep)
			}
			h = math.Max(h, it.cfg.MinStep)
		}
		if out != nil {
			if err := out(target, y); err != nil {
				return err
			}
		}
	}
	return nil
}

// step 尝试一步，结果写入 ynew 与 k[6]，返回加权 RMS 误差
func (it *Integrator) step(f DerivativeFunc, t, h float64, y []complex128) (float64, error) {
	for s := 1; s < 7; s++ {
		for i := range y {
			var sum complex128
			for j := 0; j < s; j++ {
				if a := dpA[s][j]; a != 0 {
					sum += complex(a, 0) * it.k[j][i]
				}
			}
			it.ytmp[i] = y[i] + complex(h, 0)*sum
		}
		if err := f(t+dpC[s]*h, it.ytmp, it.k[s]); err != nil {
			return 0, fmt.Errorf("ode: derivative at t=%g: %w", t+dpC[s]*h, err)
		}
	}
	// 第七级的输入即为五阶解
	copy(it.ynew, it.ytmp)

	var acc float64
	for i := range y {
		var e complex128
		for s := 0; s < 7; s++ {
			if dpE[s] != 0 {
				e += complex(dpE[s], 0) * it.k[s][i]
			}
		}
		e *= complex(h, 0)
		sc := it.cfg.AbsTol + it.cfg.RelTol*math.Max(cmplx.Abs(y[i]), cmplx.Abs(it.ynew[i]))
		r := cmplx.Abs(e) / sc
		acc += r * r
	}
	errNorm := math.Sqrt(acc / float64(len(y)))
	if math.IsNaN(errNorm) {
		errNorm = math.Inf(1)
	}
	return errNorm, nil
}

// initialStep 估计初始步长：h = 0.01·‖y‖/‖f(y)‖，并限制在积分区间与步长范围内
func (it *Integrator) initialStep(span float64, y, dy []complex128) float64 {
	if it.cfg.InitialStep > 0 {
		return it.clamp(it.cfg.InitialStep)
	}
	var d0, d1 float64
	for i := range y {
		sc := it.cfg.AbsTol + it.cfg.RelTol*cmplx.Abs(y[i])
		d0 += math.Pow(cmplx.Abs(y[i])/sc, 2)
		d1 += math.Pow(cmplx.Abs(dy[i])/sc, 2)
	}
	d0, d1 = math.Sqrt(d0), math.Sqrt(d1)
	h := 1e-6
	if d0 > 1e-5 && d1 > 1e-5 {
		h = 0.01 * d0 / d1
	}
	if span > 0 {
		h = math.Min(h, span)
	}
	return it.clamp(h)
}

func (it *Integrator) clamp(h float64) float64 {
	if it.cfg.MaxStep > 0 {
		h = math.Min(h, it.cfg.MaxStep)
	}
	return math.Max(h, it.cfg.MinStep)
}
