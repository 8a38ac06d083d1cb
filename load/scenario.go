package load

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/go-playground/validator/v10"

	"redfield/evolution"
	"redfield/ode"
	"redfield/types"
)

// validate 场景结构校验器
var validate = validator.New(validator.WithRequiredStructEnabled())

// Spectrum 谱密度配置
type Spectrum struct {
	Kind        string `yaml:"kind" validate:"required,oneof=constant ohmic"`
	Value       Value  `yaml:"value,omitempty"`       // constant
	Eta         Value  `yaml:"eta,omitempty"`         // ohmic 耦合强度
	Cutoff      Value  `yaml:"cutoff,omitempty"`      // ohmic 截断频率
	Temperature Value  `yaml:"temperature,omitempty"` // ohmic 温度
}

// Coupling 体系-热库耦合
type Coupling struct {
	Op       OperatorSpec `yaml:"op"`
	Spectrum Spectrum     `yaml:"spectrum"`
}

// Jump Lindblad 跃迁，算符按 sqrt(rate) 缩放
type Jump struct {
	Op   OperatorSpec `yaml:"op"`
	Rate Value        `yaml:"rate,omitempty"`
}

// Initial 初态，三者取一
type Initial struct {
	Ket   []Value      `yaml:"ket,omitempty"`
	Rho   OperatorSpec `yaml:"rho,omitempty"`
	Level *int         `yaml:"level,omitempty" validate:"omitempty,gte=0"`
}

// Times 输出时刻：等间距 [start, stop] 共 steps 个点，或显式列表
type Times struct {
	Start  float64   `yaml:"start"`
	Stop   float64   `yaml:"stop" validate:"gtefield=Start"`
	Steps  int       `yaml:"steps,omitempty" validate:"omitempty,gte=1"`
	Points []float64 `yaml:"points,omitempty"`
}

// Expect 期望值算符
type Expect struct {
	Name string       `yaml:"name" validate:"required"`
	Op   OperatorSpec `yaml:"op"`
}

// ODE 积分器参数，零值取默认
type ODE struct {
	AbsTol      float64 `yaml:"abs_tol,omitempty" validate:"gte=0"`
	RelTol      float64 `yaml:"rel_tol,omitempty" validate:"gte=0"`
	MinStep     float64 `yaml:"min_step,omitempty" validate:"gte=0"`
	MaxStep     float64 `yaml:"max_step,omitempty" validate:"gte=0"`
	InitialStep float64 `yaml:"initial_step,omitempty" validate:"gte=0"`
	MaxSteps    int     `yaml:"max_steps,omitempty" validate:"gte=0"`
}

// Output 输出文件，留空则不输出
type Output struct {
	CSV           string `yaml:"csv,omitempty"`
	Plot          string `yaml:"plot,omitempty"`           // 布居曲线
	CoherencePlot string `yaml:"coherence_plot,omitempty"` // 相干模曲线
	ExpectPlot    string `yaml:"expect_plot,omitempty"`    // 期望值曲线，需要 expect
	JSON          string `yaml:"json,omitempty"`
	Format        string `yaml:"format,omitempty" validate:"omitempty,oneof=png svg"`
}

// Scenario 场景文件
type Scenario struct {
	Name          string           `yaml:"name" validate:"required"`
	Vars          map[string]Value `yaml:"vars,omitempty"`
	Hamiltonian   OperatorSpec     `yaml:"hamiltonian"`
	Couplings     []Coupling       `yaml:"couplings,omitempty" validate:"dive"`
	Jumps         []Jump           `yaml:"jumps,omitempty" validate:"dive"`
	Secular       *bool            `yaml:"secular,omitempty"`
	SecularCutoff float64          `yaml:"secular_cutoff,omitempty" validate:"gte=0"`
	Initial       Initial          `yaml:"initial"`
	Times         Times            `yaml:"times"`
	Expect        []Expect         `yaml:"expect,omitempty" validate:"dive"`
	ODE           ODE              `yaml:"ode,omitempty"`
	Output        Output           `yaml:"output,omitempty"`
}

// 默认值
const (
	defaultSteps  = 101
	defaultFormat = "png"
)

// ApplyDefaults 填充未指定的字段
func (s *Scenario) ApplyDefaults() {
	if s.Secular == nil {
		on := true
		s.Secular = &on
	}
	if s.SecularCutoff == 0 {
		s.SecularCutoff = types.DefaultSecularCutoff
	}
	if s.Times.Steps == 0 && len(s.Times.Points) == 0 {
		s.Times.Steps = defaultSteps
	}
	if s.Output.Format == "" {
		s.Output.Format = defaultFormat
	}
}

// Validate 结构校验及字段间约束
func (s *Scenario) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	var errs []error
	if s.Hamiltonian.IsZero() {
		errs = append(errs, errors.New("hamiltonian is required"))
	}
	for i, c := range s.Couplings {
		if c.Op.IsZero() {
			errs = append(errs, fmt.Errorf("couplings[%d]: op is required", i))
		}
	}
	for i, j := range s.Jumps {
		if j.Op.IsZero() {
			errs = append(errs, fmt.Errorf("jumps[%d]: op is required", i))
		}
	}
	for i, e := range s.Expect {
		if e.Op.IsZero() {
			errs = append(errs, fmt.Errorf("expect[%d]: op is required", i))
		}
	}
	set := 0
	if len(s.Initial.Ket) > 0 {
		set++
	}
	if !s.Initial.Rho.IsZero() {
		set++
	}
	if s.Initial.Level != nil {
		set++
	}
	if set != 1 {
		errs = append(errs, errors.New("initial: exactly one of ket, rho, level is required"))
	}
	if s.Output.ExpectPlot != "" && len(s.Expect) == 0 {
		errs = append(errs, errors.New("output.expect_plot: no expect operators"))
	}
	for i := 1; i < len(s.Times.Points); i++ {
		if s.Times.Points[i] < s.Times.Points[i-1] {
			errs = append(errs, fmt.Errorf("times.points: not non-decreasing at index %d", i))
			break
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return nil
}

// Problem 由场景构造的求解输入
type Problem struct {
	Name          string
	H             *types.Operator
	Interactions  []types.InteractionSpec
	Jumps         []*types.Operator
	Secular       bool
	SecularCutoff float64
	Initial       evolution.State
	Times         []float64
	ExpectNames   []string
	ExpectOps     []*types.Operator
	ODE           ode.Config
}

// Build 解析变量、构造算符与谱密度
func (s *Scenario) Build() (*Problem, error) {
	p := &Problem{
		Name:          s.Name,
		Secular:       s.Secular == nil || *s.Secular,
		SecularCutoff: s.SecularCutoff,
		Times:         s.Times.values(),
		ODE: ode.Config{
			AbsTol:      s.ODE.AbsTol,
			RelTol:      s.ODE.RelTol,
			MinStep:     s.ODE.MinStep,
			MaxStep:     s.ODE.MaxStep,
			InitialStep: s.ODE.InitialStep,
			MaxSteps:    s.ODE.MaxSteps,
		},
	}
	var err error
	if p.H, err = s.Hamiltonian.Build(s.Vars); err != nil {
		return nil, fmt.Errorf("hamiltonian: %w", err)
	}
	for i, c := range s.Couplings {
		op, err := c.Op.Build(s.Vars)
		if err != nil {
			return nil, fmt.Errorf("couplings[%d]: %w", i, err)
		}
		spec, err := c.Spectrum.build(s.Vars)
		if err != nil {
			return nil, fmt.Errorf("couplings[%d]: %w", i, err)
		}
		p.Interactions = append(p.Interactions, types.InteractionSpec{Op: op, Spectrum: spec})
	}
	for i, j := range s.Jumps {
		op, err := j.Op.Build(s.Vars)
		if err != nil {
			return nil, fmt.Errorf("jumps[%d]: %w", i, err)
		}
		rate := 1.0
		if j.Rate.Value != "" {
			if rate, err = j.Rate.Float(s.Vars); err != nil {
				return nil, fmt.Errorf("jumps[%d]: %w", i, err)
			}
			if rate < 0 {
				return nil, fmt.Errorf("jumps[%d]: negative rate %g", i, rate)
			}
		}
		scaled := types.NewOperator(op.Dim())
		f := complex(math.Sqrt(rate), 0)
		for r := 0; r < op.Dim(); r++ {
			cols, vals := op.GetRow(r)
			for k, c := range cols {
				scaled.Set(r, c, f*vals[k])
			}
		}
		p.Jumps = append(p.Jumps, scaled)
	}
	for i, e := range s.Expect {
		op, err := e.Op.Build(s.Vars)
		if err != nil {
			return nil, fmt.Errorf("expect[%d]: %w", i, err)
		}
		p.ExpectNames = append(p.ExpectNames, e.Name)
		p.ExpectOps = append(p.ExpectOps, op)
	}
	if p.Initial, err = s.Initial.build(s.Vars, p.H.Dim()); err != nil {
		return nil, fmt.Errorf("initial: %w", err)
	}
	return p, nil
}

func (sp Spectrum) build(vars map[string]Value) (types.SpectralDensity, error) {
	switch sp.Kind {
	case "constant":
		v, err := optional(sp.Value, 1, vars)
		if err != nil {
			return nil, err
		}
		return types.Constant(v), nil
	case "ohmic":
		eta, err := optional(sp.Eta, 1, vars)
		if err != nil {
			return nil, err
		}
		cutoff, err := optional(sp.Cutoff, 0, vars)
		if err != nil {
			return nil, err
		}
		temp, err := optional(sp.Temperature, 0, vars)
		if err != nil {
			return nil, err
		}
		return types.Ohmic(eta, cutoff, temp), nil
	default:
		return nil, fmt.Errorf("unknown spectrum kind %q", sp.Kind)
	}
}

// optional 未填写时返回默认值
func optional(v Value, def float64, vars map[string]Value) (float64, error) {
	if v.Value == "" {
		return def, nil
	}
	return v.Float(vars)
}

func (in Initial) build(vars map[string]Value, n int) (evolution.State, error) {
	switch {
	case in.Level != nil:
		if *in.Level >= n {
			return nil, fmt.Errorf("level %d out of range for dimension %d", *in.Level, n)
		}
		return types.BasisKet(n, *in.Level), nil
	case len(in.Ket) > 0:
		amp := make([]complex128, len(in.Ket))
		var norm float64
		for i, v := range in.Ket {
			c, err := v.Complex(vars)
			if err != nil {
				return nil, err
			}
			amp[i] = c
			norm += cmplx.Abs(c) * cmplx.Abs(c)
		}
		if norm == 0 {
			return nil, errors.New("zero ket")
		}
		// 归一化
		for i := range amp {
			amp[i] /= complex(math.Sqrt(norm), 0)
		}
		return types.NewKet(amp), nil
	default:
		return in.Rho.Build(vars)
	}
}

// values 展开输出时刻
func (t Times) values() []float64 {
	if len(t.Points) > 0 {
		return append([]float64(nil), t.Points...)
	}
	if t.Steps <= 1 {
		return []float64{t.Start}
	}
	out := make([]float64, t.Steps)
	dt := (t.Stop - t.Start) / float64(t.Steps-1)
	for i := range out {
		out[i] = t.Start + dt*float64(i)
	}
	out[len(out)-1] = t.Stop
	return out
}
