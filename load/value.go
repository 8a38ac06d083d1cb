package load

import (
	"fmt"
	"math/cmplx"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Value 场景文件中的数值：数字、复数字符串（如 "0.5+1i"）或变量名
type Value struct {
	Value string // 原始值
	IsVar bool   // 是否为变量
	Line  int    // 行号
}

// Num 由数值构造 Value
func Num(v float64) Value {
	return Value{Value: strconv.FormatFloat(v, 'g', -1, 64)}
}

// UnmarshalYAML 只接受标量节点
func (value *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("第 %d 行: 需要数值，得到 %s", node.Line, kindName(node.Kind))
	}
	s := strings.TrimSpace(node.Value)
	*value = Value{Value: s, Line: node.Line, IsVar: isIdent(s)}
	return nil
}

// MarshalYAML 原样输出
func (value Value) MarshalYAML() (any, error) {
	return value.Value, nil
}

// isIdent 以字母或下划线开头且不是 inf/nan 的字符串视为变量名
func isIdent(s string) bool {
	if s == "" {
		return false
	}
	switch strings.ToLower(s) {
	case "inf", "+inf", "-inf", "nan", "infinity":
		return false
	}
	c := s[0]
	if !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
		return false
	}
	for _, r := range s {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

// Complex 解析为复数，变量名在 vars 中查找
func (value Value) Complex(vars map[string]Value) (complex128, error) {
	seen := map[string]bool{}
	for value.IsVar {
		if seen[value.Value] {
			return 0, fmt.Errorf("第 %d 行: 变量 '%s' 循环引用", value.Line, value.Value)
		}
		seen[value.Value] = true
		v, ok := vars[value.Value]
		if !ok {
			return 0, fmt.Errorf("第 %d 行: 未定义的变量 '%s'", value.Line, value.Value)
		}
		value = v
	}
	c, err := strconv.ParseComplex(strings.ReplaceAll(value.Value, " ", ""), 128)
	if err != nil {
		return 0, fmt.Errorf("第 %d 行: 无效数值 '%s'", value.Line, value.Value)
	}
	if cmplx.IsNaN(c) {
		return 0, fmt.Errorf("第 %d 行: 数值为 NaN", value.Line)
	}
	return c, nil
}

// Float 解析为实数，虚部非零时报错
func (value Value) Float(vars map[string]Value) (float64, error) {
	c, err := value.Complex(vars)
	if err != nil {
		return 0, err
	}
	if imag(c) != 0 {
		return 0, fmt.Errorf("第 %d 行: 需要实数，得到 '%s'", value.Line, value.Value)
	}
	return real(c), nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.AliasNode:
		return "alias"
	default:
		return "scalar"
	}
}
