package load

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"redfield/types"
)

// 两能级 Pauli 算符名称
var pauli = map[string][][]complex128{
	"sx": {{0, 1}, {1, 0}},
	"sy": {{0, -1i}, {1i, 0}},
	"sz": {{1, 0}, {0, -1}},
	"sm": {{0, 1}, {0, 0}},
}

// 名称别名
var pauliAlias = map[string]string{
	"sigmax": "sx", "x": "sx",
	"sigmay": "sy", "y": "sy",
	"sigmaz": "sz", "z": "sz",
	"sigmam": "sm", "destroy": "sm",
}

// OperatorSpec 算符：Pauli 名称或显式矩阵（行列表）
type OperatorSpec struct {
	Name string
	Rows [][]Value
	Line int
}

// UnmarshalYAML 标量按名称解析，序列按矩阵解析
func (op *OperatorSpec) UnmarshalYAML(node *yaml.Node) error {
	op.Line = node.Line
	switch node.Kind {
	case yaml.ScalarNode:
		op.Name = strings.ToLower(strings.TrimSpace(node.Value))
		return nil
	case yaml.SequenceNode:
		return node.Decode(&op.Rows)
	default:
		return fmt.Errorf("第 %d 行: 算符须为名称或矩阵，得到 %s", node.Line, kindName(node.Kind))
	}
}

// MarshalYAML 名称或矩阵
func (op OperatorSpec) MarshalYAML() (any, error) {
	if op.Name != "" {
		return op.Name, nil
	}
	return op.Rows, nil
}

// IsZero 未指定
func (op OperatorSpec) IsZero() bool {
	return op.Name == "" && len(op.Rows) == 0
}

// Build 构造算符
func (op OperatorSpec) Build(vars map[string]Value) (*types.Operator, error) {
	if op.Name != "" {
		name := op.Name
		if alias, ok := pauliAlias[name]; ok {
			name = alias
		}
		m, ok := pauli[name]
		if !ok {
			return nil, fmt.Errorf("第 %d 行: 未知的算符名称 '%s'", op.Line, op.Name)
		}
		return types.MustOperator(m), nil
	}
	if len(op.Rows) == 0 {
		return nil, fmt.Errorf("第 %d 行: 算符为空", op.Line)
	}
	dense := make([][]complex128, len(op.Rows))
	for i, row := range op.Rows {
		dense[i] = make([]complex128, len(row))
		for j, v := range row {
			c, err := v.Complex(vars)
			if err != nil {
				return nil, err
			}
			dense[i][j] = c
		}
	}
	o, err := types.NewOperatorFrom(dense)
	if err != nil {
		return nil, fmt.Errorf("第 %d 行: %w", op.Line, err)
	}
	return o, nil
}
