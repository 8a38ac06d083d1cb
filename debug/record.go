// Package debug 记录演化轨迹并导出为 JSON、CSV 或曲线图
package debug

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math/cmplx"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"redfield/types"
)

// Observable 记录期望值的算符
type Observable struct {
	Name string
	Op   *types.Operator
}

// Record 记录历史状态
type Record struct {
	Dim         int         // 希尔伯特空间维度
	Time        []float64   // 时间列
	Populations [][]float64 // 布居 ρ[i,i]
	Coherences  [][]float64 // 相干模 |ρ[i,j]|，i<j，按行展开
	Names       []string    // 期望值名称
	Expect      [][]float64 // Re Tr(O·ρ)

	observables []Observable
}

// NewRecord 创建 n 维轨迹记录
func NewRecord(n int, observables ...Observable) *Record {
	r := &Record{Dim: n, observables: observables}
	for _, o := range observables {
		r.Names = append(r.Names, o.Name)
	}
	return r
}

// Record 记录数据
func (r *Record) Record(t float64, rho *types.Operator) {
	n := r.Dim
	r.Time = append(r.Time, t)
	pop := make([]float64, n)
	coh := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		pop[i] = real(rho.Get(i, i))
		for j := i + 1; j < n; j++ {
			coh = append(coh, cmplx.Abs(rho.Get(i, j)))
		}
	}
	r.Populations = append(r.Populations, pop)
	r.Coherences = append(r.Coherences, coh)
	ex := make([]float64, len(r.observables))
	for i, o := range r.observables {
		ex[i] = real(o.Op.Expect(rho.Matrix))
	}
	r.Expect = append(r.Expect, ex)
}

// Len 已记录的时刻数
func (r *Record) Len() int {
	return len(r.Time)
}

// PopulationMatrix 以矩阵形式返回布居（行：时刻，列：能级）
func (r *Record) PopulationMatrix() *mat.Dense {
	if r.Len() == 0 {
		return nil
	}
	m := mat.NewDense(r.Len(), r.Dim, nil)
	for i, row := range r.Populations {
		m.SetRow(i, row)
	}
	return m
}

// Render 格式和输出内容
func (r *Record) Render(w io.Writer) error { return json.NewEncoder(w).Encode(r) }

// coherenceLabels 相干项列名
func (r *Record) coherenceLabels() []string {
	var labels []string
	for i := 0; i < r.Dim; i++ {
		for j := i + 1; j < r.Dim; j++ {
			labels = append(labels, fmt.Sprintf("|rho%d%d|", i, j))
		}
	}
	return labels
}

// WriteCSV 输出表格：t, 各能级布居, 相干模, 期望值
func (r *Record) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{"t"}
	for i := 0; i < r.Dim; i++ {
		header = append(header, fmt.Sprintf("p%d", i))
	}
	header = append(header, r.coherenceLabels()...)
	header = append(header, r.Names...)
	if err := cw.Write(header); err != nil {
		return err
	}
	format := func(v float64) string { return strconv.FormatFloat(v, 'g', 10, 64) }
	for k, t := range r.Time {
		row := make([]string, 0, len(header))
		row = append(row, format(t))
		for _, v := range r.Populations[k] {
			row = append(row, format(v))
		}
		for _, v := range r.Coherences[k] {
			row = append(row, format(v))
		}
		for _, v := range r.Expect[k] {
			row = append(row, format(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
