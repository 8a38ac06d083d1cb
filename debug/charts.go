package debug

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Charts 曲线绘制
type Charts struct {
	*Record
	Format string    // png 或 svg，默认 png
	Width  vg.Length // 默认 8 inch
	Height vg.Length // 默认 5 inch
}

// NewCharts 基于轨迹记录创建绘图器
func NewCharts(r *Record, format string) *Charts {
	return &Charts{Record: r, Format: format}
}

func (c *Charts) size() (vg.Length, vg.Length, string) {
	w, h, f := c.Width, c.Height, c.Format
	if w == 0 {
		w = 8 * vg.Inch
	}
	if h == 0 {
		h = 5 * vg.Inch
	}
	if f == "" {
		f = "png"
	}
	return w, h, f
}

// Render 布居随时间变化曲线
func (c *Charts) Render(w io.Writer) error {
	if c.Len() == 0 {
		return fmt.Errorf("debug: empty record")
	}
	pop := c.PopulationMatrix()
	names := make([]string, c.Dim)
	for i := range names {
		names[i] = fmt.Sprintf("p%d", i)
	}
	return c.render(w, "populations", "population", names, func(k int) []float64 {
		return mat.Col(nil, k, pop)
	})
}

// RenderCoherences 相干模随时间变化曲线
func (c *Charts) RenderCoherences(w io.Writer) error {
	if c.Len() == 0 {
		return fmt.Errorf("debug: empty record")
	}
	return c.render(w, "coherences", "|rho_ij|", c.coherenceLabels(), func(k int) []float64 {
		col := make([]float64, c.Len())
		for i, row := range c.Coherences {
			col[i] = row[k]
		}
		return col
	})
}

// RenderExpect 期望值曲线
func (c *Charts) RenderExpect(w io.Writer) error {
	if c.Len() == 0 || len(c.Names) == 0 {
		return fmt.Errorf("debug: no expectation values recorded")
	}
	return c.render(w, "expectation values", "Re Tr(O rho)", c.Names, func(k int) []float64 {
		col := make([]float64, c.Len())
		for i, row := range c.Expect {
			col[i] = row[k]
		}
		return col
	})
}

// render 每条曲线一列数据，column(k) 返回第 k 条曲线各时刻的值
func (c *Charts) render(w io.Writer, title, ylabel string, names []string, column func(k int) []float64) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t"
	p.Y.Label.Text = ylabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for k, name := range names {
		values := column(k)
		xys := make(plotter.XYs, len(values))
		for i, v := range values {
			xys[i].X = c.Time[i]
			xys[i].Y = v
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("debug: %s: %w", name, err)
		}
		line.Color = plotutil.Color(k)
		line.Dashes = plotutil.Dashes(k / len(plotutil.DefaultColors))
		p.Add(line)
		p.Legend.Add(name, line)
	}

	width, height, format := c.size()
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("debug: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}
