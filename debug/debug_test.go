package debug

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redfield/types"
)

var _ types.Recorder = (*Record)(nil)

func sampleRecord() *Record {
	sz := types.MustOperator([][]complex128{{1, 0}, {0, -1}})
	r := NewRecord(2, Observable{Name: "sz", Op: sz})
	r.Record(0, types.MustOperator([][]complex128{{0, 0}, {0, 1}}))
	r.Record(0.5, types.MustOperator([][]complex128{{0.3, 0.1i}, {-0.1i, 0.7}}))
	r.Record(1, types.MustOperator([][]complex128{{0.4, 0}, {0, 0.6}}))
	return r
}

func TestRecord(t *testing.T) {
	r := sampleRecord()
	require.Equal(t, 3, r.Len())
	assert.Equal(t, []float64{0.3, 0.7}, r.Populations[1])
	assert.InDelta(t, 0.1, r.Coherences[1][0], 1e-12)
	assert.InDelta(t, -0.4, r.Expect[1][0], 1e-12)

	m := r.PopulationMatrix()
	rows, cols := m.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 0.6, m.At(2, 1))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleRecord().WriteCSV(&buf))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"t", "p0", "p1", "|rho01|", "sz"}, rows[0])
	assert.Equal(t, "0.5", rows[2][0])
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleRecord().Render(&buf))
	var back Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, []float64{0, 0.5, 1}, back.Time)
	assert.Equal(t, []string{"sz"}, back.Names)
}

func TestCharts(t *testing.T) {
	c := NewCharts(sampleRecord(), "")
	var png bytes.Buffer
	require.NoError(t, c.Render(&png))
	assert.True(t, bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")))

	c.Format = "svg"
	var svg bytes.Buffer
	require.NoError(t, c.RenderCoherences(&svg))
	assert.Contains(t, svg.String(), "<svg")

	var ex bytes.Buffer
	require.NoError(t, c.RenderExpect(&ex))

	empty := NewCharts(NewRecord(2), "png")
	assert.Error(t, empty.Render(&bytes.Buffer{}))
	assert.Error(t, empty.RenderExpect(&bytes.Buffer{}))
}
