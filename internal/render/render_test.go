package render

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/stepviz/internal/contract"
	"github.com/huangsam/stepviz/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() schema.ChartRenderInput {
	return schema.ChartRenderInput{
		Metric: "train_loss",
		Title:  "Train Loss",
		Rows: []schema.StepRow{
			{Step: 0, Values: map[string]float64{"exp1": 1.0, "exp2": 2.0}},
			{Step: 1, Values: map[string]float64{"exp1": 0.8}},
			{Step: 2, Values: map[string]float64{"exp1": 0.5, "exp2": 1.5}},
		},
		LineIDs:   []string{"exp1", "exp2"},
		Lines:     []schema.LineSpec{{ID: "exp1", Color: "#8884d8"}, {ID: "exp2", Color: "#82ca9d"}},
		YDomain:   [2]float64{0.35, 2.15},
		RawPoints: 3,
	}
}

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestRenderImagePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderImage(&buf, sampleInput(), schema.PNGRender))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRenderImageSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderImage(&buf, sampleInput(), schema.SVGRender))
	assert.Contains(t, buf.String(), "<svg")
	assert.Contains(t, buf.String(), "Train Loss")
}

func TestRenderImageSinglePoint(t *testing.T) {
	in := sampleInput()
	in.Rows = []schema.StepRow{{Step: 5, Values: map[string]float64{"exp1": 2.0}}}
	in.YDomain = [2]float64{1.9, 2.1}

	var buf bytes.Buffer
	require.NoError(t, RenderImage(&buf, in, schema.PNGRender))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRenderImageErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, RenderImage(&buf, sampleInput(), schema.HTMLRender), schema.ErrInvalidArgument)

	empty := sampleInput()
	empty.Rows = nil
	assert.ErrorIs(t, RenderImage(&buf, empty, schema.PNGRender), ErrNothingToDraw)
}

func TestBuildImageChart(t *testing.T) {
	ch, err := BuildImageChart(sampleInput())
	require.NoError(t, err)
	require.Len(t, ch.Series, 2)
	assert.Equal(t, "exp1 (0.50000)", ch.Series[0].GetName())
	assert.Equal(t, "exp2 (1.50000)", ch.Series[1].GetName())
	assert.Equal(t, 0.35, ch.YAxis.Range.GetMin())
	assert.Equal(t, 2.15, ch.YAxis.Range.GetMax())
	assert.Equal(t, "0.5000", ch.YAxis.ValueFormatter(0.5))
	assert.Equal(t, "2", ch.YAxis.ValueFormatter(1.5))
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, []schema.ChartRenderInput{sampleInput()}, "runs"))

	out := buf.String()
	assert.Contains(t, out, "<title>runs</title>")
	assert.Contains(t, out, "Train Loss")
	assert.Contains(t, out, "slider")
	assert.Contains(t, out, "#8884d8")
	assert.Contains(t, out, "exp2")
}

func TestChartFileName(t *testing.T) {
	assert.Equal(t, "train_loss.png", ChartFileName("train_loss", schema.PNGRender))
	assert.Equal(t, "eval_acc_top1.svg", ChartFileName("eval/acc top1", schema.SVGRender))
	assert.Equal(t, "metric.png", ChartFileName("..", schema.PNGRender))
}

func TestWriteChartFiles(t *testing.T) {
	empty := sampleInput()
	empty.Metric = "empty"
	empty.Rows = nil
	inputs := []schema.ChartRenderInput{sampleInput(), empty}

	t.Run("images", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "charts")
		paths, err := WriteChartFiles(dir, inputs, schema.SVGRender)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "train_loss.svg")}, paths)
		assert.NoFileExists(t, filepath.Join(dir, "empty.svg"))
	})

	t.Run("html", func(t *testing.T) {
		dir := t.TempDir()
		paths, err := WriteChartFiles(dir, inputs, schema.HTMLRender)
		require.NoError(t, err)
		require.Equal(t, []string{filepath.Join(dir, HTMLIndexFile)}, paths)
		data, err := os.ReadFile(paths[0])
		require.NoError(t, err)
		assert.Contains(t, string(data), "Train Loss")
	})

	t.Run("none", func(t *testing.T) {
		_, err := WriteChartFiles(t.TempDir(), inputs, schema.NoRender)
		assert.ErrorIs(t, err, schema.ErrInvalidArgument)
	})
}

func TestRendererUsesConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := &contract.Config{Render: schema.PNGRender, RenderDir: dir}
	paths, err := NewRenderer().RenderCharts([]schema.ChartRenderInput{sampleInput()}, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "train_loss.png")}, paths)
}
