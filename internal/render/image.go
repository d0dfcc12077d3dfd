package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/stepviz/core"
	"github.com/huangsam/stepviz/schema"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Default image size in pixels.
const (
	ImageWidth  = 800
	ImageHeight = 400
)

// RenderImage draws a single metric chart as PNG or SVG.
func RenderImage(w io.Writer, in schema.ChartRenderInput, format schema.RenderFormat) error {
	var provider chart.RendererProvider
	switch format {
	case schema.PNGRender:
		provider = chart.PNG
	case schema.SVGRender:
		provider = chart.SVG
	default:
		return fmt.Errorf("%w: unsupported image format %q", schema.ErrInvalidArgument, format)
	}

	ch, err := BuildImageChart(in)
	if err != nil {
		return err
	}
	if err := ch.Render(provider, w); err != nil {
		return fmt.Errorf("failed to render %s chart for %s: %w", format, in.Metric, err)
	}
	return nil
}

// BuildImageChart maps chart input onto a go-chart definition.
func BuildImageChart(in schema.ChartRenderInput) (chart.Chart, error) {
	var series []chart.Series
	for _, spec := range in.Lines {
		xs, ys := lineValues(in.Rows, spec.ID)
		if len(xs) == 0 {
			continue
		}
		if len(xs) == 1 {
			// A single point has no x range; draw it as a short flat segment.
			xs = append(xs, xs[0]+1)
			ys = append(ys, ys[0])
		}
		col := paletteColor(spec.Color)
		series = append(series, chart.ContinuousSeries{
			Name:    legendLabel(spec.ID, ys[len(ys)-1]),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: col,
				StrokeWidth: 2,
				DotColor:    col,
			},
		})
	}
	if len(series) == 0 {
		return chart.Chart{}, ErrNothingToDraw
	}

	ch := chart.Chart{
		Title:      in.Title,
		Width:      ImageWidth,
		Height:     ImageHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           "step",
			ValueFormatter: stepFormatter,
		},
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: in.YDomain[0], Max: in.YDomain[1]},
			ValueFormatter: tickFormatter,
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch, nil
}

// legendLabel names a line together with its last shown value.
func legendLabel(id string, last float64) string {
	return fmt.Sprintf("%s (%s)", id, core.FormatTooltipValue(last))
}

func lineValues(rows []schema.StepRow, id string) (xs, ys []float64) {
	for _, row := range rows {
		if v, ok := row.Value(id); ok {
			xs = append(xs, float64(row.Step))
			ys = append(ys, v)
		}
	}
	return xs, ys
}

func paletteColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

func tickFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return core.FormatYAxisTick(f)
	}
	return ""
}

func stepFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatInt(int64(f), 10)
	}
	return ""
}
