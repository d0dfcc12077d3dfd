package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/huangsam/stepviz/schema"
)

// RenderHTML writes an interactive page with one line chart per metric.
// Each chart has an axis tooltip, a legend and a slider to zoom into a step range.
func RenderHTML(w io.Writer, inputs []schema.ChartRenderInput, title string) error {
	page := components.NewPage()
	page.PageTitle = title
	for _, in := range inputs {
		page.AddCharts(buildLineChart(in))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render HTML charts: %w", err)
	}
	return nil
}

func buildLineChart(in schema.ChartRenderInput) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: in.Title,
			Width:     "100%",
			Height:    "400px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    in.Title,
			Subtitle: fmt.Sprintf("%d of %d points", len(in.Rows), in.RawPoints),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "bottom",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "step",
			Type: "value",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			Min:  in.YDomain[0],
			Max:  in.YDomain[1],
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "slider",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
		charts.WithGridOpts(opts.Grid{
			Left:   "8%",
			Right:  "8%",
			Bottom: "25%",
		}),
	)

	for _, spec := range in.Lines {
		line.AddSeries(spec.ID, lineData(in.Rows, spec.ID),
			charts.WithLineChartOpts(opts.LineChart{
				ShowSymbol:   opts.Bool(false),
				ConnectNulls: opts.Bool(true),
			}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: spec.Color, Width: 2}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: spec.Color}),
		)
	}
	return line
}

// lineData pairs every step with the line's value. Steps the experiment did
// not report are left out so the line connects over them.
func lineData(rows []schema.StepRow, id string) []opts.LineData {
	data := make([]opts.LineData, 0, len(rows))
	for _, row := range rows {
		if v, ok := row.Value(id); ok {
			data = append(data, opts.LineData{Value: []any{row.Step, v}})
		}
	}
	return data
}
