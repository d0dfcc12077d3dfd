package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/aclements/go-moremath/stats"
	"github.com/huangsam/stepviz/schema"
)

// domainPadding is the fraction of the value range added above and below a chart.
const domainPadding = 0.1

// YDomain computes the padded y-axis range over every selected line's values.
// A flat series gets a fixed ±0.1 band so the axis never collapses to zero height.
// With no values at all the band is centered on zero.
func YDomain(rows []schema.StepRow, lineIDs []string) [2]float64 {
	var values []float64
	for _, row := range rows {
		for _, id := range lineIDs {
			if v, ok := row.Values[id]; ok {
				values = append(values, v)
			}
		}
	}
	if len(values) == 0 {
		return [2]float64{-domainPadding, domainPadding}
	}

	lo, hi := stats.Bounds(values)
	if lo == hi {
		return [2]float64{lo - domainPadding, hi + domainPadding}
	}
	pad := (hi - lo) * domainPadding
	return [2]float64{lo - pad, hi + pad}
}

// LineColor returns the palette color for the line at position i of the selection.
// Colors follow position, not experiment identity.
func LineColor(i int) string {
	if i < 0 {
		i = -i
	}
	return schema.Palette[i%len(schema.Palette)]
}

// FormatYAxisTick renders an axis tick: small non-zero values keep four decimals,
// everything else is rounded half up to an integer.
func FormatYAxisTick(v float64) string {
	if math.Abs(v) < 1 && v != 0 {
		return strconv.FormatFloat(v, 'f', 4, 64)
	}
	return strconv.FormatFloat(math.Floor(v+0.5), 'f', 0, 64)
}

// FormatTooltipValue renders a hovered value with five decimals.
func FormatTooltipValue(v float64) string {
	return fmt.Sprintf("%.5f", v)
}

// FormatMetricTitle turns "train_loss" into "Train Loss".
func FormatMetricTitle(metric string) string {
	words := strings.Fields(strings.ReplaceAll(metric, "_", " "))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// BuildChartInput maps one computed series onto renderer input for the given lines.
func BuildChartInput(series schema.MetricSeries, lineIDs []string) schema.ChartRenderInput {
	lines := make([]schema.LineSpec, len(lineIDs))
	for i, id := range lineIDs {
		lines[i] = schema.LineSpec{ID: id, Color: LineColor(i)}
	}
	return schema.ChartRenderInput{
		Metric:    series.Metric,
		Title:     FormatMetricTitle(series.Metric),
		Rows:      series.Rows,
		LineIDs:   lineIDs,
		Lines:     lines,
		YDomain:   YDomain(series.Rows, lineIDs),
		RawPoints: series.RawPoints,
	}
}

// BuildDashboard builds renderer input for every metric in the result, in result order.
func BuildDashboard(result schema.DownsampledSeries, lineIDs []string) []schema.ChartRenderInput {
	inputs := make([]schema.ChartRenderInput, 0, len(result))
	for _, series := range result {
		inputs = append(inputs, BuildChartInput(series, lineIDs))
	}
	return inputs
}
