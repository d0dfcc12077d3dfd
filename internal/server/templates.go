package server

import (
	"html/template"

	"github.com/huangsam/stepviz/internal/render"
	"github.com/huangsam/stepviz/schema"
)

var templateFuncs = template.FuncMap{
	"chartFile": func(metric string) string {
		return render.ChartFileName(metric, schema.SVGRender)
	},
}
