// Package render draws chart input as interactive HTML, PNG or SVG files.
package render

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/huangsam/stepviz/internal/contract"
	"github.com/huangsam/stepviz/schema"
	"github.com/sirupsen/logrus"
)

// ErrNothingToDraw is returned for a chart without a single plottable value.
var ErrNothingToDraw = errors.New("chart has no values to draw")

// HTMLIndexFile is the file name of the interactive dashboard.
const HTMLIndexFile = "index.html"

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Renderer is the default contract.ChartRenderer.
type Renderer struct{}

var _ contract.ChartRenderer = &Renderer{} // Compile-time check

// NewRenderer creates a chart renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderCharts writes inputs to cfg.RenderDir in cfg.Render format.
func (r *Renderer) RenderCharts(inputs []schema.ChartRenderInput, cfg *contract.Config) ([]string, error) {
	return WriteChartFiles(cfg.RenderDir, inputs, cfg.Render)
}

// ChartFileName returns the file name used for a metric chart.
func ChartFileName(metric string, format schema.RenderFormat) string {
	name := unsafeFileChars.ReplaceAllString(metric, "_")
	if name == "" || name == "." || name == ".." {
		name = "metric"
	}
	return name + "." + string(format)
}

// WriteChartFiles writes one image per metric, or a single index.html for the
// HTML format, and returns the written paths. Charts with nothing to draw are
// skipped with a warning.
func WriteChartFiles(dir string, inputs []schema.ChartRenderInput, format schema.RenderFormat) ([]string, error) {
	if !schema.ValidRenderFormats[format] || format == schema.NoRender {
		return nil, fmt.Errorf("%w: cannot write charts as %q", schema.ErrInvalidArgument, format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create chart directory: %w", err)
	}

	if format == schema.HTMLRender {
		path := filepath.Join(dir, HTMLIndexFile)
		err := writeFile(path, func(w io.Writer) error {
			return RenderHTML(w, inputs, "stepviz")
		})
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	var paths []string
	for _, in := range inputs {
		path := filepath.Join(dir, ChartFileName(in.Metric, format))
		err := writeFile(path, func(w io.Writer) error {
			return RenderImage(w, in, format)
		})
		if errors.Is(err, ErrNothingToDraw) {
			_ = os.Remove(path)
			logrus.Warnf("Skipped chart for metric '%s': no values", in.Metric)
			continue
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
