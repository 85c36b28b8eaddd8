// Package render draws pipeline results as PNG boxplots using gonum/plot.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/naka-gawa/project-size-stats/internal/domain"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Fixed figure size.
const (
	figureWidth  = 8 * vg.Inch
	figureHeight = 6 * vg.Inch
)

var boxWidth = vg.Points(40)

var namedColors = map[string]color.RGBA{
	"red":    {R: 214, G: 39, B: 40, A: 255},
	"green":  {R: 44, G: 160, B: 44, A: 255},
	"blue":   {R: 31, G: 119, B: 180, A: 255},
	"orange": {R: 255, G: 127, B: 14, A: 255},
	"purple": {R: 148, G: 103, B: 189, A: 255},
	"gray":   {R: 127, G: 127, B: 127, A: 255},
	"black":  {A: 255},
}

// ParseColor returns the named color, or ok=false for an empty name.
func ParseColor(name string) (c color.Color, ok bool, err error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, false, nil
	}
	rgba, found := namedColors[name]
	if !found {
		return nil, false, fmt.Errorf("unknown color %q", name)
	}
	return rgba, true, nil
}

// ParseStyle returns the dash pattern of a line style. An empty style means dashed.
func ParseStyle(style string) ([]vg.Length, error) {
	switch strings.ToLower(strings.TrimSpace(style)) {
	case "solid":
		return nil, nil
	case "", "dashed":
		return []vg.Length{vg.Points(6), vg.Points(4)}, nil
	case "dotted":
		return []vg.Length{vg.Points(1), vg.Points(3)}, nil
	}
	return nil, fmt.Errorf("unknown line style %q", style)
}

// BoxPlotRenderer renders one box per size category with reference lines.
type BoxPlotRenderer struct {
	logger *logrus.Logger
}

// NewBoxPlotRenderer creates a new BoxPlotRenderer.
func NewBoxPlotRenderer(logger *logrus.Logger) *BoxPlotRenderer {
	return &BoxPlotRenderer{logger: logger}
}

// Render draws spec and returns the encoded PNG.
func (r *BoxPlotRenderer) Render(spec domain.PlotSpec) ([]byte, error) {
	if len(spec.Groups) == 0 {
		return nil, fmt.Errorf("nothing to plot")
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	lo, hi := math.Inf(1), math.Inf(-1)
	names := make([]string, 0, len(spec.Groups))
	for i, g := range spec.Groups {
		box, err := plotter.NewBoxPlot(boxWidth, float64(i), plotter.Values(g.Values))
		if err != nil {
			return nil, fmt.Errorf("failed to build box for %q: %w", g.Category, err)
		}
		box.FillColor = plotutil.Color(i)
		p.Add(box)
		names = append(names, fmt.Sprintf("%s (n=%d)", g.Category, len(g.Values)))
		for _, v := range g.Values {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	p.NominalX(names...)

	left, right := -0.5, float64(len(spec.Groups))-0.5
	for i, l := range spec.Lines {
		line, err := plotter.NewLine(plotter.XYs{{X: left, Y: l.Value}, {X: right, Y: l.Value}})
		if err != nil {
			return nil, fmt.Errorf("failed to build line %q: %w", l.Label, err)
		}
		dashes, err := ParseStyle(l.Style)
		if err != nil {
			return nil, err
		}
		c, ok, err := ParseColor(l.Color)
		if err != nil {
			return nil, err
		}
		if !ok {
			c = plotutil.DarkColors[i%len(plotutil.DarkColors)]
		}
		line.LineStyle.Color = c
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Dashes = dashes
		p.Add(line)
		p.Legend.Add(l.Label, line)
		lo, hi = math.Min(lo, l.Value), math.Max(hi, l.Value)
	}

	if spec.Scale == domain.ScaleLog {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
		p.Y.Min = lo / 1.5
		p.Y.Max = hi * 1.5
	}

	wt, err := p.WriterTo(figureWidth, figureHeight, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	r.logger.WithFields(logrus.Fields{"boxes": len(spec.Groups), "lines": len(spec.Lines), "bytes": buf.Len()}).Debug("Rendered boxplot")
	return buf.Bytes(), nil
}
