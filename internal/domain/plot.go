package domain

// BoxGroup is one box of the plot: a size category and its metric values.
type BoxGroup struct {
	Category string
	Values   []float64
}

// HLine is a reference line with its value already resolved.
type HLine struct {
	Label string
	Value float64
	Style string
	Color string
}

// PlotSpec is everything a renderer needs to draw one figure.
type PlotSpec struct {
	Title  string
	XLabel string
	YLabel string
	Scale  Scale
	Groups []BoxGroup
	Lines  []HLine
}
