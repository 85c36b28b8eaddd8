package domain

import "strings"

// Scale is the y-axis scale of the rendered plot.
type Scale string

const (
	ScaleLinear Scale = "linear"
	ScaleLog    Scale = "log"
)

// ParseScale accepts the recognized spellings of the two scales.
func ParseScale(s string) (Scale, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return ScaleLinear, nil
	case "log", "logarithmic":
		return ScaleLog, nil
	}
	return "", NewUnsupportedScaleError(s)
}

// Rename maps an original column name to its display name.
type Rename struct {
	From string `mapstructure:"from" json:"from"`
	To   string `mapstructure:"to" json:"to"`
}

// ReferenceLine is a horizontal line overlaid on the plot. Either Value is set,
// or Stat names a computed statistic (median, p75, mean).
type ReferenceLine struct {
	Label string   `mapstructure:"label" json:"label"`
	Value *float64 `mapstructure:"value" json:"value,omitempty"`
	Stat  string   `mapstructure:"stat" json:"stat,omitempty"`
	Style string   `mapstructure:"style" json:"style,omitempty"`
	Color string   `mapstructure:"color" json:"color,omitempty"`
}

// PipelineConfig drives a single run of the pipeline.
type PipelineConfig struct {
	Name           string          `mapstructure:"name"`
	MetricSource   string          `mapstructure:"metric_source"`
	SizeSource     string          `mapstructure:"size_source"`
	JoinKeyMetric  string          `mapstructure:"join_key_metric"`
	JoinKeySize    string          `mapstructure:"join_key_size"`
	CategoryColumn string          `mapstructure:"category_column"`
	FoldKeyCase    bool            `mapstructure:"fold_key_case"`
	MetricColumn   string          `mapstructure:"metric_column"`
	Rename         []Rename        `mapstructure:"rename"`
	Filter         string          `mapstructure:"filter"`
	ReferenceLines []ReferenceLine `mapstructure:"reference_lines"`
	YScale         string          `mapstructure:"y_scale"`
	CategoryOrder  []string        `mapstructure:"category_order"`
	Title          string          `mapstructure:"title"`
	YLabel         string          `mapstructure:"y_label"`
	OutputPath     string          `mapstructure:"output_path"`
	TablePath      string          `mapstructure:"table_path"`
}

// DisplayName returns the renamed form of column, or column itself.
func (c *PipelineConfig) DisplayName(column string) string {
	for _, r := range c.Rename {
		if r.From == column {
			return r.To
		}
	}
	return column
}

// Category returns the configured category column, defaulting to "Category".
func (c *PipelineConfig) Category() string {
	if c.CategoryColumn == "" {
		return "Category"
	}
	return c.CategoryColumn
}
