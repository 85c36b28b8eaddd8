package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/naka-gawa/project-size-stats/internal/config"
	"github.com/naka-gawa/project-size-stats/internal/domain"
	"github.com/naka-gawa/project-size-stats/internal/render"
	"github.com/naka-gawa/project-size-stats/internal/usecase"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Runs the pipeline once and writes a boxplot of one metric by project size",
	Long: `Joins the metric CSV with the size CSV, coerces the metric column to numbers
(non-numeric cells such as "N/A" count as missing), computes median and 75th
percentile, and writes a boxplot per size category. The run report is printed
as JSON.`,
	Example: `  project-size-stats plot --metrics ci.csv --sizes sizes.csv \
    --metric "Avg Duration (min)" --filter "Runs_Analyzed > 0" \
    --threshold 10 --threshold-label "Threshold (10 minutes)" --median --p75 \
    --output plots/duration.png`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)

		cfg, err := pipelineConfigFromFlags(cmd.Flags())
		if err != nil {
			fail(err)
		}
		if err := config.ValidateJob(cfg); err != nil {
			fail(err)
		}

		pipeline := usecase.NewPipeline(render.NewBoxPlotRenderer(logger), logger)
		result, err := pipeline.Run(cfg.MetricSource, cfg.SizeSource, cfg)
		if err != nil {
			fail(err)
		}
		if err := printJSON(os.Stdout, result); err != nil {
			fail(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)
	addPlotFlags(plotCmd.Flags())
	plotCmd.MarkFlagRequired("metrics")
	plotCmd.MarkFlagRequired("sizes")
	plotCmd.MarkFlagRequired("metric")
	plotCmd.MarkFlagRequired("output")
}

func addPlotFlags(f *pflag.FlagSet) {
	f.String("metrics", "", "Metric dataset CSV (required)")
	f.String("sizes", "", "Size dataset CSV (required)")
	f.String("metric", "", "Metric column to analyze (required)")
	f.String("join-metric", "Project", "Join key column in the metric dataset")
	f.String("join-size", "name", "Join key column in the size dataset")
	f.String("category-column", "Category", "Size category column in the size dataset")
	f.Bool("fold-case", false, "Match join keys case-insensitively")
	f.StringArray("rename", nil, "Rename a column for display, as FROM=TO (repeatable)")
	f.String("filter", "", `Keep only rows matching "<column> <op> <value>", e.g. "Runs_Analyzed > 0"`)
	f.Float64("threshold", 0, "Draw a fixed reference line at this value")
	f.String("threshold-label", "", "Legend label of the threshold line")
	f.Bool("median", false, "Draw the median as a reference line")
	f.Bool("p75", false, "Draw the 75th percentile as a reference line")
	f.String("scale", "linear", "Y axis scale: linear or log")
	f.StringSlice("order", []string{"Small", "Medium", "Large"}, "Category order on the x axis")
	f.String("title", "", "Plot title")
	f.String("ylabel", "", "Y axis label")
	f.StringP("output", "o", "", "Output PNG path (required)")
	f.String("table", "", "Also write the cleaned joined table to this CSV path")
}

// pipelineConfigFromFlags builds a single job from the plot command's flags.
func pipelineConfigFromFlags(f *pflag.FlagSet) (domain.PipelineConfig, error) {
	var cfg domain.PipelineConfig
	cfg.MetricSource, _ = f.GetString("metrics")
	cfg.SizeSource, _ = f.GetString("sizes")
	cfg.MetricColumn, _ = f.GetString("metric")
	cfg.JoinKeyMetric, _ = f.GetString("join-metric")
	cfg.JoinKeySize, _ = f.GetString("join-size")
	cfg.CategoryColumn, _ = f.GetString("category-column")
	cfg.FoldKeyCase, _ = f.GetBool("fold-case")
	cfg.Filter, _ = f.GetString("filter")
	cfg.YScale, _ = f.GetString("scale")
	cfg.CategoryOrder, _ = f.GetStringSlice("order")
	cfg.Title, _ = f.GetString("title")
	cfg.YLabel, _ = f.GetString("ylabel")
	cfg.OutputPath, _ = f.GetString("output")
	cfg.TablePath, _ = f.GetString("table")
	cfg.Name = cfg.MetricColumn

	renames, _ := f.GetStringArray("rename")
	for _, r := range renames {
		from, to, ok := strings.Cut(r, "=")
		if !ok || strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			return cfg, fmt.Errorf("invalid --rename %q, want FROM=TO", r)
		}
		cfg.Rename = append(cfg.Rename, domain.Rename{From: strings.TrimSpace(from), To: strings.TrimSpace(to)})
	}

	if f.Changed("threshold") {
		v, _ := f.GetFloat64("threshold")
		label, _ := f.GetString("threshold-label")
		if label == "" {
			label = fmt.Sprintf("Threshold (%g)", v)
		}
		cfg.ReferenceLines = append(cfg.ReferenceLines, domain.ReferenceLine{Label: label, Value: &v, Style: "dashed", Color: "red"})
	}
	if on, _ := f.GetBool("median"); on {
		cfg.ReferenceLines = append(cfg.ReferenceLines, domain.ReferenceLine{Label: "Median", Stat: "median", Style: "solid", Color: "green"})
	}
	if on, _ := f.GetBool("p75"); on {
		cfg.ReferenceLines = append(cfg.ReferenceLines, domain.ReferenceLine{Label: "75th percentile", Stat: "p75", Style: "dotted", Color: "blue"})
	}
	return cfg, nil
}
