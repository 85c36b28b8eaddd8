// Package usecase contains the business logic of the application.
package usecase

import (
	"fmt"

	"github.com/naka-gawa/project-size-stats/internal/dataset"
	"github.com/naka-gawa/project-size-stats/internal/domain"
	"github.com/sirupsen/logrus"
)

// Renderer draws a plot specification into an encoded image.
type Renderer interface {
	Render(spec domain.PlotSpec) ([]byte, error)
}

// Pipeline is the use case that merges a metric dataset with project sizes,
// summarizes the metric and renders a boxplot per size category.
// It keeps no state between runs and is safe for concurrent use.
type Pipeline struct {
	renderer Renderer
	logger   *logrus.Logger
}

// NewPipeline creates a new Pipeline instance.
func NewPipeline(renderer Renderer, logger *logrus.Logger) *Pipeline {
	return &Pipeline{
		renderer: renderer,
		logger:   logger,
	}
}

// Run executes one pass: load, join, rename, filter, coerce, summarize, plot
// and write. Nothing is written unless every earlier stage succeeded.
func (p *Pipeline) Run(metricSource, sizeSource string, cfg domain.PipelineConfig) (*domain.RunResult, error) {
	log := p.logger.WithFields(logrus.Fields{"job": cfg.Name, "metric": cfg.MetricColumn})
	log.Debug("Usecase: Starting pipeline run...")

	scale, err := domain.ParseScale(cfg.YScale)
	if err != nil {
		return nil, err
	}
	if _, err := resolveLines(cfg.ReferenceLines, domain.SummaryStatistics{}); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	pred, err := parseFilter(cfg.Filter)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.OutputPath == "" {
		return nil, fmt.Errorf("invalid configuration: output path is required")
	}

	metrics, err := dataset.Load(metricSource)
	if err != nil {
		return nil, err
	}
	sizes, err := dataset.Load(sizeSource)
	if err != nil {
		return nil, err
	}
	counts := domain.RowCounts{MetricRows: len(metrics.Rows), SizeRows: len(sizes.Rows)}
	log.WithFields(logrus.Fields{"metric_rows": counts.MetricRows, "size_rows": counts.SizeRows}).Debug("Loaded datasets")

	joined, err := innerJoin(metrics, sizes, &cfg)
	if err != nil {
		return nil, err
	}
	table := joined.table
	counts.Joined = len(table.Rows)
	counts.Unmatched = joined.unmatched
	log.WithFields(logrus.Fields{"joined": counts.Joined, "unmatched": counts.Unmatched}).Debug("Joined datasets")

	if pred != nil {
		idx := joined.column(pred.column)
		if idx < 0 {
			return nil, domain.NewDatasetLoadError("filter", metrics.Path, pred.column, "filter column not found", nil)
		}
		kept := table.Rows[:0]
		for _, row := range table.Rows {
			if pred.match(row.Cells[idx]) {
				kept = append(kept, row)
			}
		}
		counts.Filtered = len(table.Rows) - len(kept)
		table.Rows = kept
		log.WithField("filtered", counts.Filtered).Debug("Applied filter")
	}

	metricIdx := joined.column(table.MetricColumn)
	valid := table.Rows[:0]
	for _, row := range table.Rows {
		v, ok := coerce(row.Cells[metricIdx])
		if !ok {
			counts.Missing++
			continue
		}
		row.Metric = v
		valid = append(valid, row)
	}
	table.Rows = valid
	counts.Eligible = len(valid)
	log.WithFields(logrus.Fields{"missing": counts.Missing, "eligible": counts.Eligible}).Debug("Coerced metric column")

	if counts.Eligible == 0 {
		return nil, domain.NewEmptyDatasetError(metrics.Path, cfg.MetricColumn)
	}

	values := make([]float64, len(table.Rows))
	for i, row := range table.Rows {
		values[i] = row.Metric
	}
	groups := groupByCategory(table.Rows, cfg.CategoryOrder)
	summary, err := summarize(values, groups)
	if err != nil {
		return nil, err
	}
	lines, err := resolveLines(cfg.ReferenceLines, summary)
	if err != nil {
		return nil, err
	}
	for i, l := range cfg.ReferenceLines {
		if l.Value != nil {
			v := lines[i].Value
			summary.Threshold = &v
			break
		}
	}

	spec := domain.PlotSpec{
		Title:  cfg.Title,
		XLabel: "Project Size",
		YLabel: cfg.YLabel,
		Scale:  scale,
		Groups: groups,
		Lines:  lines,
	}
	if spec.Title == "" {
		spec.Title = fmt.Sprintf("%s by Project Size", table.MetricColumn)
	}
	if spec.YLabel == "" {
		spec.YLabel = table.MetricColumn
	}
	if scale == domain.ScaleLog {
		spec, counts.Unplottable = dropNonPositive(spec)
		if counts.Unplottable > 0 {
			log.WithField("unplottable", counts.Unplottable).Warn("Non-positive values left out of logarithmic plot")
		}
		if len(spec.Groups) == 0 {
			return nil, &domain.PipelineError{
				Kind:   domain.ErrEmptyDataset,
				Stage:  "plot",
				Path:   metrics.Path,
				Column: cfg.MetricColumn,
				Msg:    "no positive values to draw on a logarithmic scale",
			}
		}
	}

	img, err := p.renderer.Render(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to render plot: %w", err)
	}
	if err := dataset.WriteFileAtomic(cfg.OutputPath, img); err != nil {
		return nil, fmt.Errorf("failed to write plot %s: %w", cfg.OutputPath, err)
	}
	log.WithField("path", cfg.OutputPath).Info("Wrote plot")

	result := &domain.RunResult{
		Name:   cfg.Name,
		Table:  table,
		Stats:  summary,
		Counts: counts,
		Plot: domain.PlotArtifact{
			Path:       cfg.OutputPath,
			Categories: make([]string, 0, len(spec.Groups)),
			Bytes:      len(img),
		},
	}
	for _, g := range spec.Groups {
		result.Plot.Categories = append(result.Plot.Categories, g.Category)
	}

	if cfg.TablePath != "" {
		data, err := dataset.EncodeTable(table)
		if err != nil {
			return nil, fmt.Errorf("failed to encode table: %w", err)
		}
		if err := dataset.WriteFileAtomic(cfg.TablePath, data); err != nil {
			return nil, fmt.Errorf("failed to write table %s: %w", cfg.TablePath, err)
		}
		result.TablePath = cfg.TablePath
	}

	log.Debug("Usecase: Pipeline run complete.")
	return result, nil
}

// dropNonPositive removes values a logarithmic axis cannot show. Groups and
// lines left empty or non-positive are removed as well.
func dropNonPositive(spec domain.PlotSpec) (domain.PlotSpec, int) {
	dropped := 0
	groups := make([]domain.BoxGroup, 0, len(spec.Groups))
	for _, g := range spec.Groups {
		vals := make([]float64, 0, len(g.Values))
		for _, v := range g.Values {
			if v > 0 {
				vals = append(vals, v)
			} else {
				dropped++
			}
		}
		if len(vals) > 0 {
			groups = append(groups, domain.BoxGroup{Category: g.Category, Values: vals})
		}
	}
	lines := make([]domain.HLine, 0, len(spec.Lines))
	for _, l := range spec.Lines {
		if l.Value > 0 {
			lines = append(lines, l)
		}
	}
	spec.Groups = groups
	spec.Lines = lines
	return spec, dropped
}
