package usecase

import (
	"fmt"
	"math"
	"slices"

	"github.com/montanaflynn/stats"
	"github.com/naka-gawa/project-size-stats/internal/domain"
)

// quantile uses linear interpolation between closest ranks, the same
// definition pandas and NumPy default to.
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	h := float64(len(sorted)-1) * q
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// summarize computes the run's statistics. values must not be empty.
func summarize(values []float64, groups []domain.BoxGroup) (domain.SummaryStatistics, error) {
	data := stats.Float64Data(values)
	median, err := stats.Median(data)
	if err != nil {
		return domain.SummaryStatistics{}, fmt.Errorf("failed to compute median: %w", err)
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return domain.SummaryStatistics{}, fmt.Errorf("failed to compute mean: %w", err)
	}
	lo, err := stats.Min(data)
	if err != nil {
		return domain.SummaryStatistics{}, fmt.Errorf("failed to compute min: %w", err)
	}
	hi, err := stats.Max(data)
	if err != nil {
		return domain.SummaryStatistics{}, fmt.Errorf("failed to compute max: %w", err)
	}

	s := domain.SummaryStatistics{
		Count:       len(values),
		Median:      median,
		P75:         quantile(values, 0.75),
		Mean:        mean,
		Min:         lo,
		Max:         hi,
		PerCategory: make([]domain.CategoryStats, 0, len(groups)),
	}
	for _, g := range groups {
		gm, err := stats.Median(stats.Float64Data(g.Values))
		if err != nil {
			return domain.SummaryStatistics{}, fmt.Errorf("failed to compute median for %q: %w", g.Category, err)
		}
		s.PerCategory = append(s.PerCategory, domain.CategoryStats{Category: g.Category, Count: len(g.Values), Median: gm})
	}
	return s, nil
}

// groupByCategory keeps the configured order first, then any other category in
// the order it first appears. Configured categories with no rows are skipped.
func groupByCategory(rows []domain.JoinedRow, order []string) []domain.BoxGroup {
	byCat := make(map[string][]float64)
	var seen []string
	for _, r := range rows {
		if _, ok := byCat[r.Category]; !ok {
			seen = append(seen, r.Category)
		}
		byCat[r.Category] = append(byCat[r.Category], r.Metric)
	}

	groups := make([]domain.BoxGroup, 0, len(seen))
	used := make(map[string]bool, len(seen))
	for _, c := range order {
		if vals, ok := byCat[c]; ok && !used[c] {
			groups = append(groups, domain.BoxGroup{Category: c, Values: vals})
			used[c] = true
		}
	}
	for _, c := range seen {
		if !used[c] {
			groups = append(groups, domain.BoxGroup{Category: c, Values: byCat[c]})
		}
	}
	return groups
}

// resolveLines turns configured reference lines into concrete values.
func resolveLines(lines []domain.ReferenceLine, s domain.SummaryStatistics) ([]domain.HLine, error) {
	out := make([]domain.HLine, 0, len(lines))
	for _, l := range lines {
		h := domain.HLine{Label: l.Label, Style: l.Style, Color: l.Color}
		name := l.Stat
		switch {
		case l.Value != nil:
			h.Value = *l.Value
			name = "threshold"
		case l.Stat == "median":
			h.Value = s.Median
		case l.Stat == "p75":
			h.Value = s.P75
		case l.Stat == "mean":
			h.Value = s.Mean
		default:
			return nil, fmt.Errorf("reference line %q: need a value or a stat of median, p75 or mean", l.Label)
		}
		if h.Label == "" {
			h.Label = fmt.Sprintf("%s (%.2f)", name, h.Value)
		}
		out = append(out, h)
	}
	return out, nil
}
