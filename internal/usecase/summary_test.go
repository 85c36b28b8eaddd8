package usecase

import (
	"testing"

	"github.com/naka-gawa/project-size-stats/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantile(t *testing.T) {
	testCases := []struct {
		name   string
		values []float64
		q      float64
		want   float64
	}{
		{name: "single value", values: []float64{4}, q: 0.75, want: 4},
		{name: "two values", values: []float64{8, 5}, q: 0.75, want: 7.25},
		{name: "exact rank", values: []float64{1, 2, 3, 4, 5}, q: 0.75, want: 4},
		{name: "interpolated", values: []float64{1, 2, 3, 4}, q: 0.75, want: 3.25},
		{name: "median", values: []float64{3, 1, 2, 4}, q: 0.5, want: 2.5},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, quantile(tc.values, tc.q), 1e-9)
		})
	}
}

func TestQuantile_DoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	quantile(values, 0.75)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestSummarize(t *testing.T) {
	groups := []domain.BoxGroup{
		{Category: "Small", Values: []float64{1, 3}},
		{Category: "Large", Values: []float64{10, 20, 30}},
	}

	s, err := summarize([]float64{1, 3, 10, 20, 30}, groups)

	require.NoError(t, err)
	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 10.0, s.Median)
	assert.Equal(t, 20.0, s.P75)
	assert.InDelta(t, 12.8, s.Mean, 1e-9)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 30.0, s.Max)
	assert.Equal(t, []domain.CategoryStats{
		{Category: "Small", Count: 2, Median: 2},
		{Category: "Large", Count: 3, Median: 20},
	}, s.PerCategory)
}

func TestGroupByCategory_FirstSeenOrder(t *testing.T) {
	rows := []domain.JoinedRow{
		{Category: "Medium", Metric: 1},
		{Category: "Small", Metric: 2},
		{Category: "Medium", Metric: 3},
	}

	groups := groupByCategory(rows, nil)

	assert.Equal(t, []domain.BoxGroup{
		{Category: "Medium", Values: []float64{1, 3}},
		{Category: "Small", Values: []float64{2}},
	}, groups)
}

func TestResolveLines(t *testing.T) {
	threshold := 2.36
	s := domain.SummaryStatistics{Median: 1.5, P75: 2.5, Mean: 1.8}

	lines, err := resolveLines([]domain.ReferenceLine{
		{Label: "Threshold (2.36 commits/day)", Value: &threshold, Style: "dashed", Color: "red"},
		{Stat: "median"},
		{Label: "P75", Stat: "p75", Style: "dotted"},
		{Stat: "mean"},
	}, s)

	require.NoError(t, err)
	assert.Equal(t, []domain.HLine{
		{Label: "Threshold (2.36 commits/day)", Value: 2.36, Style: "dashed", Color: "red"},
		{Label: "median (1.50)", Value: 1.5},
		{Label: "P75", Value: 2.5, Style: "dotted"},
		{Label: "mean (1.80)", Value: 1.8},
	}, lines)

	_, err = resolveLines([]domain.ReferenceLine{{Stat: "p90"}}, s)
	assert.Error(t, err)
}
