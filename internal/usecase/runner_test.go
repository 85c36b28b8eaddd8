package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/naka-gawa/project-size-stats/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_RunAll(t *testing.T) {
	dir := t.TempDir()
	metrics := writeCSV(t, dir, "metrics.csv",
		"Project,Avg Commits/Weekday,Max Commit Size\na,1.5,120\nb,3.0,80000\nc,N/A,4500\n")
	sizes := writeCSV(t, dir, "sizes.csv", "name,Category\na,Small\nb,Large\nc,Medium\n")

	jobs := []domain.PipelineConfig{
		{
			Name: "commits", MetricSource: metrics, SizeSource: sizes,
			JoinKeyMetric: "Project", JoinKeySize: "name", MetricColumn: "Avg Commits/Weekday",
			OutputPath: filepath.Join(dir, "plots", "commits.png"),
		},
		{
			Name: "commit-size", MetricSource: metrics, SizeSource: sizes,
			JoinKeyMetric: "Project", JoinKeySize: "name", MetricColumn: "Max Commit Size",
			YScale: "log", OutputPath: filepath.Join(dir, "plots", "commit-size.png"),
		},
	}
	p, _ := newTestPipeline()
	runner := NewRunner(p, discardLogger(), 2)

	results, err := runner.RunAll(context.Background(), jobs)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "commits", results[0].Name)
	assert.Equal(t, 2, results[0].Stats.Count)
	assert.Equal(t, "commit-size", results[1].Name)
	assert.Equal(t, 3, results[1].Stats.Count)
	for _, job := range jobs {
		_, err := os.Stat(job.OutputPath)
		assert.NoError(t, err)
	}
}

func TestRunner_RunAll_ReportsFailingJob(t *testing.T) {
	dir := t.TempDir()
	metrics := writeCSV(t, dir, "metrics.csv", "Project,Time\na,N/A\n")
	sizes := writeCSV(t, dir, "sizes.csv", "name,Category\na,Small\n")
	jobs := []domain.PipelineConfig{{
		Name: "broken", MetricSource: metrics, SizeSource: sizes,
		JoinKeyMetric: "Project", JoinKeySize: "name", MetricColumn: "Time",
		OutputPath: filepath.Join(dir, "broken.png"),
	}}
	p, _ := newTestPipeline()

	results, err := NewRunner(p, discardLogger(), 1).RunAll(context.Background(), jobs)

	assert.Nil(t, results)
	assert.True(t, errors.Is(err, domain.ErrEmptyDataset))
	assert.ErrorContains(t, err, `job "broken"`)
}

func TestRunner_RunAll_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	jobs := []domain.PipelineConfig{{Name: "never"}}
	p, r := newTestPipeline()

	_, err := NewRunner(p, discardLogger(), 1).RunAll(ctx, jobs)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.Calls)
}
