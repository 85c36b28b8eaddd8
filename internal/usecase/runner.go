package usecase

import (
	"context"
	"fmt"

	"github.com/naka-gawa/project-size-stats/internal/domain"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Runner executes independent pipeline jobs side by side. Jobs must write to
// disjoint output files; the runner itself shares nothing between them.
type Runner struct {
	pipeline    *Pipeline
	logger      *logrus.Logger
	parallelism int
}

// NewRunner creates a new Runner instance.
func NewRunner(pipeline *Pipeline, logger *logrus.Logger, parallelism int) *Runner {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Runner{
		pipeline:    pipeline,
		logger:      logger,
		parallelism: parallelism,
	}
}

// RunAll runs every job and returns results in job order. The first failure
// stops jobs that have not started yet.
func (r *Runner) RunAll(ctx context.Context, jobs []domain.PipelineConfig) ([]*domain.RunResult, error) {
	r.logger.WithField("jobs", len(jobs)).Info("Usecase: Starting batch run...")

	results := make([]*domain.RunResult, len(jobs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.parallelism)
	for i, job := range jobs {
		i, job := i, job
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			res, err := r.pipeline.Run(job.MetricSource, job.SizeSource, job)
			if err != nil {
				return fmt.Errorf("job %q: %w", job.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	r.logger.Info("Usecase: Batch run complete.")
	return results, nil
}
