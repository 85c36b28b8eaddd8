package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/naka-gawa/project-size-stats/internal/domain"
	"github.com/naka-gawa/project-size-stats/internal/gateway"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Size measures understood by the Sizer.
const (
	MeasureDisk = "disk" // repository disk usage, KB
	MeasureCode = "code" // linguist source bytes
)

// SizeBounds are inclusive upper bounds of the Small and Medium categories.
// Anything larger is Large.
type SizeBounds struct {
	SmallMax  int `mapstructure:"small_max"`
	MediumMax int `mapstructure:"medium_max"`
}

// DefaultBounds returns the bounds used when none are configured.
func DefaultBounds(measure string) SizeBounds {
	if measure == MeasureCode {
		return SizeBounds{SmallMax: 1_000_000, MediumMax: 10_000_000}
	}
	return SizeBounds{SmallMax: 10_000, MediumMax: 100_000}
}

// Classify maps a size onto a category.
func (b SizeBounds) Classify(size int) string {
	switch {
	case size <= b.SmallMax:
		return "Small"
	case size <= b.MediumMax:
		return "Medium"
	default:
		return "Large"
	}
}

// Sizer is the use case that builds a size dataset from GitHub.
type Sizer struct {
	fetcher     gateway.Fetcher
	logger      *logrus.Logger
	concurrency int
}

// NewSizer creates a new Sizer instance.
func NewSizer(fetcher gateway.Fetcher, logger *logrus.Logger, concurrency int) *Sizer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Sizer{
		fetcher:     fetcher,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Collect fetches the size of every "owner/name" repository concurrently and
// classifies it. Results follow the input order with duplicates removed.
func (s *Sizer) Collect(ctx context.Context, repos []string, measure string, bounds SizeBounds) ([]*domain.ProjectSize, error) {
	if measure != MeasureDisk && measure != MeasureCode {
		return nil, fmt.Errorf("unknown size measure %q (want %s or %s)", measure, MeasureDisk, MeasureCode)
	}
	if bounds.SmallMax > bounds.MediumMax {
		return nil, fmt.Errorf("small bound %d is above medium bound %d", bounds.SmallMax, bounds.MediumMax)
	}

	unique := make([]string, 0, len(repos))
	seen := make(map[string]bool, len(repos))
	for _, r := range repos {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		owner, name, ok := strings.Cut(r, "/")
		if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
			return nil, fmt.Errorf("invalid repository %q (want owner/name)", r)
		}
		seen[r] = true
		unique = append(unique, r)
	}
	s.logger.WithFields(logrus.Fields{"repos": len(unique), "measure": measure}).Info("Usecase: Starting size collection...")

	results := make([]*domain.ProjectSize, len(unique))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)
	for i, r := range unique {
		i, r := i, r
		eg.Go(func() error {
			owner, name, _ := strings.Cut(r, "/")
			var size int
			var err error
			if measure == MeasureCode {
				size, err = s.fetcher.FetchCodeSize(egCtx, owner, name)
			} else {
				size, err = s.fetcher.FetchRepoSize(egCtx, owner, name)
			}
			if err != nil {
				return err
			}
			results[i] = &domain.ProjectSize{Name: r, Size: size, Category: bounds.Classify(size)}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("Usecase: Size collection complete.")
	return results, nil
}
