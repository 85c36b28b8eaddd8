// Package config loads batch job files for the pipeline.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/naka-gawa/project-size-stats/internal/domain"
	"github.com/naka-gawa/project-size-stats/internal/render"
	"github.com/naka-gawa/project-size-stats/internal/usecase"
	"github.com/spf13/viper"
)

// Config is the contents of a job file.
type Config struct {
	// File-level defaults, used by jobs that leave them empty.
	MetricSource  string   `mapstructure:"metric_source"`
	SizeSource    string   `mapstructure:"size_source"`
	JoinKeyMetric string   `mapstructure:"join_key_metric"`
	JoinKeySize   string   `mapstructure:"join_key_size"`
	CategoryOrder []string `mapstructure:"category_order"`
	OutputDir     string   `mapstructure:"output_dir"`
	Parallelism   int      `mapstructure:"parallelism"`

	Jobs []domain.PipelineConfig `mapstructure:"jobs"`

	Sizes SizesConfig `mapstructure:"sizes"`
}

// SizesConfig controls the GitHub size collector.
type SizesConfig struct {
	Measure     string             `mapstructure:"measure"`
	Bounds      usecase.SizeBounds `mapstructure:"bounds"`
	Concurrency int                `mapstructure:"concurrency"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		JoinKeyMetric: "Project",
		JoinKeySize:   "name",
		CategoryOrder: []string{"Small", "Medium", "Large"},
		OutputDir:     ".",
		Parallelism:   4,
		Sizes: SizesConfig{
			Measure:     usecase.MeasureDisk,
			Concurrency: 4,
		},
	}
}

// Load reads a job file. Relative source and output paths are resolved
// against the file's directory. Environment variables prefixed SIZESTATS_
// override top-level keys.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("join_key_metric", cfg.JoinKeyMetric)
	v.SetDefault("join_key_size", cfg.JoinKeySize)
	v.SetDefault("category_order", cfg.CategoryOrder)
	v.SetDefault("output_dir", cfg.OutputDir)
	v.SetDefault("parallelism", cfg.Parallelism)
	v.SetDefault("sizes.measure", cfg.Sizes.Measure)
	v.SetDefault("sizes.concurrency", cfg.Sizes.Concurrency)

	v.SetEnvPrefix("SIZESTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("sizestats")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	base := "."
	if used := v.ConfigFileUsed(); used != "" {
		base = filepath.Dir(used)
	}
	cfg.applyDefaults(base)
	return cfg, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// applyDefaults fills job fields from file-level defaults and resolves paths.
func (c *Config) applyDefaults(base string) {
	if c.Sizes.Bounds == (usecase.SizeBounds{}) {
		c.Sizes.Bounds = usecase.DefaultBounds(c.Sizes.Measure)
	}
	outDir := resolve(base, c.OutputDir)
	for i := range c.Jobs {
		j := &c.Jobs[i]
		if j.MetricSource == "" {
			j.MetricSource = c.MetricSource
		}
		if j.SizeSource == "" {
			j.SizeSource = c.SizeSource
		}
		if j.JoinKeyMetric == "" {
			j.JoinKeyMetric = c.JoinKeyMetric
		}
		if j.JoinKeySize == "" {
			j.JoinKeySize = c.JoinKeySize
		}
		if len(j.CategoryOrder) == 0 {
			j.CategoryOrder = c.CategoryOrder
		}
		if j.Name == "" {
			j.Name = fmt.Sprintf("job-%d", i+1)
		}
		if j.OutputPath == "" {
			j.OutputPath = j.Name + ".png"
		}
		j.MetricSource = resolve(base, j.MetricSource)
		j.SizeSource = resolve(base, j.SizeSource)
		j.OutputPath = resolve(outDir, j.OutputPath)
		if j.TablePath != "" {
			j.TablePath = resolve(outDir, j.TablePath)
		}
	}
}

// Validate checks every job before anything runs.
func (c *Config) Validate() error {
	if len(c.Jobs) == 0 {
		return errors.New("config has no jobs")
	}
	outputs := make(map[string]string)
	var errs []error
	for _, j := range c.Jobs {
		if err := ValidateJob(j); err != nil {
			errs = append(errs, fmt.Errorf("job %q: %w", j.Name, err))
			continue
		}
		for _, p := range []string{j.OutputPath, j.TablePath} {
			if p == "" {
				continue
			}
			clean := filepath.Clean(p)
			if other, dup := outputs[clean]; dup {
				errs = append(errs, fmt.Errorf("job %q: output %s is also written by job %q", j.Name, p, other))
				continue
			}
			outputs[clean] = j.Name
		}
	}
	return errors.Join(errs...)
}

// ValidateJob checks a single pipeline configuration.
func ValidateJob(j domain.PipelineConfig) error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"metric_source", j.MetricSource},
		{"size_source", j.SizeSource},
		{"join_key_metric", j.JoinKeyMetric},
		{"join_key_size", j.JoinKeySize},
		{"metric_column", j.MetricColumn},
		{"output_path", j.OutputPath},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	if _, err := domain.ParseScale(j.YScale); err != nil {
		return err
	}
	for _, l := range j.ReferenceLines {
		if l.Value == nil && l.Stat != "median" && l.Stat != "p75" && l.Stat != "mean" {
			return fmt.Errorf("reference line %q: need a value or a stat of median, p75 or mean", l.Label)
		}
		if _, err := render.ParseStyle(l.Style); err != nil {
			return fmt.Errorf("reference line %q: %w", l.Label, err)
		}
		if _, _, err := render.ParseColor(l.Color); err != nil {
			return fmt.Errorf("reference line %q: %w", l.Label, err)
		}
	}
	return nil
}
