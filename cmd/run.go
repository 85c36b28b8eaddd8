package cmd

import (
	"context"
	"os"

	"github.com/naka-gawa/project-size-stats/internal/config"
	"github.com/naka-gawa/project-size-stats/internal/domain"
	"github.com/naka-gawa/project-size-stats/internal/render"
	"github.com/naka-gawa/project-size-stats/internal/usecase"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs every job of a job file and outputs the reports as JSON",
	Long: `Loads the job file given by --config (or ./sizestats.yaml) and runs each job
as an independent pipeline. Jobs run in parallel and must write to distinct
output files.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := newLogger(cmd)

		path, _ := cmd.InheritedFlags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			fail(err)
		}
		if only, _ := cmd.Flags().GetStringSlice("job"); len(only) > 0 {
			cfg.Jobs = selectJobs(cfg, only)
		}
		if err := cfg.Validate(); err != nil {
			fail(err)
		}
		parallelism := cfg.Parallelism
		if cmd.Flags().Changed("parallel") {
			parallelism, _ = cmd.Flags().GetInt("parallel")
		}

		pipeline := usecase.NewPipeline(render.NewBoxPlotRenderer(logger), logger)
		runner := usecase.NewRunner(pipeline, logger, parallelism)
		results, err := runner.RunAll(ctx, cfg.Jobs)
		if err != nil {
			fail(err)
		}
		if err := printJSON(os.Stdout, results); err != nil {
			fail(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringSlice("job", nil, "Run only the named jobs")
	runCmd.Flags().IntP("parallel", "p", 0, "Number of jobs to run at once (default from the job file)")
}

// selectJobs keeps the jobs named in only, in file order.
func selectJobs(cfg *config.Config, only []string) []domain.PipelineConfig {
	want := make(map[string]bool, len(only))
	for _, n := range only {
		want[n] = true
	}
	var jobs []domain.PipelineConfig
	for _, j := range cfg.Jobs {
		if want[j.Name] {
			jobs = append(jobs, j)
		}
	}
	return jobs
}
