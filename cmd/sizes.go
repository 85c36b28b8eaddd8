package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/naka-gawa/project-size-stats/internal/config"
	"github.com/naka-gawa/project-size-stats/internal/dataset"
	"github.com/naka-gawa/project-size-stats/internal/gateway"
	"github.com/naka-gawa/project-size-stats/internal/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var sizesCmd = &cobra.Command{
	Use:   "sizes [owner/name ...]",
	Short: "Builds a size dataset CSV by measuring repositories on GitHub",
	Long: `Fetches the size of each repository from the GitHub API and assigns it a
Small/Medium/Large category. Repositories come from the arguments and/or a
column of an existing CSV. The result can be used as --sizes for plot.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := newLogger(cmd)

		loadEnvFiles(logger, ".env.local", ".env")
		token := os.Getenv("GITHUB_TOKEN")
		if token == "" {
			fmt.Fprintln(os.Stderr, "Error: GITHUB_TOKEN environment variable is not set.")
			os.Exit(1)
		}

		path, _ := cmd.InheritedFlags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			fail(err)
		}
		measure := cfg.Sizes.Measure
		if cmd.Flags().Changed("measure") {
			measure, _ = cmd.Flags().GetString("measure")
		}
		bounds := cfg.Sizes.Bounds
		if cmd.Flags().Changed("measure") && !cmd.Flags().Changed("small-max") && !cmd.Flags().Changed("medium-max") {
			bounds = usecase.DefaultBounds(measure)
		}
		if cmd.Flags().Changed("small-max") {
			bounds.SmallMax, _ = cmd.Flags().GetInt("small-max")
		}
		if cmd.Flags().Changed("medium-max") {
			bounds.MediumMax, _ = cmd.Flags().GetInt("medium-max")
		}

		repos := append([]string{}, args...)
		if from, _ := cmd.Flags().GetString("from-csv"); from != "" {
			column, _ := cmd.Flags().GetString("column")
			listed, err := reposFromCSV(from, column)
			if err != nil {
				fail(err)
			}
			repos = append(repos, listed...)
		}
		if len(repos) == 0 {
			fmt.Fprintln(os.Stderr, "Error: no repositories given.")
			os.Exit(1)
		}

		// Inject dependencies and run the main business logic.
		githubGateway, err := gateway.NewGitHubGateway(token, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}
		sizer := usecase.NewSizer(githubGateway, logger, cfg.Sizes.Concurrency)
		sizes, err := sizer.Collect(ctx, repos, measure, bounds)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to collect sizes: %v\n", err)
			os.Exit(1)
		}

		keyColumn, _ := cmd.Flags().GetString("key-column")
		categoryColumn, _ := cmd.Flags().GetString("category-column")
		var buf bytes.Buffer
		if err := dataset.WriteSizes(&buf, keyColumn, categoryColumn, sizes); err != nil {
			fail(err)
		}
		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			os.Stdout.Write(buf.Bytes())
			return
		}
		if err := dataset.WriteFileAtomic(out, buf.Bytes()); err != nil {
			fail(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(sizesCmd)
	f := sizesCmd.Flags()
	f.String("from-csv", "", "Read repositories from a column of this CSV")
	f.String("column", "Project", "Column of --from-csv holding owner/name")
	f.String("measure", usecase.MeasureDisk, "Size measure: disk (KB, REST) or code (bytes, GraphQL)")
	f.Int("small-max", 0, "Largest size still classified Small")
	f.Int("medium-max", 0, "Largest size still classified Medium")
	f.String("key-column", "name", "Name of the join key column in the output")
	f.String("category-column", "Category", "Name of the category column in the output")
	f.StringP("output", "o", "", "Output CSV path (default: standard output)")
}

// loadEnvFiles loads the given .env files in order of precedence. Variables
// already set in the environment win. Missing files are skipped.
func loadEnvFiles(logger *logrus.Logger, files ...string) {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			logger.WithError(err).WithField("file", file).Warn("Failed to load env file")
		}
	}
}

// reposFromCSV returns the non-empty values of column in the CSV at path.
func reposFromCSV(path, column string) ([]string, error) {
	ds, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}
	idx := ds.ColumnIndex(column)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found in %s", column, path)
	}
	repos := make([]string, 0, len(ds.Rows))
	for _, row := range ds.Rows {
		if v := strings.TrimSpace(row[idx]); v != "" {
			repos = append(repos, v)
		}
	}
	return repos, nil
}
