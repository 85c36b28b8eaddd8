// Package domain contains the core data structures and domain logic for the application.
package domain

// Dataset is a tabular source loaded from disk, with rows kept in file order.
// Every row has exactly len(Columns) cells.
type Dataset struct {
	Path    string
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of the named column, or -1 if it is absent.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// JoinedRow is one row of the inner join between the metric and size datasets.
// Cells are aligned with JoinedTable.Columns. Metric is only meaningful once
// the table has been coerced.
type JoinedRow struct {
	Key      string   `json:"key"`
	Category string   `json:"category"`
	Cells    []string `json:"cells"`
	Metric   float64  `json:"metric"`
}

// JoinedTable is the cleaned result of a pipeline run.
type JoinedTable struct {
	Columns        []string    `json:"columns"`
	MetricColumn   string      `json:"metric_column"`
	CategoryColumn string      `json:"category_column"`
	Rows           []JoinedRow `json:"rows"`
}

// CategoryStats holds the per-group numbers behind one box of the plot.
type CategoryStats struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Median   float64 `json:"median"`
}

// SummaryStatistics is computed once per run from the rows that survived
// filtering and coercion.
type SummaryStatistics struct {
	Count       int             `json:"count"`
	Median      float64         `json:"median"`
	P75         float64         `json:"p75"`
	Mean        float64         `json:"mean"`
	Min         float64         `json:"min"`
	Max         float64         `json:"max"`
	Threshold   *float64        `json:"threshold,omitempty"`
	PerCategory []CategoryStats `json:"per_category"`
}

// RowCounts tracks how many rows made it through each stage.
type RowCounts struct {
	MetricRows  int `json:"metric_rows"`
	SizeRows    int `json:"size_rows"`
	Joined      int `json:"joined"`
	Unmatched   int `json:"unmatched"`
	Filtered    int `json:"filtered"`
	Missing     int `json:"missing"`
	Eligible    int `json:"eligible"`
	Unplottable int `json:"unplottable"`
}

// PlotArtifact describes the image written at the end of a run.
type PlotArtifact struct {
	Path       string   `json:"path"`
	Categories []string `json:"categories"`
	Bytes      int      `json:"bytes"`
}

// RunResult is everything a pipeline run hands back to its caller.
type RunResult struct {
	Name      string            `json:"name,omitempty"`
	Table     *JoinedTable      `json:"-"`
	Stats     SummaryStatistics `json:"stats"`
	Counts    RowCounts         `json:"counts"`
	Plot      PlotArtifact      `json:"plot"`
	TablePath string            `json:"table_path,omitempty"`
}

// ProjectSize holds the measured size and derived category of a single repository.
type ProjectSize struct {
	Name     string `json:"name"`
	Size     int    `json:"size"`
	Category string `json:"category"`
}
