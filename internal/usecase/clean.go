package usecase

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/naka-gawa/project-size-stats/internal/domain"
)

// joinResult carries the joined table plus the original (pre-rename) column
// names, which the filter may still refer to.
type joinResult struct {
	table     *domain.JoinedTable
	original  []string
	unmatched int
}

func normalizeKey(key string, fold bool) string {
	key = strings.TrimSpace(key)
	if fold {
		key = strings.ToLower(key)
	}
	return key
}

// innerJoin matches every metric row against the size dataset. Metric rows
// keep their file order; rows without a matching size key are dropped.
func innerJoin(metrics, sizes *domain.Dataset, cfg *domain.PipelineConfig) (*joinResult, error) {
	mk := metrics.ColumnIndex(cfg.JoinKeyMetric)
	if mk < 0 {
		return nil, domain.NewJoinKeyMissingError(metrics.Path, cfg.JoinKeyMetric)
	}
	sk := sizes.ColumnIndex(cfg.JoinKeySize)
	if sk < 0 {
		return nil, domain.NewJoinKeyMissingError(sizes.Path, cfg.JoinKeySize)
	}
	if metrics.ColumnIndex(cfg.MetricColumn) < 0 {
		return nil, domain.NewDatasetLoadError("load", metrics.Path, cfg.MetricColumn, "metric column not found", nil)
	}
	ck := sizes.ColumnIndex(cfg.Category())
	if ck < 0 {
		return nil, domain.NewDatasetLoadError("load", sizes.Path, cfg.Category(), "category column not found", nil)
	}

	categories := make(map[string]string, len(sizes.Rows))
	for _, row := range sizes.Rows {
		key := normalizeKey(row[sk], cfg.FoldKeyCase)
		if key == "" {
			continue
		}
		cat := strings.TrimSpace(row[ck])
		if cat == "" {
			continue
		}
		if prev, ok := categories[key]; ok && prev != cat {
			return nil, domain.NewDuplicateJoinKeyError(sizes.Path, cfg.JoinKeySize, key, prev, cat)
		}
		categories[key] = cat
	}

	catColumn := cfg.Category()
	if metrics.ColumnIndex(catColumn) >= 0 {
		catColumn += "_size"
	}
	original := append(append([]string{}, metrics.Columns...), catColumn)
	display := make([]string, len(original))
	seen := make(map[string]string, len(original))
	for i, c := range original {
		display[i] = cfg.DisplayName(c)
		if prev, dup := seen[display[i]]; dup {
			return nil, domain.NewDatasetLoadError("rename", metrics.Path, display[i],
				fmt.Sprintf("columns %q and %q would both be named %q", prev, c, display[i]), nil)
		}
		seen[display[i]] = c
	}

	res := &joinResult{
		table: &domain.JoinedTable{
			Columns:        display,
			MetricColumn:   cfg.DisplayName(cfg.MetricColumn),
			CategoryColumn: cfg.DisplayName(catColumn),
		},
		original: original,
	}
	for _, row := range metrics.Rows {
		key := normalizeKey(row[mk], cfg.FoldKeyCase)
		cat, ok := categories[key]
		if !ok || key == "" {
			res.unmatched++
			continue
		}
		cells := make([]string, 0, len(row)+1)
		cells = append(cells, row...)
		cells = append(cells, cat)
		res.table.Rows = append(res.table.Rows, domain.JoinedRow{Key: key, Category: cat, Cells: cells})
	}
	return res, nil
}

// column resolves name against display names first, then original names.
func (j *joinResult) column(name string) int {
	for i, c := range j.table.Columns {
		if c == name {
			return i
		}
	}
	for i, c := range j.original {
		if c == name {
			return i
		}
	}
	return -1
}

// coerce turns a raw cell into a finite number. It never fails: anything that
// does not parse is reported as missing.
func coerce(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.Contains(s, "_") {
		return 0, false
	}
	if digits := strings.TrimLeft(s, "+-"); strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// predicate is a parsed "<column> <op> <value>" filter expression.
type predicate struct {
	column  string
	op      string
	literal string
	number  float64
	numeric bool
}

// Two-character operators first so ">=" is not read as ">" at the same position.
var filterOps = []string{">=", "<=", "==", "!=", ">", "<"}

func parseFilter(expr string) (*predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	i, op := leftmostOp(expr)
	if i < 0 {
		return nil, fmt.Errorf("invalid filter %q: no comparison operator", expr)
	}
	p := &predicate{
		column:  strings.TrimSpace(expr[:i]),
		op:      op,
		literal: strings.TrimSpace(expr[i+len(op):]),
	}
	if p.column == "" || p.literal == "" {
		return nil, fmt.Errorf("invalid filter %q", expr)
	}
	p.number, p.numeric = coerce(p.literal)
	if !p.numeric && op != "==" && op != "!=" {
		return nil, fmt.Errorf("invalid filter %q: %s needs a numeric value", expr, op)
	}
	return p, nil
}

// leftmostOp finds the first operator in expr, preferring two-character
// operators at the same position. It returns -1 when there is none.
func leftmostOp(expr string) (int, string) {
	for i := 0; i < len(expr); i++ {
		for _, op := range filterOps {
			if strings.HasPrefix(expr[i:], op) {
				return i, op
			}
		}
	}
	return -1, ""
}

func (p *predicate) match(cell string) bool {
	if !p.numeric {
		eq := strings.TrimSpace(cell) == p.literal
		if p.op == "==" {
			return eq
		}
		return !eq
	}
	v, ok := coerce(cell)
	if !ok {
		return false
	}
	switch p.op {
	case ">":
		return v > p.number
	case ">=":
		return v >= p.number
	case "<":
		return v < p.number
	case "<=":
		return v <= p.number
	case "==":
		return v == p.number
	case "!=":
		return v != p.number
	}
	return false
}
