package usecase

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	testCases := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{raw: "5", want: 5, wantOK: true},
		{raw: " 2.36 ", want: 2.36, wantOK: true},
		{raw: "-1e3", want: -1000, wantOK: true},
		{raw: "N/A"},
		{raw: ""},
		{raw: "   "},
		{raw: "NaN"},
		{raw: "inf"},
		{raw: "-Infinity"},
		{raw: "1e400"},
		{raw: "1,234"},
		{raw: "12 min"},
		{raw: "1_000"},
		{raw: "0x1p3"},
		{raw: "-0X10"},
		{raw: "0.5", want: 0.5, wantOK: true},
	}
	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := coerce(tc.raw)
			assert.Equal(t, tc.wantOK, ok)
			if ok {
				assert.Equal(t, tc.want, got)
				assert.False(t, math.IsNaN(got) || math.IsInf(got, 0))
			}
		})
	}
}

func TestParseFilter(t *testing.T) {
	testCases := []struct {
		name        string
		expr        string
		wantColumn  string
		wantOp      string
		matches     []string
		rejects     []string
		expectError bool
	}{
		{name: "greater than", expr: "Runs_Analyzed > 0", wantColumn: "Runs_Analyzed", wantOp: ">", matches: []string{"1", "0.5"}, rejects: []string{"0", "-1", "N/A"}},
		{name: "greater or equal", expr: "Runs>=2", wantColumn: "Runs", wantOp: ">=", matches: []string{"2", "3"}, rejects: []string{"1"}},
		{name: "less or equal with spaces in column", expr: "Avg Duration (min) <= 10", wantColumn: "Avg Duration (min)", wantOp: "<=", matches: []string{"10", "3"}, rejects: []string{"10.5"}},
		{name: "text equality", expr: "Status == active", wantColumn: "Status", wantOp: "==", matches: []string{"active", " active "}, rejects: []string{"archived"}},
		{name: "text inequality", expr: "Status != archived", wantColumn: "Status", wantOp: "!=", matches: []string{"active"}, rejects: []string{"archived"}},
		{name: "numeric equality", expr: "Runs == 0", wantColumn: "Runs", wantOp: "==", matches: []string{"0", "0.0"}, rejects: []string{"1", "zero"}},
		{name: "operator inside the value", expr: "Status != a==b", wantColumn: "Status", wantOp: "!=", matches: []string{"a", "b"}, rejects: []string{"a==b"}},
		{name: "ordering value containing an operator", expr: "Runs >= 2 < 3", expectError: true},
		{name: "no operator", expr: "Runs", expectError: true},
		{name: "missing column", expr: "> 0", expectError: true},
		{name: "missing value", expr: "Runs >", expectError: true},
		{name: "ordering needs a number", expr: "Runs < lots", expectError: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := parseFilter(tc.expr)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantColumn, p.column)
			assert.Equal(t, tc.wantOp, p.op)
			for _, cell := range tc.matches {
				assert.True(t, p.match(cell), "expected %q to match", cell)
			}
			for _, cell := range tc.rejects {
				assert.False(t, p.match(cell), "expected %q not to match", cell)
			}
		})
	}
}

func TestParseFilter_Empty(t *testing.T) {
	p, err := parseFilter("   ")
	assert.NoError(t, err)
	assert.Nil(t, p)
}
