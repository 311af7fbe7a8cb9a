package ingest

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ginjaninja78/ultisales-ingest/internal/types"
)

func TestReportLines(t *testing.T) {
	_, report := NewEngine().Parse("acme.xlsx", acmeGrid())

	want := []string{
		"acme.xlsx",
		"Skipped 3 noise rows",
		"Mapped 3 columns: Product Code, Quantity Sold, Sales Amount",
		"Date: 2024-01-15",
		"Org: Acme Corp",
	}
	if got := report.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() =\n%q\nwant\n%q", got, want)
	}
}

func TestReportLinesFlagFallback(t *testing.T) {
	_, report := NewEngine().Parse("flat.csv", types.RawGrid{{"Code", "Qty"}, {"A", int64(1)}})

	text := report.String()
	if !strings.Contains(text, "Header: not found in first 50 rows, row 0 used") {
		t.Errorf("fallback line missing:\n%s", text)
	}
}

func TestReportLinesCountRepeatedHeaders(t *testing.T) {
	grid := types.RawGrid{
		{"ITM_CDE", "QTY_SLD"},
		{"A", int64(1)},
		{"ITM_CDE", "QTY_SLD"},
		{"B", int64(2)},
	}
	_, report := NewEngine().Parse("r.csv", grid)

	if !strings.Contains(report.String(), "Skipped 1 repeated header rows") {
		t.Errorf("repeated header line missing:\n%s", report.String())
	}
	if strings.Contains(report.String(), "Header:") {
		t.Error("no fallback line expected when the header was detected")
	}
}
