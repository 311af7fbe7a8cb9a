package xlsxparser

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes the given cells (keyed by cell name) to Sheet1 and
// returns the workbook bytes.
func buildWorkbook(t *testing.T, cells map[string]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for cell, value := range cells {
		if err := f.SetCellValue("Sheet1", cell, value); err != nil {
			t.Fatalf("SetCellValue(%s): %v", cell, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func TestParseAcmeWorkbook(t *testing.T) {
	data := buildWorkbook(t, map[string]any{
		"A1": "Acme Corp",
		"A2": "Report Date: 2024-01-15",
		"A4": "ITM_CDE",
		"B4": "QTY_SLD",
		"C4": "SLS_AMT",
		"A5": "A100",
		"B5": 5,
		"C5": 99.95,
	})

	grid, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(grid) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(grid))
	}
	if grid[0].At(0) != "Acme Corp" {
		t.Errorf("A1 = %#v", grid[0].At(0))
	}
	if !grid[2].IsBlank() {
		t.Errorf("row 3 should be blank, got %#v", grid[2])
	}
	if grid[3].At(2) != "SLS_AMT" {
		t.Errorf("C4 = %#v", grid[3].At(2))
	}
	if grid[4].At(0) != "A100" {
		t.Errorf("A5 = %#v", grid[4].At(0))
	}
	if grid[4].At(1) != int64(5) {
		t.Errorf("B5 = %#v (%T), want int64(5)", grid[4].At(1), grid[4].At(1))
	}
	if grid[4].At(2) != 99.95 {
		t.Errorf("C5 = %#v (%T), want 99.95", grid[4].At(2), grid[4].At(2))
	}
}

func TestParseKeepsGapsInsideRows(t *testing.T) {
	data := buildWorkbook(t, map[string]any{
		"A1": "ITM_CDE",
		"C1": "QTY_SLD",
	})

	grid, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(grid) != 1 || len(grid[0]) != 3 {
		t.Fatalf("grid = %#v", grid)
	}
	if grid[0][1] != nil {
		t.Errorf("B1 should be absent, got %#v", grid[0][1])
	}
}

func TestParseTextNumbersStayText(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetCellStr("Sheet1", "A1", "00123"); err != nil {
		t.Fatal(err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	grid, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grid[0].At(0) != "00123" {
		t.Errorf("A1 = %#v, want \"00123\"", grid[0].At(0))
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("this is not a workbook")); err == nil {
		t.Error("expected an error for non-workbook payload")
	}
}

func TestParseLegacyRejectsGarbage(t *testing.T) {
	if _, err := ParseLegacy([]byte("this is not a BIFF stream either")); err == nil {
		t.Error("expected an error for non-xls payload")
	}
}

func TestNumberValue(t *testing.T) {
	tests := []struct {
		in   float64
		want any
	}{
		{5, int64(5)},
		{-3, int64(-3)},
		{99.95, 99.95},
		{1e20, 1e20},
	}
	for _, tt := range tests {
		if got := numberValue(tt.in); got != tt.want {
			t.Errorf("numberValue(%v) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestParseTypesOnlyNumericLookingCells(t *testing.T) {
	data := buildWorkbook(t, map[string]any{
		"A1": "Widget",
		"B1": true,
		"C1": 12,
		"A3": "tail",
	})

	grid, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(grid) != 3 || !grid[1].IsBlank() {
		t.Fatalf("grid = %#v", grid)
	}
	if grid[0].At(0) != "Widget" || grid[0].At(1) != true || grid[0].At(2) != int64(12) {
		t.Errorf("row 1 = %#v", grid[0])
	}
}

func TestNeedsCellType(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"12", true},
		{"-0.5", true},
		{"1", true},
		{"TRUE", true},
		{"A100", false},
		{"Acme Corp", false},
		{"2024-01-15", false},
	}
	for _, tt := range tests {
		if got := needsCellType(tt.raw); got != tt.want {
			t.Errorf("needsCellType(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
