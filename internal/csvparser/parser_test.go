package csvparser

import (
	"errors"
	"testing"

	"github.com/ginjaninja78/ultisales-ingest/internal/config"
	"github.com/ginjaninja78/ultisales-ingest/internal/types"
)

func defaultSettings() config.CSVSettings {
	return config.CSVSettings{Delimiter: "auto", Encoding: "UTF-8"}
}

func TestParsePreservesBlankLines(t *testing.T) {
	data := []byte("Acme Corp\nReport Date: 2024-01-15\n\nITM_CDE,QTY_SLD,SLS_AMT\nA100,5,99.95\n")

	grid, err := Parse(data, defaultSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(grid) != 5 {
		t.Fatalf("expected 5 rows, got %d: %v", len(grid), grid)
	}
	if grid[0].At(0) != "Acme Corp" {
		t.Errorf("row 0 = %v", grid[0])
	}
	if !grid[2].IsBlank() {
		t.Errorf("row 2 should be blank, got %v", grid[2])
	}
	if grid[3].At(1) != "QTY_SLD" {
		t.Errorf("row 3 = %v", grid[3])
	}

	data4 := grid[4]
	if data4.At(0) != "A100" || data4.At(1) != int64(5) || data4.At(2) != 99.95 {
		t.Errorf("row 4 = %#v", data4)
	}
}

func TestParseLeadingBlankLinesAndCRLF(t *testing.T) {
	data := []byte("\r\n\r\nITM_CDE,QTY_SLD\r\nA1,2\r\n")

	grid, err := Parse(data, defaultSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(grid) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(grid))
	}
	if !grid[0].IsBlank() || !grid[1].IsBlank() {
		t.Error("leading blank lines were not preserved")
	}
	if grid[2].At(0) != "ITM_CDE" {
		t.Errorf("row 2 = %v", grid[2])
	}
}

func TestParseDropsTrailingEmptyFields(t *testing.T) {
	grid, err := Parse([]byte("Acme Corp,,,,,,\nITM_CDE,,QTY_SLD\n"), defaultSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(grid[0]) != 1 {
		t.Errorf("banner row should have 1 cell, got %d", len(grid[0]))
	}
	if len(grid[1]) != 3 || grid[1][1] != nil {
		t.Errorf("interior empty field should be absent: %#v", grid[1])
	}
}

func TestParseKeepsLeadingZeroCodes(t *testing.T) {
	grid, err := Parse([]byte("ITM_CDE,QTY_SLD\n00123,7\n"), defaultSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grid[1].At(0) != "00123" {
		t.Errorf("code = %#v, want \"00123\"", grid[1].At(0))
	}
	if grid[1].At(1) != int64(7) {
		t.Errorf("qty = %#v, want int64(7)", grid[1].At(1))
	}
}

func TestParseDelimiters(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		delimiter string
	}{
		{"sniffed semicolon", "ITM_CDE;QTY_SLD;SLS_AMT\nA1;2;3.5\n", "auto"},
		{"sniffed pipe", "ITM_CDE|QTY_SLD|SLS_AMT\nA1|2|3.5\n", "auto"},
		{"sniffed tab", "ITM_CDE\tQTY_SLD\tSLS_AMT\nA1\t2\t3.5\n", "auto"},
		{"configured tab", "ITM_CDE\tQTY_SLD\tSLS_AMT\nA1\t2\t3.5\n", "tab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := Parse([]byte(tt.data), config.CSVSettings{Delimiter: tt.delimiter})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(grid[0]) != 3 {
				t.Fatalf("header has %d cells: %v", len(grid[0]), grid[0])
			}
			if grid[1].At(2) != 3.5 {
				t.Errorf("amount = %#v", grid[1].At(2))
			}
		})
	}
}

func TestParseTabKeepsEmptyFields(t *testing.T) {
	grid, err := Parse([]byte("ITM_CDE\t\tQTY_SLD\n"), config.CSVSettings{Delimiter: "tab"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(grid[0]) != 3 || grid[0][1] != nil || grid[0][2] != "QTY_SLD" {
		t.Errorf("row = %#v", grid[0])
	}
}

func TestParseEncodings(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		encoding string
	}{
		{"windows-1252 configured", []byte("VND_NME,QTY_SLD\nCaf\xe9,1\n"), "Windows-1252"},
		{"latin1 configured", []byte("VND_NME,QTY_SLD\nCaf\xe9,1\n"), "ISO-8859-1"},
		{"invalid utf-8 falls back", []byte("VND_NME,QTY_SLD\nCaf\xe9,1\n"), "UTF-8"},
		{"utf-8 with BOM", []byte("\xef\xbb\xbfVND_NME,QTY_SLD\nCaf\xc3\xa9,1\n"), "UTF-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := Parse(tt.data, config.CSVSettings{Delimiter: ",", Encoding: tt.encoding})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if grid[0].At(0) != "VND_NME" {
				t.Errorf("header = %q", grid[0].At(0))
			}
			if grid[1].At(0) != "Café" {
				t.Errorf("vendor = %q", grid[1].At(0))
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	for _, data := range []string{"", "\n\n  \n"} {
		_, err := Parse([]byte(data), defaultSettings())
		if !errors.Is(err, ErrEmpty) {
			t.Errorf("Parse(%q) error = %v, want ErrEmpty", data, err)
		}
	}
}

func TestSniffDelimiterIgnoresQuotedSeparators(t *testing.T) {
	text := []byte("\"Acme, Inc; Downtown\";x\nITM_CDE;QTY_SLD\n")
	if got := SniffDelimiter(text); got != ';' {
		t.Errorf("SniffDelimiter = %q, want ';'", got)
	}
}

func TestBuildRowTypesFields(t *testing.T) {
	row := buildRow([]string{"A100", "5", "", " 2.50", "text "})
	want := types.Row{"A100", int64(5), nil, 2.5, "text "}
	if len(row) != len(want) {
		t.Fatalf("len = %d, want %d", len(row), len(want))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("cell %d = %#v, want %#v", i, row[i], want[i])
		}
	}
}
