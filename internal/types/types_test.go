package types

import "testing"

func TestCellString(t *testing.T) {
	tests := []struct {
		input    Cell
		expected string
	}{
		{nil, ""},
		{"A100", "A100"},
		{int64(5), "5"},
		{99.95, "99.95"},
		{float64(3), "3"},
		{true, "TRUE"},
	}

	for _, tt := range tests {
		if got := CellString(tt.input); got != tt.expected {
			t.Errorf("CellString(%v) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestRowIsBlank(t *testing.T) {
	tests := []struct {
		name string
		row  Row
		want bool
	}{
		{"no cells", Row{}, true},
		{"nil row", nil, true},
		{"absent and empty", Row{nil, "", nil}, true},
		{"whitespace is content", Row{" "}, false},
		{"zero is content", Row{int64(0)}, false},
		{"text", Row{"", "x"}, false},
	}

	for _, tt := range tests {
		if got := tt.row.IsBlank(); got != tt.want {
			t.Errorf("%s: IsBlank() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRowJoinAndAt(t *testing.T) {
	row := Row{"2024-01-15", nil, int64(7)}
	if got := row.Join(" "); got != "2024-01-15  7" {
		t.Errorf("Join = %q", got)
	}
	if row.At(5) != nil {
		t.Error("At past the end should be nil")
	}
	if row.At(2) != int64(7) {
		t.Errorf("At(2) = %v", row.At(2))
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input    string
		expected Cell
	}{
		{"123", int64(123)},
		{"123.45", 123.45},
		{"-100", int64(-100)},
		{"0", int64(0)},
		{"0.5", 0.5},
		{"00123", "00123"},
		{"hello", "hello"},
		{"NaN", "NaN"},
		{"", ""},
	}

	for _, tt := range tests {
		result := ParseValue(tt.input)
		if result != tt.expected {
			t.Errorf("ParseValue(%q) = %v (type: %T), expected %v (type: %T)",
				tt.input, result, result, tt.expected, tt.expected)
		}
	}
}
