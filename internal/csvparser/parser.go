// =============================================================================
// UltiSales Ingest - Delimited Text Loader
// =============================================================================
//
// This module decodes delimited text exports (.csv, .tsv, .txt) into a raw
// grid. UltiSales terminals write these files with little consistency:
//   - Different delimiters (comma, semicolon, pipe, tab)
//   - Windows-1252 text from older terminals, sometimes with a UTF-8 BOM
//   - Blank spacer lines between the report banner and the data
//   - Ragged rows (banner lines have one field, data lines many)
//
// FEATURES:
//   - Charset decoding via golang.org/x/text
//   - Delimiter sniffing when the delimiter is set to "auto"
//   - Blank lines are preserved as empty rows so that they count as noise
//     before the header, exactly like a spreadsheet reader would see them
//   - Numeric-looking fields become numbers; codes with leading zeros stay text
//
// =============================================================================

package csvparser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/ultisales-ingest/internal/config"
	"github.com/ginjaninja78/ultisales-ingest/internal/types"
)

// sniffLines is the number of non-empty lines inspected when sniffing.
const sniffLines = 10

// candidateDelimiters in tie-break order.
var candidateDelimiters = []rune{',', ';', '\t', '|'}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrEmpty is returned when the payload contains no text at all.
var ErrEmpty = errors.New("delimited file is empty")

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse decodes a delimited text payload into a raw grid.
//
// PARAMETERS:
//   - data: The complete file contents.
//   - settings: Delimiter and encoding settings from the main configuration.
//
// RETURNS:
//   - The raw grid, one row per physical line (blank lines become empty rows).
//   - An error if the payload is empty or cannot be decoded.
//
// PARSING PROCESS:
//   1. Decode the charset to UTF-8 and strip a byte order mark
//   2. Resolve the delimiter (configured or sniffed)
//   3. Read every record, re-inserting skipped blank lines
//   4. Type each field and drop trailing empty fields
func Parse(data []byte, settings config.CSVSettings) (types.RawGrid, error) {
	text, err := decodeText(data, settings.NormalizedEncoding())
	if err != nil {
		return nil, fmt.Errorf("failed to decode text: %w", err)
	}
	if len(bytes.TrimSpace(text)) == 0 {
		return nil, ErrEmpty
	}

	delimiter, err := settings.DelimiterRune()
	if err != nil {
		return nil, err
	}
	if delimiter == 0 {
		delimiter = SniffDelimiter(text)
	}

	reader := csv.NewReader(bytes.NewReader(text))
	configureReader(reader, delimiter)

	var grid types.RawGrid
	nextLine := 1
	newlines := 0
	consumed := int64(0)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read delimited text: %w", err)
		}

		// encoding/csv silently skips empty lines; put them back.
		line, _ := reader.FieldPos(0)
		for ; nextLine < line; nextLine++ {
			grid = append(grid, types.Row{})
		}

		grid = append(grid, buildRow(record))

		offset := reader.InputOffset()
		newlines += bytes.Count(text[consumed:offset], []byte{'\n'})
		consumed = offset
		nextLine = newlines + 1
	}

	return grid, nil
}

// configureReader configures the CSV reader for ragged legacy exports.
func configureReader(reader *csv.Reader, delimiter rune) {
	reader.Comma = delimiter

	// Banner lines and data lines have different field counts.
	reader.FieldsPerRecord = -1

	// Allow lazy quotes (quotes that don't follow strict CSV rules).
	reader.LazyQuotes = true

	// TrimLeadingSpace would swallow empty fields of tab separated exports.
	reader.TrimLeadingSpace = delimiter != '\t'
}

// buildRow types the fields of one record and drops trailing empty fields.
// Empty fields become absent cells.
func buildRow(record []string) types.Row {
	last := len(record) - 1
	for last >= 0 && strings.TrimSpace(record[last]) == "" {
		last--
	}

	row := make(types.Row, last+1)
	for i := 0; i <= last; i++ {
		field := record[i]
		if field == "" {
			continue
		}
		if v := types.ParseValue(strings.TrimSpace(field)); !isString(v) {
			row[i] = v
			continue
		}
		row[i] = field
	}
	return row
}

func isString(c types.Cell) bool {
	_, ok := c.(string)
	return ok
}

// =============================================================================
// CHARSET DECODING
// =============================================================================

// decodeText converts the payload to UTF-8.
//
// "utf8" input that is not valid UTF-8 is treated as Windows-1252, which is
// what older UltiSales terminals write regardless of their settings.
func decodeText(data []byte, enc string) ([]byte, error) {
	var decoder *encoding.Decoder

	if bytes.HasPrefix(data, utf8BOM) {
		enc = "utf8"
	}

	switch enc {
	case "windows1252", "cp1252":
		decoder = charmap.Windows1252.NewDecoder()
	case "iso88591", "latin1":
		decoder = charmap.ISO8859_1.NewDecoder()
	default:
		if !utf8.Valid(data) {
			decoder = charmap.Windows1252.NewDecoder()
		} else {
			decoder = unicode.UTF8BOM.NewDecoder()
		}
	}

	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// =============================================================================
// DELIMITER SNIFFING
// =============================================================================

// SniffDelimiter picks the candidate delimiter that occurs most often outside
// quotes across the first non-empty lines. Ties are resolved in the order
// comma, semicolon, tab, pipe. Defaults to comma.
func SniffDelimiter(text []byte) rune {
	counts := make(map[rune]int, len(candidateDelimiters))

	inspected := 0
	for _, line := range strings.Split(string(text), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		inQuotes := false
		for _, r := range line {
			if r == '"' {
				inQuotes = !inQuotes
				continue
			}
			if !inQuotes {
				counts[r]++
			}
		}
		inspected++
		if inspected == sniffLines {
			break
		}
	}

	best, bestCount := ',', 0
	for _, d := range candidateDelimiters {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}
	return best
}
