// =============================================================================
// UltiSales Ingest - XML Writer Module
// =============================================================================
//
// This module renders a normalized dataset as XML for downstream systems that
// cannot read JSON.
//
// XML STRUCTURE:
//
//   <dataset id="..." name="acme.xlsx" rowCount="1" headerDetected="true">
//     <metadata>
//       <extractedDate>2024-01-15</extractedDate>
//       <companyName>Acme Corp</companyName>
//     </metadata>
//     <headers>
//       <header n="1">Product Code</header>
//       <header n="2">Quantity Sold</header>
//     </headers>
//     <rows>
//       <row n="1">
//         <field name="Product Code" type="string">A100</field>
//         <field name="Quantity Sold" type="number">5</field>
//       </row>
//     </rows>
//   </dataset>
//
//   Canonical names contain spaces, so they are written as attributes rather
//   than element names. Absent cells are written as empty <field/> elements.
//   Fields follow header order; a duplicated header name is written once.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/ginjaninja78/ultisales-ingest/internal/ingest"
	"github.com/ginjaninja78/ultisales-ingest/internal/types"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// RootElement is the name of the root element.
	// Default: "dataset"
	RootElement string
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		RootElement:           "dataset",
	}
}

// XMLElement is a node of the output tree.
type XMLElement struct {
	XMLName    xml.Name
	Attributes []xml.Attr
	Value      string
	Children   []XMLElement
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate renders the dataset with the default options.
func Generate(dataset *ingest.NormalizedDataset) ([]byte, error) {
	return GenerateWithOptions(dataset, DefaultGenerateOptions())
}

// GenerateWithOptions renders the dataset.
//
// RETURNS:
//   - The XML document as a byte slice.
//   - An error if the dataset is nil.
func GenerateWithOptions(dataset *ingest.NormalizedDataset, options GenerateOptions) ([]byte, error) {
	if dataset == nil {
		return nil, fmt.Errorf("cannot render a nil dataset")
	}
	if options.RootElement == "" {
		options.RootElement = "dataset"
	}

	var buffer bytes.Buffer
	if options.IncludeXMLDeclaration {
		buffer.WriteString(xml.Header)
	}

	writeElement(&buffer, buildDocument(dataset, options), options.Indent, 0)
	return buffer.Bytes(), nil
}

// buildDocument builds the element tree for a dataset.
func buildDocument(dataset *ingest.NormalizedDataset, options GenerateOptions) XMLElement {
	root := XMLElement{
		XMLName: xml.Name{Local: options.RootElement},
		Attributes: []xml.Attr{
			{Name: xml.Name{Local: "id"}, Value: dataset.ID},
			{Name: xml.Name{Local: "name"}, Value: dataset.Name},
			{Name: xml.Name{Local: "rowCount"}, Value: strconv.Itoa(dataset.RowCount)},
			{Name: xml.Name{Local: "headerDetected"}, Value: strconv.FormatBool(dataset.HeaderDetected)},
		},
	}

	metadata := XMLElement{XMLName: xml.Name{Local: "metadata"}}
	if dataset.Metadata.ExtractedDate != "" {
		metadata.Children = append(metadata.Children, createSimpleElement("extractedDate", dataset.Metadata.ExtractedDate))
	}
	if dataset.Metadata.CompanyName != "" {
		metadata.Children = append(metadata.Children, createSimpleElement("companyName", dataset.Metadata.CompanyName))
	}
	root.Children = append(root.Children, metadata)

	headers := XMLElement{XMLName: xml.Name{Local: "headers"}}
	for i, name := range dataset.Headers {
		header := createSimpleElement("header", name)
		header.Attributes = []xml.Attr{{Name: xml.Name{Local: "n"}, Value: strconv.Itoa(i + 1)}}
		headers.Children = append(headers.Children, header)
	}
	root.Children = append(root.Children, headers)

	fieldOrder := uniqueHeaders(dataset.Headers)
	rows := XMLElement{XMLName: xml.Name{Local: "rows"}}
	for i, record := range dataset.Rows {
		rows.Children = append(rows.Children, buildRowElement(record, fieldOrder, i+1))
	}
	root.Children = append(root.Children, rows)

	return root
}

// buildRowElement builds one <row> with a <field> per header.
func buildRowElement(record ingest.Record, fieldOrder []string, index int) XMLElement {
	row := XMLElement{
		XMLName:    xml.Name{Local: "row"},
		Attributes: []xml.Attr{{Name: xml.Name{Local: "n"}, Value: strconv.Itoa(index)}},
	}

	for _, name := range fieldOrder {
		value := record[name]
		field := createSimpleElement("field", types.CellString(value))
		field.Attributes = []xml.Attr{{Name: xml.Name{Local: "name"}, Value: name}}
		if kind := valueKind(value); kind != "" {
			field.Attributes = append(field.Attributes, xml.Attr{Name: xml.Name{Local: "type"}, Value: kind})
		}
		row.Children = append(row.Children, field)
	}
	return row
}

// valueKind names the scalar type of a cell for the type attribute.
func valueKind(c types.Cell) string {
	switch c.(type) {
	case nil:
		return ""
	case int64, int, float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return "string"
	}
}

func uniqueHeaders(headers []string) []string {
	seen := make(map[string]bool, len(headers))
	out := make([]string, 0, len(headers))
	for _, h := range headers {
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}

func createSimpleElement(name, value string) XMLElement {
	return XMLElement{
		XMLName: xml.Name{Local: name},
		Value:   value,
	}
}

// writeElement writes an XML element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element XMLElement, indent string, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}

	buffer.WriteString("<")
	buffer.WriteString(element.XMLName.Local)

	for _, attr := range element.Attributes {
		buffer.WriteString(fmt.Sprintf(" %s=\"%s\"", attr.Name.Local, escapeXML(attr.Value)))
	}

	if len(element.Children) == 0 && element.Value == "" {
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")

	if element.Value != "" {
		buffer.WriteString(escapeXML(element.Value))
	} else {
		buffer.WriteString("\n")

		for _, child := range element.Children {
			writeElement(buffer, child, indent, level+1)
		}

		for i := 0; i < level; i++ {
			buffer.WriteString(indent)
		}
	}

	buffer.WriteString("</")
	buffer.WriteString(element.XMLName.Local)
	buffer.WriteString(">\n")
}

// escapeXML escapes special characters for XML, including in attributes.
func escapeXML(s string) string {
	var buffer bytes.Buffer
	// EscapeText only fails when the writer fails; bytes.Buffer never does.
	_ = xml.EscapeText(&buffer, []byte(s))
	return buffer.String()
}
