// Package analysis builds the data context handed to the analysis
// collaborator: for each dataset the full headers, the row count, the banner
// metadata and a small sample of records.
//
// The collaborator never sees whole datasets. Samples are deep copies, so
// whatever the collaborator does with them cannot reach the session's data.
package analysis

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/tiendc/go-deepcopy"

	"github.com/ginjaninja78/ultisales-ingest/internal/ingest"
)

// DefaultSampleSize is the number of records per file in the context.
const DefaultSampleSize = 10

// FileContext describes one dataset.
type FileContext struct {
	File           string          `json:"file" jsonschema_description:"Declared name of the source file"`
	Headers        []string        `json:"headers" jsonschema_description:"Canonical column names in column order"`
	RowCount       int             `json:"rowCount" jsonschema_description:"Total number of data rows in the file"`
	Metadata       ingest.Metadata `json:"metadata"`
	HeaderDetected bool            `json:"headerDetected" jsonschema_description:"False when the header row was guessed"`
	Sample         []ingest.Record `json:"sample" jsonschema_description:"First data rows keyed by canonical column name"`
}

// MarshalJSON writes the sample records with their fields in column order.
func (c FileContext) MarshalJSON() ([]byte, error) {
	type plain FileContext
	return json.Marshal(struct {
		plain
		Sample []*ingest.OrderedRecord `json:"sample"`
	}{
		plain:  plain(c),
		Sample: ingest.OrderedRecords(c.Headers, c.Sample),
	})
}

// DataContext is the full collaborator input.
type DataContext struct {
	Files []FileContext `json:"files"`
}

// BuildContext summarizes datasets for the collaborator, in the given order.
// sampleSize below 1 uses DefaultSampleSize.
func BuildContext(datasets []*ingest.NormalizedDataset, sampleSize int) (*DataContext, error) {
	if sampleSize < 1 {
		sampleSize = DefaultSampleSize
	}

	ctx := &DataContext{Files: make([]FileContext, 0, len(datasets))}
	for _, ds := range datasets {
		n := min(sampleSize, len(ds.Rows))

		sample := []ingest.Record{}
		if n > 0 {
			if err := deepcopy.Copy(&sample, ds.Rows[:n]); err != nil {
				return nil, fmt.Errorf("failed to copy sample of %s: %w", ds.Name, err)
			}
		}

		ctx.Files = append(ctx.Files, FileContext{
			File:           ds.Name,
			Headers:        append([]string{}, ds.Headers...),
			RowCount:       ds.RowCount,
			Metadata:       ds.Metadata,
			HeaderDetected: ds.HeaderDetected,
			Sample:         sample,
		})
	}
	return ctx, nil
}

// JSON renders the context as indented JSON.
func (c *DataContext) JSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Schema returns the JSON schema of DataContext. Structured-output APIs
// accept only a subset of JSON schema, hence no $refs and closed objects.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(&DataContext{})
}
