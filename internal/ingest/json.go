// =============================================================================
// UltiSales Ingest - Ordered JSON
// =============================================================================
//
// Records are Go maps, which encoding/json writes with sorted keys. The
// JSON forms below write every record with its fields in column order, the
// order of Headers, so a dataset reads the way the export did.
//
// =============================================================================

package ingest

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/ginjaninja78/ultisales-ingest/internal/types"
)

// OrderedRecord is a record whose JSON keeps column order.
type OrderedRecord = orderedmap.OrderedMap[string, types.Cell]

// OrderedRecords converts records to ordered records following headers.
// A duplicated header name is written once, at its first position.
func OrderedRecords(headers []string, records []Record) []*OrderedRecord {
	out := make([]*OrderedRecord, 0, len(records))
	for _, record := range records {
		ordered := orderedmap.New[string, types.Cell](orderedmap.WithCapacity[string, types.Cell](len(record)))
		for _, name := range headers {
			if _, done := ordered.Get(name); done {
				continue
			}
			if value, ok := record[name]; ok {
				ordered.Set(name, value)
			}
		}
		out = append(out, ordered)
	}
	return out
}

// MarshalJSON writes the dataset with its rows in column order.
func (d NormalizedDataset) MarshalJSON() ([]byte, error) {
	type plain NormalizedDataset
	return json.Marshal(struct {
		plain
		Rows []*OrderedRecord `json:"rows"`
	}{
		plain: plain(d),
		Rows:  OrderedRecords(d.Headers, d.Rows),
	})
}
