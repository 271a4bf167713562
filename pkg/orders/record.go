package orders

import (
	"encoding/json"
	"fmt"
)

// Record is one order projected onto the flat output schema. Keys are the
// names in Fields; values are the raw field texts. Fields absent from the
// upstream document map to the empty string.
type Record map[string]string

// RecordFromJSON projects a raw order document onto the output schema.
// String fields are unquoted, numeric fields keep their exact wire text
// (no float re-formatting), and null or missing fields become "".
func RecordFromJSON(body []byte) (Record, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse order body: %w", err)
	}

	rec := make(Record, len(Fields))
	for _, field := range Fields {
		rec[field] = fieldText(doc[field])
	}
	return rec, nil
}

// fieldText renders one raw JSON value as output text.
func fieldText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}

// Row returns the record's values in schema order, ready for a CSV writer.
func (r Record) Row() []string {
	row := make([]string, len(Fields))
	for i, field := range Fields {
		row[i] = r[field]
	}
	return row
}
