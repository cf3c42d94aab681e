package httputil

import (
	"bytes"
	"encoding/json"
)

var jsonNull = []byte("null")

// NullKeys reports which of keys appear in the JSON object b with an
// explicit null value. PATCH bodies use it to tell "clear" from "keep".
func NullKeys(b []byte, keys ...string) (map[string]bool, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	nulls := make(map[string]bool, len(keys))
	for _, k := range keys {
		if v, ok := raw[k]; ok && bytes.Equal(bytes.TrimSpace(v), jsonNull) {
			nulls[k] = true
		}
	}
	return nulls, nil
}

// DecodeStrict decodes b into v, rejecting unknown fields.
func DecodeStrict(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
