package postgres

import (
	"encoding/json"
	"fmt"
)

// RelationJSON renders alias as a JSON object, or NULL when the outer join
// found no row.
func RelationJSON(alias string) string {
	return "CASE WHEN " + alias + ".id IS NULL THEN NULL ELSE to_jsonb(" + alias + ".*) END"
}

// DecodeRelation unmarshals a column produced by RelationJSON. A NULL column
// yields nil.
func DecodeRelation[T any](raw []byte) (*T, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode relation: %w", err)
	}
	return &v, nil
}
