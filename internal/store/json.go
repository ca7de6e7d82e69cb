package store

import (
	"encoding/json"
	"fmt"
)

// encodeJSON marshals a value for a jsonb column. Nil slices are stored as [].
func encodeJSON[T any](v []T) ([]byte, error) {
	if v == nil {
		v = []T{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding jsonb: %w", err)
	}
	return data, nil
}

// decodeJSON unmarshals a jsonb column into a non-nil slice.
func decodeJSON[T any](data []byte) ([]T, error) {
	out := []T{}
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding jsonb: %w", err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
