// Package repository provides persistence implementations for the document
// store: PostgreSQL, SQLite and an in-memory map.
package repository

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a document does not exist or was deleted.
var ErrNotFound = errors.New("document not found")

func encodeFields(fields map[string]any) ([]byte, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return b, nil
}

func decodeFields(raw []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(raw) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return fields, nil
}
