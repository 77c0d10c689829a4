package memory

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Encode serializes a table in the indented JSON layout used on disk.
func Encode(t Table) ([]byte, error) {
	if t == nil {
		t = Table{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return nil, fmt.Errorf("encode memory table: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a table written by Encode. Empty input decodes to an empty table.
func Decode(data []byte) (Table, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Table{}, nil
	}
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode memory table: %w", err)
	}
	if t == nil {
		t = Table{}
	}
	return t, nil
}
