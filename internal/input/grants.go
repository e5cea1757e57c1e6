// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package input extracts grant ID lists from delimited files.
// Implements: prd004-input (R1-R3).
package input

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// DefaultColumn is the header name of the grant ID column.
const DefaultColumn = "GrantID"

// ReadGrantIDs extracts the grant ID column from a CSV stream. The first
// row is the header; the column match is case-insensitive. A cell may hold
// several IDs separated by commas or semicolons; each is split out and
// trimmed. Duplicate IDs are dropped, keeping first-appearance order.
func ReadGrantIDs(r io.Reader, column string) ([]string, error) {
	if column == "" {
		column = DefaultColumn
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty input: expected a header row with a %q column", column)
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	col := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), column) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("input must contain a column named %q (found: %s)",
			column, strings.Join(header, ", "))
	}

	seen := make(map[string]bool)
	var ids []string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		if col >= len(record) {
			continue
		}

		for _, id := range splitIDs(record[col]) {
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}

	return ids, nil
}

// splitIDs breaks a cell holding one or more grant IDs apart. Spreadsheet
// exports often pack several IDs into one cell separated by commas or
// semicolons.
func splitIDs(cell string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(cell, func(r rune) bool {
		return r == ',' || r == ';'
	}) {
		if id := strings.TrimSpace(part); id != "" {
			out = append(out, id)
		}
	}
	return out
}
