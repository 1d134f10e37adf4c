// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package fixture loads YAML-described tables for tests, so
// end-to-end table scenarios can be expressed as data rather than
// hand-built Go literals in every test file.
package fixture

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/opossum-db/columnstore/dtype"
	"github.com/opossum-db/columnstore/storage"
)

// Column describes one column of a fixture table.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Table describes a whole fixture table: its chunk capacity, schema,
// and row contents in column order.
type Table struct {
	MaxChunkSize int             `json:"max_chunk_size"`
	Columns      []Column        `json:"columns"`
	Rows         [][]interface{} `json:"rows"`
}

// Load reads and parses a fixture file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: reading %s: %w", path, err)
	}
	var def Table
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("fixture: parsing %s: %w", path, err)
	}
	return &def, nil
}

// Build materializes the fixture as a storage.Table, column types
// from the fixture's Type strings, rows appended in order.
func (def *Table) Build() (*storage.Table, error) {
	maxChunkSize := def.MaxChunkSize
	if maxChunkSize <= 0 {
		maxChunkSize = len(def.Rows)
		if maxChunkSize == 0 {
			maxChunkSize = 1
		}
	}
	tbl := storage.NewTable(uint32(maxChunkSize))
	for _, col := range def.Columns {
		tag := dtype.Tag(col.Type)
		if !tag.Valid() {
			return nil, fmt.Errorf("fixture: column %q has unknown type %q", col.Name, col.Type)
		}
		if err := tbl.AddColumn(col.Name, tag); err != nil {
			return nil, err
		}
	}
	for _, row := range def.Rows {
		values, err := def.castRow(row)
		if err != nil {
			return nil, err
		}
		if err := tbl.AppendValues(values...); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

// castRow converts a row of loosely-typed YAML scalars (which decode
// as float64/string/bool via encoding/json) into the Go types each
// column's logical type expects.
func (def *Table) castRow(row []interface{}) ([]interface{}, error) {
	if len(row) != len(def.Columns) {
		return nil, fmt.Errorf("fixture: row has %d values, schema has %d columns", len(row), len(def.Columns))
	}
	out := make([]interface{}, len(row))
	for i, raw := range row {
		tag := dtype.Tag(def.Columns[i].Type)
		switch tag {
		case dtype.Int:
			n, ok := raw.(float64)
			if !ok {
				return nil, fmt.Errorf("fixture: column %q: expected a number, got %T", def.Columns[i].Name, raw)
			}
			out[i] = int32(n)
		case dtype.Long:
			n, ok := raw.(float64)
			if !ok {
				return nil, fmt.Errorf("fixture: column %q: expected a number, got %T", def.Columns[i].Name, raw)
			}
			out[i] = int64(n)
		case dtype.Float:
			n, ok := raw.(float64)
			if !ok {
				return nil, fmt.Errorf("fixture: column %q: expected a number, got %T", def.Columns[i].Name, raw)
			}
			out[i] = float32(n)
		case dtype.Double:
			n, ok := raw.(float64)
			if !ok {
				return nil, fmt.Errorf("fixture: column %q: expected a number, got %T", def.Columns[i].Name, raw)
			}
			out[i] = n
		case dtype.String:
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("fixture: column %q: expected a string, got %T", def.Columns[i].Name, raw)
			}
			out[i] = s
		default:
			return nil, fmt.Errorf("fixture: column %q: unknown type %q", def.Columns[i].Name, tag)
		}
	}
	return out, nil
}
