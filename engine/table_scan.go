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

package engine

import (
	"context"
	"fmt"

	"github.com/opossum-db/columnstore/dtype"
	"github.com/opossum-db/columnstore/rowid"
	"github.com/opossum-db/columnstore/storage"
)

// TableScan consumes its input operator's output table and produces a
// new table in which every column is a ReferenceSegment over a
// shared PosList: the rows of the input whose column value satisfies
// `value op search`.
type TableScan struct {
	base
	input  Operator
	column rowid.ColumnID
	op     ScanType
	search dtype.Variant
}

// NewTableScan builds a scan of column against op/search, reading
// from input's output.
func NewTableScan(input Operator, column rowid.ColumnID, op ScanType, search dtype.Variant) *TableScan {
	return &TableScan{input: input, column: column, op: op, search: search}
}

// Execute runs the input operator (if it hasn't already), then scans
// its output. Results are memoized; a repeat call is a no-op.
func (s *TableScan) Execute(ctx context.Context) (*storage.Table, error) {
	return s.memoize(ctx, fmt.Sprintf("TableScan(col=%d,op=%s)", s.column, s.op), func(ctx context.Context) (*storage.Table, error) {
		if !s.op.Valid() {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedScan, s.op)
		}
		inputTable, err := s.input.Execute(ctx)
		if err != nil {
			return nil, err
		}
		tag, err := inputTable.ColumnTag(s.column)
		if err != nil {
			return nil, err
		}
		return dtype.Resolve[*storage.Table](tag, scanVisitor{
			ctx:    ctx,
			input:  inputTable,
			column: s.column,
			op:     s.op,
			search: s.search,
		})
	})
}

// scanVisitor implements dtype.Visitor[*storage.Table]: each method
// closes over the scan's state and invokes runScan with its type
// known statically, which is the pivot the spec's resolve_data_type
// factory is rendered as in Go.
type scanVisitor struct {
	ctx    context.Context
	input  *storage.Table
	column rowid.ColumnID
	op     ScanType
	search dtype.Variant
}

func (v scanVisitor) VisitInt32() (*storage.Table, error) {
	return runScan[int32](v.ctx, v.input, v.column, v.op, v.search)
}

func (v scanVisitor) VisitInt64() (*storage.Table, error) {
	return runScan[int64](v.ctx, v.input, v.column, v.op, v.search)
}

func (v scanVisitor) VisitFloat32() (*storage.Table, error) {
	return runScan[float32](v.ctx, v.input, v.column, v.op, v.search)
}

func (v scanVisitor) VisitFloat64() (*storage.Table, error) {
	return runScan[float64](v.ctx, v.input, v.column, v.op, v.search)
}

func (v scanVisitor) VisitString() (*storage.Table, error) {
	return runScan[string](v.ctx, v.input, v.column, v.op, v.search)
}
