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

// Package engine implements the pull-based operator DAG that runs
// against the storage package: GetTable leaves and TableScan nodes,
// evaluated depth-first and synchronously.
package engine

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/opossum-db/columnstore/storage"
)

// Operator is a node in the query DAG. Execute runs the node exactly
// once (subsequent calls return the memoized result); Output returns
// that memoized result without re-running anything.
type Operator interface {
	Execute(ctx context.Context) (*storage.Table, error)
	Output() (*storage.Table, error)
}

// base provides Execute-once memoization for Operator implementations.
// Embedders call memoize from their own Execute method, passing a
// closure that does the actual work; base handles the sync.Once and
// the execution-id correlation used in Debugf lines.
type base struct {
	once     sync.Once
	id       uuid.UUID
	executed bool
	result   *storage.Table
	err      error
}

func (b *base) memoize(ctx context.Context, label string, onExecute func(context.Context) (*storage.Table, error)) (*storage.Table, error) {
	b.once.Do(func() {
		b.id = uuid.New()
		Debugf("engine: %s executing (id=%s)", label, b.id)
		b.result, b.err = onExecute(ctx)
		b.executed = true
		if b.err != nil {
			Debugf("engine: %s failed (id=%s): %v", label, b.id, b.err)
		}
	})
	return b.result, b.err
}

// Output returns the memoized result of a prior Execute call.
func (b *base) Output() (*storage.Table, error) {
	if !b.executed {
		return nil, ErrNotExecuted
	}
	return b.result, b.err
}
