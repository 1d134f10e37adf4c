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

	"github.com/opossum-db/columnstore/storage"
)

// GetTable is a leaf operator: it returns a table directly out of a
// Manager's registry.
type GetTable struct {
	base
	manager *storage.Manager
	name    string
}

// NewGetTable builds a GetTable leaf that looks up name in manager
// when executed.
func NewGetTable(manager *storage.Manager, name string) *GetTable {
	return &GetTable{manager: manager, name: name}
}

// Execute looks up the table by name, the first time it's called; a
// repeat call returns the memoized result. Errors (unknown table) are
// surfaced to the caller and not retried.
func (g *GetTable) Execute(ctx context.Context) (*storage.Table, error) {
	return g.memoize(ctx, "GetTable("+g.name+")", func(context.Context) (*storage.Table, error) {
		return g.manager.GetTable(g.name)
	})
}
