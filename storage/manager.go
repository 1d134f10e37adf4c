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

package storage

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"golang.org/x/exp/maps"
)

// Manager is the process-wide registry mapping table name to Table.
// Registry mutations (AddTable, DropTable, Reset) are serialized by
// Manager's own mutex; GetTable is safe to call concurrently with
// other GetTable calls. Table-internal concurrency (reads/appends/
// compression) is handled by Table itself, independent of this lock.
type Manager struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

// NewManager returns an empty registry. Most callers should use
// Default instead, which is a shared process-wide instance.
func NewManager() *Manager {
	return &Manager{tables: make(map[string]*Table)}
}

var defaultManager = NewManager()

// Default returns the process-wide Manager singleton.
func Default() *Manager { return defaultManager }

// AddTable registers t under name. It fails if name is already taken.
func (m *Manager) AddTable(name string, t *Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[name]; ok {
		return fmt.Errorf("%w: %q", ErrTableExists, name)
	}
	m.tables[name] = t
	Debugf("storage: registered table %q", name)
	return nil
}

// DropTable removes name from the registry. It fails if name isn't
// registered.
func (m *Manager) DropTable(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[name]; !ok {
		return fmt.Errorf("%w: %q", ErrTableNotFound, name)
	}
	delete(m.tables, name)
	return nil
}

// GetTable returns the table registered under name.
func (m *Manager) GetTable(name string) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, name)
	}
	return t, nil
}

// HasTable reports whether name is registered.
func (m *Manager) HasTable(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.tables[name]
	return ok
}

// TableNames returns every registered name, in unspecified order.
func (m *Manager) TableNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Keys(m.tables)
}

// Reset clears the registry.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables = make(map[string]*Table)
}

// Print writes one line per registered table to w:
// "<name> <column_count> <row_count> <chunk_count>\n". Table order is
// sorted by name for reproducible output, though the spec leaves it
// unspecified.
func (m *Manager) Print(w io.Writer) error {
	m.mu.RLock()
	names := maps.Keys(m.tables)
	tables := make(map[string]*Table, len(m.tables))
	for k, v := range m.tables {
		tables[k] = v
	}
	m.mu.RUnlock()

	sort.Strings(names)
	for _, name := range names {
		t := tables[name]
		_, err := fmt.Fprintf(w, "%s %d %d %d\n", name, t.ColumnCount(), t.RowCount(), t.ChunkCount())
		if err != nil {
			return err
		}
	}
	return nil
}
