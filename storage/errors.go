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

import "errors"

// Sentinel errors, matched with errors.Is at call sites.
var (
	// ErrSchemaViolation is returned when an appended row doesn't
	// match a table's column count, and by AddColumn for an unknown
	// type or a non-empty table. A value of the wrong type surfaces as
	// dtype.ErrTypeCastFailed instead.
	ErrSchemaViolation = errors.New("storage: schema violation")

	// ErrTableNotFound is returned by Manager operations on a table
	// name that isn't registered.
	ErrTableNotFound = errors.New("storage: table not found")

	// ErrTableExists is returned by Manager.AddTable when the name is
	// already registered.
	ErrTableExists = errors.New("storage: table already exists")

	// ErrColumnNotFound is returned when a column name or id doesn't
	// resolve against a table's schema.
	ErrColumnNotFound = errors.New("storage: column not found")

	// ErrSegmentImmutable is returned by Append on a segment kind that
	// doesn't support direct appends (DictionarySegment, once built,
	// and ReferenceSegment never do).
	ErrSegmentImmutable = errors.New("storage: segment is immutable")

	// ErrChunkNotFound is returned by Table.Chunk for an out-of-range
	// chunk id.
	ErrChunkNotFound = errors.New("storage: chunk not found")
)
