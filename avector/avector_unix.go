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

//go:build linux || darwin

package avector

import "golang.org/x/sys/unix"

// newBuffer allocates n bytes and attempts to pin them with mlock so
// a hot dictionary's attribute vector doesn't get paged out under
// memory pressure. mlock failure (e.g. RLIMIT_MEMLOCK too low) is not
// fatal: the buffer is still usable, just swappable.
func newBuffer(n int) []byte {
	buf := make([]byte, n)
	if n == 0 {
		return buf
	}
	_ = unix.Mlock(buf)
	return buf
}
