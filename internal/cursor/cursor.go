// Copyright (c) 2026 The ECM Decoder Authors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of ecmdecode.
//
// ecmdecode is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ecmdecode is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ecmdecode.  If not, see <https://www.gnu.org/licenses/>.

// Package cursor provides a forward-only, progress-tracking reader over an
// io.Reader, used by the ECM stream decoder. It distinguishes a clean
// end-of-stream (tolerated by the container format) from a genuine
// underlying I/O failure (fatal).
package cursor

import (
	"bufio"
	"errors"
	"io"
)

// Cursor tracks a read position into an underlying io.Reader.
type Cursor struct {
	r   *bufio.Reader
	pos int64
}

// New wraps r in a Cursor starting at offset 0.
func New(r io.Reader) *Cursor {
	return &Cursor{r: bufio.NewReaderSize(r, 64*1024)}
}

// Pos returns the number of bytes consumed so far.
func (c *Cursor) Pos() int64 {
	return c.pos
}

// ReadByte reads a single byte. ok is false and err is nil at a clean
// end-of-stream; err is non-nil only on a genuine read failure.
func (c *Cursor) ReadByte() (b byte, ok bool, err error) {
	b, err = c.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, false, nil
		}
		return 0, false, err
	}
	c.pos++
	return b, true, nil
}

// ReadBytes reads up to n bytes. ok is true only if all n bytes were read;
// a short or empty read at end-of-stream returns ok=false with err=nil,
// and out holding whatever bytes were available. err is non-nil only on a
// genuine read failure from the underlying reader.
func (c *Cursor) ReadBytes(n int) (out []byte, ok bool, err error) {
	buf := make([]byte, n)
	read, rerr := io.ReadFull(c.r, buf)
	c.pos += int64(read)
	if rerr != nil {
		if errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF) {
			return buf[:read], false, nil
		}
		return buf[:read], false, rerr
	}
	return buf, true, nil
}
