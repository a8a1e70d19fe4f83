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

package ecm

import (
	"errors"
	"fmt"
)

// Fatal, immediately-surfaced errors.
var (
	// ErrTruncatedHeader indicates the input was shorter than the 4-byte
	// "ECM\0" magic.
	ErrTruncatedHeader = errors.New("ecm: truncated header")

	// ErrBadMagic indicates the first four bytes were not "ECM\0".
	ErrBadMagic = errors.New("ecm: bad magic")

	// ErrCanceled indicates the caller's cancel predicate returned true.
	// Any output already written by prior records is left in place; the
	// caller is responsible for discarding it.
	ErrCanceled = errors.New("ecm: canceled")
)

// ReadError wraps a genuine input read failure (not a clean end-of-stream).
type ReadError struct {
	Err error
}

func (e ReadError) Error() string { return fmt.Sprintf("ecm: read input: %v", e.Err) }
func (e ReadError) Unwrap() error { return e.Err }

// WriteError wraps an output sink failure.
type WriteError struct {
	Err error
}

func (e WriteError) Error() string { return fmt.Sprintf("ecm: write output: %v", e.Err) }
func (e WriteError) Unwrap() error { return e.Err }
