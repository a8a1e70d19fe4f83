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

package ecc

import "fmt"

// SectorSizeError indicates a sector buffer of the wrong length was passed
// to a reconstruction routine.
type SectorSizeError struct {
	Want int
	Got  int
}

func (e SectorSizeError) Error() string {
	return fmt.Sprintf("ecc: sector buffer must be %d bytes, got %d", e.Want, e.Got)
}

// UnknownSectorTypeError indicates Reconstruct was called with a sector
// type outside 1, 2, 3.
type UnknownSectorTypeError struct {
	Type SectorType
}

func (e UnknownSectorTypeError) Error() string {
	return fmt.Sprintf("ecc: unknown sector type %d", e.Type)
}
