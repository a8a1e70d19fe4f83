// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-gameid.
//
// go-gameid is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-gameid is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-gameid.  If not, see <https://www.gnu.org/licenses/>.

package archive

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ecmExtensions are the extensions recognized as ECM container streams.
var ecmExtensions = map[string]bool{
	".ecm": true,
}

// IsECMFile checks if a filename has a recognized ECM extension. Outer
// compression suffixes (.gz, .xz, .zst), handled transparently by package
// inputstream once the member is opened, are stripped before the check, so
// "foo.ecm.xz" is recognized the same as "foo.ecm".
func IsECMFile(filename string) bool {
	name := strings.ToLower(filename)
	for _, outer := range []string{".gz", ".xz", ".zst"} {
		name = strings.TrimSuffix(name, outer)
	}
	return ecmExtensions[filepath.Ext(name)]
}

// DetectECMFile finds the sole .ecm member in an archive. It scans the
// archive's file list and returns the path to the only file with a
// recognized ECM extension.
//
// If no member matches, NoECMMembersError is returned. If more than one
// matches, AmbiguousECMMemberError is returned so the caller can prompt for
// an explicit internal path rather than silently picking the first match.
func DetectECMFile(arc Archive) (string, error) {
	files, err := arc.List()
	if err != nil {
		return "", fmt.Errorf("list archive files: %w", err)
	}

	var matches []string
	for _, file := range files {
		if IsECMFile(file.Name) {
			matches = append(matches, file.Name)
		}
	}

	switch len(matches) {
	case 0:
		return "", NoECMMembersError{Archive: "archive"}
	case 1:
		return matches[0], nil
	default:
		return "", AmbiguousECMMemberError{Archive: "archive", Members: matches}
	}
}
