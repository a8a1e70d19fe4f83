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

// Package inputstream transparently unwraps an outer compression layer
// (.gz, .xz, .zst) around an ECM stream based on filename extension, so the
// ecm package always sees the raw "ECM\0"-prefixed container.
package inputstream

import (
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Reader wraps an underlying ECM stream reader plus whatever decompressors
// were layered on top of it, so a single Close releases the decompressors.
// The underlying reader is not closed by Reader.
type Reader struct {
	io.Reader
	closers []io.Closer
}

// Close releases every decompressor that needs closing, in the reverse order
// they were opened. It does not close the underlying reader passed to Open.
func (r *Reader) Close() error {
	var err error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if cerr := r.closers[i].Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Open wraps r in a transparent decompressor selected by the outer
// extension of name (".gz", ".xz", or ".zst"); any other extension, or
// none, returns r unwrapped. The returned Reader's Close must always be
// called, even when no decompression was applied.
func Open(r io.Reader, name string) (*Reader, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		return &Reader{Reader: gr, closers: []io.Closer{gr}}, nil

	case ".xz":
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open xz stream: %w", err)
		}
		return &Reader{Reader: xr}, nil

	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		return &Reader{Reader: zr, closers: []io.Closer{zstdCloser{zr}}}, nil

	default:
		return &Reader{Reader: r}, nil
	}
}

// StripOuterExt removes a recognized outer compression suffix from name,
// so "disc.ecm.xz" yields "disc.ecm". Names without such a suffix are
// returned unchanged.
func StripOuterExt(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz", ".xz", ".zst":
		return strings.TrimSuffix(name, filepath.Ext(name))
	default:
		return name
	}
}

// zstdCloser adapts *zstd.Decoder's Close (no error return) to io.Closer.
type zstdCloser struct {
	d *zstd.Decoder
}

func (c zstdCloser) Close() error {
	c.d.Close()
	return nil
}
