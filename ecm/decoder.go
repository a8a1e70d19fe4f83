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

// Package ecm implements the ECM container stream decoder: it validates the
// "ECM\0" magic header, walks the variable-length record descriptors, and
// for each record either copies raw bytes through or reassembles and
// reconstructs full CD-ROM sectors via package ecc.
package ecm

import (
	"io"

	"github.com/retrodecode/ecmdecode/ecc"
	"github.com/retrodecode/ecmdecode/internal/cursor"
)

var magic = [4]byte{0x45, 0x43, 0x4D, 0x00} // "ECM\0"

// sentinel is the descriptor value that terminates the stream.
const sentinel uint32 = 0xFFFFFFFF

// Options configures a Decode call. All fields are optional.
type Options struct {
	// Progress, when non-nil, is invoked once per completed record with
	// the number of input bytes consumed so far and, if known, the total
	// input size (0 if the caller did not supply TotalIn).
	Progress func(bytesIn, totalIn int64)

	// TotalIn is the caller-known size of the input stream, passed through
	// to Progress verbatim. Leave zero if unknown.
	TotalIn int64

	// Cancel, when non-nil, is polled at the start of every record. A true
	// return aborts the decode with ErrCanceled.
	Cancel func() bool
}

// Stats summarizes a completed (or aborted) decode.
type Stats struct {
	BytesIn  int64
	BytesOut int64
	Records  int
}

// Decode reads an ECM stream from r and writes the reconstructed disc image
// to w. It returns once the stream is exhausted, a sentinel terminator is
// read, or a fatal error occurs (see errors.go).
//
// Malformed or truncated record bodies are not fatal: per the container's
// self-delimiting design, Decode stops cleanly and returns the stats for
// whatever was produced so far.
func Decode(r io.Reader, w io.Writer, opts Options) (Stats, error) {
	var stats Stats
	cur := cursor.New(r)

	hdr, ok, err := cur.ReadBytes(len(magic))
	if err != nil {
		return stats, ReadError{err}
	}
	if !ok {
		return stats, ErrTruncatedHeader
	}
	if [4]byte(hdr) != magic {
		return stats, ErrBadMagic
	}
	stats.BytesIn = cur.Pos()

	for {
		if opts.Cancel != nil && opts.Cancel() {
			return stats, ErrCanceled
		}

		recType, count, terminated, ok, err := readDescriptor(cur)
		if err != nil {
			return stats, ReadError{err}
		}
		if !ok || terminated {
			stats.BytesIn = cur.Pos()
			return stats, nil
		}

		complete, err := decodeRecord(cur, w, recType, count, &stats)
		stats.BytesIn = cur.Pos()
		if err != nil {
			return stats, err
		}
		if !complete {
			return stats, nil
		}

		stats.Records++
		if opts.Progress != nil {
			opts.Progress(stats.BytesIn, opts.TotalIn)
		}
	}
}

// readDescriptor decodes one variable-length (type, count) descriptor.
// ok is false when the stream ends mid-descriptor, which is treated the
// same as a clean sentinel termination. terminated is true when the
// decoded value is the 0xFFFFFFFF sentinel.
func readDescriptor(cur *cursor.Cursor) (recType int, count uint32, terminated bool, ok bool, err error) {
	b, ok, err := cur.ReadByte()
	if err != nil || !ok {
		return 0, 0, false, ok, err
	}

	recType = int(b & 0x03)
	num := uint32(b>>2) & 0x1F
	bits := uint(5)

	for b&0x80 != 0 {
		b, ok, err = cur.ReadByte()
		if err != nil || !ok {
			return 0, 0, false, ok, err
		}
		num |= uint32(b&0x7F) << bits
		bits += 7
	}

	if num == sentinel {
		return 0, 0, true, true, nil
	}
	return recType, num + 1, false, true, nil
}

// decodeRecord executes one record body: type 0 copies count raw bytes,
// types 1-3 reconstruct count sectors of the given kind. complete is false
// if the input ran out partway through, in which case the decoder should
// stop after this call without treating it as an error.
func decodeRecord(cur *cursor.Cursor, w io.Writer, recType int, count uint32, stats *Stats) (complete bool, err error) {
	if recType == 0 {
		data, ok, rerr := cur.ReadBytes(int(count))
		if rerr != nil {
			return false, ReadError{rerr}
		}
		if len(data) > 0 {
			if _, werr := w.Write(data); werr != nil {
				return false, WriteError{werr}
			}
			stats.BytesOut += int64(len(data))
		}
		return ok, nil
	}

	sectorType := ecc.SectorType(recType)
	for i := uint32(0); i < count; i++ {
		sector, ok, rerr := readSector(cur, sectorType)
		if rerr != nil {
			return false, ReadError{rerr}
		}
		if !ok {
			return false, nil
		}
		if err := ecc.Reconstruct(sector, sectorType); err != nil {
			return false, err
		}

		out := sectorOutput(sector, sectorType)
		if _, werr := w.Write(out); werr != nil {
			return false, WriteError{werr}
		}
		stats.BytesOut += int64(len(out))
	}
	return true, nil
}

// readSector assembles one 2352-byte sector buffer from the input: the
// fixed sync pattern, the 3-byte address read from the stream, the mode
// byte fixed by sectorType, and the payload bytes. Mode 2 payloads carry a
// duplicated 4-byte sub-header, mirrored from 0x014 into 0x010 so the
// sector matches the on-disc layout before ecc.Reconstruct runs.
func readSector(cur *cursor.Cursor, sectorType ecc.SectorType) (sector []byte, ok bool, err error) {
	sector = make([]byte, ecc.SectorSize)
	for i := 1; i <= 10; i++ {
		sector[i] = 0xFF
	}

	addr, ok, err := cur.ReadBytes(3)
	if err != nil || !ok {
		return nil, false, err
	}
	copy(sector[0x00C:0x00F], addr)

	switch sectorType {
	case ecc.SectorMode1:
		sector[0x00F] = 0x01
		payload, ok, err := cur.ReadBytes(2048)
		if err != nil || !ok {
			return nil, false, err
		}
		copy(sector[0x010:0x010+2048], payload)

	case ecc.SectorMode2Form1:
		sector[0x00F] = 0x02
		payload, ok, err := cur.ReadBytes(0x804)
		if err != nil || !ok {
			return nil, false, err
		}
		copy(sector[0x014:0x014+0x804], payload)
		copy(sector[0x010:0x014], sector[0x014:0x018])

	case ecc.SectorMode2Form2:
		sector[0x00F] = 0x02
		payload, ok, err := cur.ReadBytes(0x918)
		if err != nil || !ok {
			return nil, false, err
		}
		copy(sector[0x014:0x014+0x918], payload)
		copy(sector[0x010:0x014], sector[0x014:0x018])
	}

	return sector, true, nil
}

// sectorOutput returns the slice of a reconstructed sector that belongs in
// the output stream: the full 2352 bytes for Mode 1, or the sync-and-header
// stripped 2336 bytes (0x010..0x930) for either Mode 2 form.
func sectorOutput(sector []byte, sectorType ecc.SectorType) []byte {
	if sectorType == ecc.SectorMode1 {
		return sector
	}
	return sector[0x010:0x930]
}
