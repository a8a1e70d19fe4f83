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

package ecm_test

import (
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"testing"

	"github.com/retrodecode/ecmdecode/ecc"
	"github.com/retrodecode/ecmdecode/ecm"
)

func header() []byte { return []byte{0x45, 0x43, 0x4D, 0x00} }

// terminator encodes the num==0xFFFFFFFF sentinel descriptor.
func terminator() []byte {
	var out []byte
	num := uint32(0xFFFFFFFF)
	b := byte(num&0x1F) << 2
	num >>= 5
	for num != 0 {
		out = append(out, b|0x80)
		b = byte(num & 0x7F)
		num >>= 7
	}
	out = append(out, b)
	return out
}

func TestDecodeBadMagic(t *testing.T) {
	t.Parallel()

	in := bytes.NewReader([]byte{0x45, 0x43, 0x4D, 0x01})
	_, err := ecm.Decode(in, io.Discard, ecm.Options{})
	if !errors.Is(err, ecm.ErrBadMagic) {
		t.Fatalf("Decode err = %v, want ErrBadMagic", err)
	}
}

func TestDecodeTruncatedHeader(t *testing.T) {
	t.Parallel()

	in := bytes.NewReader([]byte{0x45, 0x43})
	_, err := ecm.Decode(in, io.Discard, ecm.Options{})
	if !errors.Is(err, ecm.ErrTruncatedHeader) {
		t.Fatalf("Decode err = %v, want ErrTruncatedHeader", err)
	}
}

func TestDecodeEmptyStream(t *testing.T) {
	t.Parallel()

	var in bytes.Buffer
	in.Write(header())
	in.Write(terminator())

	var out bytes.Buffer
	stats, err := ecm.Decode(&in, &out, ecm.Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("output len = %d, want 0", out.Len())
	}
	if stats.Records != 0 {
		t.Errorf("Records = %d, want 0", stats.Records)
	}
}

func TestDecodeRawPassthrough(t *testing.T) {
	t.Parallel()

	var in bytes.Buffer
	in.Write(header())
	in.WriteByte(0x00) // type=0, num=0 -> count=1
	in.WriteByte(0xAB)
	in.Write(terminator())

	var out bytes.Buffer
	stats, err := ecm.Decode(&in, &out, ecm.Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(out.Bytes(), []byte{0xAB}) {
		t.Errorf("output = % x, want [ab]", out.Bytes())
	}
	if stats.Records != 1 {
		t.Errorf("Records = %d, want 1", stats.Records)
	}
}

func TestDecodeSingleMode1Sector(t *testing.T) {
	t.Parallel()

	var in bytes.Buffer
	in.Write(header())
	in.WriteByte(0x01) // type=1, num=0 -> count=1
	in.Write([]byte{0x00, 0x02, 0x00})
	in.Write(bytes.Repeat([]byte{0x00}, 2048))
	in.Write(terminator())

	var out bytes.Buffer
	stats, err := ecm.Decode(&in, &out, ecm.Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Len() != ecc.SectorSize {
		t.Fatalf("output len = %d, want %d", out.Len(), ecc.SectorSize)
	}

	got := out.Bytes()
	wantSync := append([]byte{0x00}, bytes.Repeat([]byte{0xFF}, 10)...)
	wantSync = append(wantSync, 0x00)
	if !bytes.Equal(got[0:12], wantSync) {
		t.Errorf("sync = % x", got[0:12])
	}
	if !bytes.Equal(got[0x00C:0x00F], []byte{0x00, 0x02, 0x00}) {
		t.Errorf("address = % x", got[0x00C:0x00F])
	}
	if got[0x00F] != 0x01 {
		t.Errorf("mode = %d, want 1", got[0x00F])
	}

	wantEDC := ecc.EDC(got[:0x810])
	if !bytes.Equal(got[0x810:0x814], wantEDC[:]) {
		t.Errorf("EDC = % x, want % x", got[0x810:0x814], wantEDC[:])
	}
	if stats.BytesOut != ecc.SectorSize {
		t.Errorf("BytesOut = %d, want %d", stats.BytesOut, ecc.SectorSize)
	}
}

// TestDecodeSingleMode1SectorGoldenVector checks the reconstructed EDC
// against a fixed reference value computed independently of ecc.EDC, rather
// than by calling ecc.EDC on the decoded output (see
// ecc.TestReconstructGoldenVectors for how the vector was derived).
func TestDecodeSingleMode1SectorGoldenVector(t *testing.T) {
	t.Parallel()

	var in bytes.Buffer
	in.Write(header())
	in.WriteByte(0x01) // type=1, num=0 -> count=1
	in.Write([]byte{0x00, 0x02, 0x00})
	in.Write(bytes.Repeat([]byte{0x00}, 2048))
	in.Write(terminator())

	var out bytes.Buffer
	if _, err := ecm.Decode(&in, &out, ecm.Options{}); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	got := out.Bytes()
	wantEDC, err := hex.DecodeString("c513682b")
	if err != nil {
		t.Fatalf("decode hex literal: %v", err)
	}
	if !bytes.Equal(got[0x810:0x814], wantEDC) {
		t.Errorf("EDC = % x, want % x", got[0x810:0x814], wantEDC)
	}
}

func TestDecodeMode2Form1RoundTripsSubHeader(t *testing.T) {
	t.Parallel()

	subHeader := []byte{0x01, 0x02, 0x03, 0x04}
	userData := bytes.Repeat([]byte{0x7E}, 2048)

	var in bytes.Buffer
	in.Write(header())
	in.WriteByte(0x02) // type=2, num=0 -> count=1
	in.Write([]byte{0x00, 0x02, 0x01})
	in.Write(subHeader)
	in.Write(userData)
	in.Write(terminator())

	var out bytes.Buffer
	if _, err := ecm.Decode(&in, &out, ecm.Options{}); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if out.Len() != 2336 {
		t.Fatalf("output len = %d, want 2336", out.Len())
	}
	got := out.Bytes()
	// Output starts at sector offset 0x010: duplicated sub-header first,
	// then the sub-header again, then user data.
	if !bytes.Equal(got[0:4], subHeader) {
		t.Errorf("duplicated sub-header = % x, want % x", got[0:4], subHeader)
	}
	if !bytes.Equal(got[4:8], subHeader) {
		t.Errorf("sub-header = % x, want % x", got[4:8], subHeader)
	}
	if !bytes.Equal(got[8:8+2048], userData) {
		t.Error("user data mismatch")
	}
}

func TestDecodeCancellation(t *testing.T) {
	t.Parallel()

	var in bytes.Buffer
	in.Write(header())
	in.WriteByte(0x00)
	in.WriteByte(0xAB)
	in.WriteByte(0x00)
	in.WriteByte(0xCD)
	in.Write(terminator())

	calls := 0
	cancel := func() bool {
		calls++
		return calls > 1
	}

	var out bytes.Buffer
	_, err := ecm.Decode(&in, &out, ecm.Options{Cancel: cancel})
	if !errors.Is(err, ecm.ErrCanceled) {
		t.Fatalf("Decode err = %v, want ErrCanceled", err)
	}
	if !bytes.Equal(out.Bytes(), []byte{0xAB}) {
		t.Errorf("output before cancel = % x, want [ab]", out.Bytes())
	}
}

func TestDecodeShortRawBodyStopsCleanly(t *testing.T) {
	t.Parallel()

	var in bytes.Buffer
	in.Write(header())
	in.WriteByte(0x04) // type=0, num=1 -> count=2
	in.WriteByte(0xAB) // only one byte available, not two

	var out bytes.Buffer
	stats, err := ecm.Decode(&in, &out, ecm.Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(out.Bytes(), []byte{0xAB}) {
		t.Errorf("output = % x, want [ab]", out.Bytes())
	}
	if stats.Records != 0 {
		t.Errorf("Records = %d, want 0 (short record never completes)", stats.Records)
	}
}

func TestDecodeShortSectorBodyStopsCleanly(t *testing.T) {
	t.Parallel()

	var in bytes.Buffer
	in.Write(header())
	in.WriteByte(0x01) // type=1, count=1
	in.Write([]byte{0x00, 0x02, 0x00})
	in.Write(bytes.Repeat([]byte{0x00}, 100)) // far short of 2048

	var out bytes.Buffer
	stats, err := ecm.Decode(&in, &out, ecm.Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("output len = %d, want 0 (incomplete sector not written)", out.Len())
	}
	if stats.Records != 0 {
		t.Errorf("Records = %d, want 0", stats.Records)
	}
}

func TestDecodeProgressMonotonic(t *testing.T) {
	t.Parallel()

	var in bytes.Buffer
	in.Write(header())
	in.WriteByte(0x00)
	in.WriteByte(0xAB)
	in.WriteByte(0x00)
	in.WriteByte(0xCD)
	in.Write(terminator())

	var seen []int64
	_, err := ecm.Decode(&in, io.Discard, ecm.Options{
		TotalIn: int64(in.Len()),
		Progress: func(bytesIn, totalIn int64) {
			seen = append(seen, bytesIn)
		},
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("progress calls = %d, want 2", len(seen))
	}
	if seen[1] < seen[0] {
		t.Errorf("progress not monotonic: %v", seen)
	}
}
