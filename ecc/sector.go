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

// SectorType selects which of the three CD-ROM sector layouts a
// Reconstruct call should use.
type SectorType int

const (
	// SectorMode1 is a Mode 1 sector: 2048 bytes user data, EDC, zero-pad,
	// P-parity and Q-parity.
	SectorMode1 SectorType = 1

	// SectorMode2Form1 is a Mode 2 Form 1 sector: 2048 bytes user data,
	// EDC, P-parity and Q-parity, with a zeroed address for ECC purposes.
	SectorMode2Form1 SectorType = 2

	// SectorMode2Form2 is a Mode 2 Form 2 sector: 2324 bytes user data and
	// EDC only, no P/Q parity.
	SectorMode2Form2 SectorType = 3
)

// Sector layout offsets, per the CD-ROM Mode 1 / Mode 2 Form 1/2 frame.
const (
	// SectorSize is the size in bytes of a full raw CD-ROM sector.
	SectorSize = 2352

	offAddress  = 0x00C
	offMode1Edc = 0x810
	offZeroPad  = 0x814
	offPParity  = 0x81C
	offQParity  = 0x8C8

	offMode2Form1Edc = 0x818
	offMode2Form2Edc = 0x92C

	eccSrcStart = 0x00C
	eccSrcEnd   = 0x930

	pMajorCount, pMinorCount, pMajorMult, pMinorInc = 86, 24, 2, 86
	qMajorCount, qMinorCount, qMajorMult, qMinorInc = 52, 43, 86, 88
)

// EDC computes the 32-bit CRC used by the CD-ROM EDC field over src.
func EDC(src []byte) [4]byte {
	var edc uint32
	for _, b := range src {
		edc = (edc >> 8) ^ EDCTable[(edc^uint32(b))&0xFF]
	}
	return [4]byte{byte(edc), byte(edc >> 8), byte(edc >> 16), byte(edc >> 24)}
}

// eccComputePass computes one interleaved P- or Q-parity pass over src,
// per the (majorCount, minorCount, majorMult, minorInc) parameterization
// described for the CIRC-style CD-ROM ECC layers, and writes 2*majorCount
// bytes to dest.
func eccComputePass(src []byte, majorCount, minorCount, majorMult, minorInc int, dest []byte) {
	size := majorCount * minorCount
	for major := 0; major < majorCount; major++ {
		index := (major>>1)*majorMult + (major & 1)
		var eccA, eccB byte
		for range minorCount {
			t := src[index]
			index += minorInc
			if index >= size {
				index -= size
			}
			eccA ^= t
			eccB ^= t
			eccA = ECCTableF[eccA]
		}
		tA := ECCTableF[eccA]
		eccA = ECCTableB[tA^eccB]
		dest[major] = eccA
		dest[major+majorCount] = eccA ^ eccB
	}
}

// GenerateECC writes the 172-byte P-parity and 104-byte Q-parity blocks at
// their fixed offsets in sector, computed over sector[0x00C:0x930]. When
// zeroAddress is true (Mode 2), the 4-byte address field is temporarily
// zeroed for the duration of the computation and restored afterward.
func GenerateECC(sector []byte, zeroAddress bool) error {
	if len(sector) != SectorSize {
		return SectorSizeError{Want: SectorSize, Got: len(sector)}
	}

	if zeroAddress {
		var saved [4]byte
		copy(saved[:], sector[offAddress:offAddress+4])
		for i := offAddress; i < offAddress+4; i++ {
			sector[i] = 0
		}
		defer copy(sector[offAddress:offAddress+4], saved[:])
	}

	src := sector[eccSrcStart:eccSrcEnd]
	eccComputePass(src, pMajorCount, pMinorCount, pMajorMult, pMinorInc, sector[offPParity:offPParity+2*pMajorCount])
	eccComputePass(src, qMajorCount, qMinorCount, qMajorMult, qMinorInc, sector[offQParity:offQParity+2*qMajorCount])
	return nil
}

// Reconstruct regenerates the EDC (and, for Mode 1 / Mode 2 Form 1, the P/Q
// ECC) of sector in place, according to sectorType. sector must already
// hold the sync pattern, address, mode byte, and payload bytes at their
// fixed offsets; only the EDC/ECC/zero-pad regions are written.
func Reconstruct(sector []byte, sectorType SectorType) error {
	if len(sector) != SectorSize {
		return SectorSizeError{Want: SectorSize, Got: len(sector)}
	}

	switch sectorType {
	case SectorMode1:
		edc := EDC(sector[:offMode1Edc])
		copy(sector[offMode1Edc:offMode1Edc+4], edc[:])
		for i := offZeroPad; i < offPParity; i++ {
			sector[i] = 0
		}
		return GenerateECC(sector, false)

	case SectorMode2Form1:
		edc := EDC(sector[0x10:0x818])
		copy(sector[offMode2Form1Edc:offMode2Form1Edc+4], edc[:])
		return GenerateECC(sector, true)

	case SectorMode2Form2:
		edc := EDC(sector[0x10:0x92C])
		copy(sector[offMode2Form2Edc:offMode2Form2Edc+4], edc[:])
		return nil

	default:
		return UnknownSectorTypeError{Type: sectorType}
	}
}
