// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gpt

import (
	"encoding/binary"
	"fmt"
)

// protectiveMBRPartitionType is the legacy partition type marking a disk
// as GPT-owned.
const protectiveMBRPartitionType = 0xEE

// BootCodeSize is the number of bytes of x86 boot code a bootable
// protective MBR preserves.
const BootCodeSize = 440

// WriteProtectiveMBR writes a legacy MBR into LBA 0 whose sole partition
// entry has type 0xEE, starting at LBA 1 and covering the disk (clamped
// to 0xFFFFFFFF sectors), with the boot code area zeroed. The GPT writer
// never calls this on its own; it is invoked only when the caller asks,
// per §4.6.
func WriteProtectiveMBR(stream Stream, sectorSize uint64, setters ...Option) error {
	return writeProtectiveMBR(stream, sectorSize, nil, setters...)
}

// WriteBootableProtectiveMBR is WriteProtectiveMBR but preserves the
// caller-supplied 440 bytes of boot code instead of zeroing them.
func WriteBootableProtectiveMBR(stream Stream, sectorSize uint64, bootCode [BootCodeSize]byte, setters ...Option) error {
	return writeProtectiveMBR(stream, sectorSize, bootCode[:], setters...)
}

func writeProtectiveMBR(stream Stream, sectorSize uint64, bootCode []byte, setters ...Option) error {
	if sectorSize != 512 && sectorSize != 4096 {
		return newError(KindInvalidSectorSize, fmt.Sprintf("%d", sectorSize), nil)
	}

	opts, err := NewDefaultOptions(setters...)
	if err != nil {
		return err
	}

	size, err := stream.Size()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadError, err)
	}

	totalSectors := uint64(size) / sectorSize

	var diskSectors uint64
	if totalSectors > 0 {
		diskSectors = totalSectors - 1
	}

	if diskSectors > 0xFFFFFFFF {
		diskSectors = 0xFFFFFFFF
	}

	buf := make([]byte, sectorSize)

	if bootCode != nil {
		copy(buf[:BootCodeSize], bootCode)
	}

	status := byte(0x00)
	if opts.MarkMBRBootable {
		status = 0x80
	}

	buf[446] = status
	buf[447], buf[448], buf[449] = 0x00, 0x02, 0x00 // CHS address of first absolute sector
	buf[450] = protectiveMBRPartitionType
	buf[451], buf[452], buf[453] = 0xff, 0xff, 0xff // CHS address of last absolute sector
	binary.LittleEndian.PutUint32(buf[454:458], 1)
	binary.LittleEndian.PutUint32(buf[458:462], uint32(diskSectors))
	// bytes 462:510 (partition entries 2-4) stay zero.
	buf[510], buf[511] = 0x55, 0xAA

	return writeAt(stream, buf, 0)
}
