// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gpt

import "fmt"

// WriteInto commits a Table to stream, writing the primary entry array,
// the backup entry array, the backup header, and finally the primary
// header, in that order, per §4.5. The primary header is written last.
// When the entry array changes and a write stops early, the old primary
// header no longer matches the new primary entry array, so FindFrom falls
// back to the backup: it holds the old state until step 2 and the new
// state once step 3 has completed; between steps 2 and 3 neither copy
// validates.
func WriteInto(stream Stream, t *Table) error {
	if err := Validate(t); err != nil {
		return err
	}

	if err := Refresh(t); err != nil {
		return err
	}

	k := entryArraySectors(t.Header.NumberOfPartitionEntries, t.Header.PartitionEntrySize, t.SectorSize)
	backup := deriveBackup(t.Header, k)

	entryBytes, err := EncodeEntries(t.Entries, t.Header.PartitionEntrySize)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteError, err)
	}

	if err := writeAt(stream, entryBytes, t.Header.PartitionEntryLBA*t.SectorSize); err != nil {
		return err
	}

	if err := writeAt(stream, entryBytes, backup.PartitionEntryLBA*t.SectorSize); err != nil {
		return err
	}

	if err := writeAt(stream, EncodeHeader(backup), backup.CurrentLBA*t.SectorSize); err != nil {
		return err
	}

	if err := writeAt(stream, EncodeHeader(t.Header), t.Header.CurrentLBA*t.SectorSize); err != nil {
		return err
	}

	return nil
}

func writeAt(stream Stream, b []byte, offset uint64) error {
	n, err := stream.WriteAt(b, int64(offset))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteError, err)
	}

	if n != len(b) {
		return fmt.Errorf("%w: short write (%d of %d bytes)", ErrWriteError, n, len(b))
	}

	return nil
}

// FindAtSector locates and decodes the GPT whose primary header sits at
// the caller-specified LBA, trying sector size 512 then 4096. Unlike
// FindFrom, it never falls back to a backup copy: the caller is pointing
// at a specific, known-primary location, useful for nested or
// non-standard layouts (§4.5).
func FindAtSector(stream Stream, lba uint64, setters ...Option) (*Table, error) {
	opts, err := NewDefaultOptions(setters...)
	if err != nil {
		return nil, err
	}

	var primaryErr error

	for _, sectorSize := range []uint64{512, 4096} {
		h, err := readHeaderAt(stream, lba, sectorSize)
		if err != nil {
			if isKind(err, KindInvalidSignature) {
				primaryErr = err

				continue
			}

			return nil, err
		}

		entries, err := readEntriesAt(stream, h, sectorSize)
		if err != nil {
			return nil, err
		}

		return newTable(h, entries, sectorSize, opts), nil
	}

	return nil, primaryErr
}

// RemoveAtSector erases the GPT signature of both the primary header at
// lba and its mirrored backup header, so the location is no longer
// recognized as GPT-owned. The entry arrays are left untouched; only the
// 8-byte "EFI PART" signature of each header sector is zeroed.
func RemoveAtSector(stream Stream, lba uint64) error {
	t, err := FindAtSector(stream, lba)
	if err != nil {
		return err
	}

	zero := make([]byte, 8)

	if err := writeAt(stream, zero, t.Header.CurrentLBA*t.SectorSize); err != nil {
		return err
	}

	if err := writeAt(stream, zero, t.Header.BackupLBA*t.SectorSize); err != nil {
		return err
	}

	return nil
}
