// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gpt

import (
	"fmt"
	"sort"
)

// Refresh brings header.header_crc32 and header.partition_entries_crc32
// in line with the current entry array, per §4.3.1. Idempotent: calling
// it twice in a row changes nothing (§8's CRC idempotence property).
func Refresh(t *Table) error {
	entriesCRC, err := EntriesCRC32(t.Entries, t.Header.PartitionEntrySize)
	if err != nil {
		return err
	}

	t.Header.PartitionEntriesCRC32 = entriesCRC

	refreshHeaderCRC(t.Header)

	return nil
}

// refreshHeaderCRC recomputes HeaderCRC32 over HeaderSize bytes of the
// encoded header with the CRC field zeroed (§4.1/§4.3.1).
func refreshHeaderCRC(h *Header) {
	h.HeaderCRC32 = 0
	encoded := EncodeHeader(h)
	h.HeaderCRC32 = headerCRC32(encoded, h.HeaderSize)
}

// deriveBackup builds the backup header from the primary, per §4.3.2:
// primary_lba/backup_lba swapped, partition_entry_lba recomputed as
// backup_lba - entry_array_sectors, header CRC recomputed independently.
// The primary's own PartitionEntryLBA is left untouched by this
// function — whatever the caller set for the primary is preserved,
// per the open question resolved in DESIGN.md.
func deriveBackup(primary *Header, entrySectors uint64) *Header {
	backup := *primary
	backup.CurrentLBA = primary.BackupLBA
	backup.BackupLBA = primary.CurrentLBA
	backup.PartitionEntryLBA = backup.CurrentLBA - entrySectors

	refreshHeaderCRC(&backup)

	return &backup
}

// derivePrimaryFromBackup reconstructs the primary header when the
// primary copy is unreadable and only the backup validated. The
// reconstructed primary uses the conventional partition_entry_lba of 2
// (§4.2), since there is no surviving caller-set value to preserve.
func derivePrimaryFromBackup(backup *Header) *Header {
	primary := *backup
	primary.CurrentLBA = backup.BackupLBA
	primary.BackupLBA = backup.CurrentLBA
	primary.PartitionEntryLBA = 2

	refreshHeaderCRC(&primary)

	return &primary
}

// Validate checks invariants 4 through 7 of §3: every used entry's range
// lies in the usable window, no two used entries overlap, every used
// entry has a strictly positive size, and the entry-array region does
// not intersect the usable window. It returns the first violation found.
func Validate(t *Table) error {
	k := entryArraySectors(t.Header.NumberOfPartitionEntries, t.Header.PartitionEntrySize, t.SectorSize)

	if t.Header.PartitionEntryLBA <= t.Header.LastUsableLBA &&
		t.Header.PartitionEntryLBA+k > t.Header.FirstUsableLBA {
		return newError(KindInvalidPartitionBoundaries, "entry array overlaps usable window", nil)
	}

	type used struct {
		index uint32
		entry *Entry
	}

	var usedEntries []used

	for _, ie := range t.Iter() {
		if !ie.Entry.IsUsed() {
			continue
		}

		if ie.Entry.EndingLBA < ie.Entry.StartingLBA {
			return newError(KindInvalidPartitionBoundaries,
				fmt.Sprintf("entry %d: ending_lba < starting_lba", ie.Index), nil)
		}

		if ie.Entry.StartingLBA < t.Header.FirstUsableLBA || ie.Entry.EndingLBA > t.Header.LastUsableLBA {
			return newError(KindInvalidPartitionBoundaries,
				fmt.Sprintf("entry %d: range [%d,%d] outside usable window [%d,%d]",
					ie.Index, ie.Entry.StartingLBA, ie.Entry.EndingLBA,
					t.Header.FirstUsableLBA, t.Header.LastUsableLBA), nil)
		}

		usedEntries = append(usedEntries, used{ie.Index, ie.Entry})
	}

	sort.Slice(usedEntries, func(i, j int) bool {
		return usedEntries[i].entry.StartingLBA < usedEntries[j].entry.StartingLBA
	})

	for i := 1; i < len(usedEntries); i++ {
		prev, cur := usedEntries[i-1], usedEntries[i]
		if cur.entry.StartingLBA <= prev.entry.EndingLBA {
			return newError(KindPartitionOverlap,
				fmt.Sprintf("entry %d overlaps entry %d", cur.index, prev.index), nil)
		}
	}

	return nil
}
