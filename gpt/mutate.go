// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gpt

// Resize grows or shrinks a used entry's EndingLBA in place. Growth is
// bounded by the free run immediately following the entry; shrinkage is
// bounded by the entry's own StartingLBA. The entry's previous range is
// restored if the resulting Table fails validation, per §12.
func Resize(t *Table, i uint32, newEndingLBA uint64) error {
	e, err := t.Get(i)
	if err != nil {
		return err
	}

	if !e.IsUsed() {
		return newError(KindInvalidPartitionNumber, "slot is unused", nil)
	}

	if newEndingLBA < e.StartingLBA {
		return newError(KindInvalidPartitionBoundaries, "ending_lba < starting_lba", nil)
	}

	if newEndingLBA > e.EndingLBA {
		limit := t.Header.LastUsableLBA

		for _, ie := range t.Used() {
			if ie.Entry != e && ie.Entry.StartingLBA > e.EndingLBA && ie.Entry.StartingLBA-1 < limit {
				limit = ie.Entry.StartingLBA - 1
			}
		}

		if newEndingLBA > limit {
			return ErrNoSpaceLeft
		}
	}

	old := e.EndingLBA
	e.EndingLBA = newEndingLBA

	if err := Validate(t); err != nil {
		e.EndingLBA = old

		return err
	}

	return nil
}

// CopyPartition copies one used entry from src into the first free slot
// of dst, placing it via dst.FindOptimalPlace rather than requiring the
// destination range to be specified manually, per §12. It returns the
// destination slot the entry was placed into.
func CopyPartition(dst, src *Table, srcIndex uint32) (uint32, error) {
	e, err := src.Get(srcIndex)
	if err != nil {
		return 0, err
	}

	if !e.IsUsed() {
		return 0, newError(KindInvalidPartitionNumber, "source slot is unused", nil)
	}

	size := e.SizeInSectors()

	start, err := dst.FindOptimalPlace(size)
	if err != nil {
		return 0, err
	}

	var dstIndex uint32

	for _, ie := range dst.Iter() {
		if !ie.Entry.IsUsed() {
			dstIndex = ie.Index

			break
		}
	}

	if dstIndex == 0 {
		return 0, ErrNoSpaceLeft
	}

	copied := &Entry{
		PartitionTypeGUID:   e.PartitionTypeGUID,
		UniquePartitionGUID: e.UniquePartitionGUID,
		StartingLBA:         start,
		EndingLBA:           start + size - 1,
		AttributeBits:       e.AttributeBits,
		PartitionName:       e.PartitionName,
	}

	if err := dst.Set(dstIndex, copied); err != nil {
		return 0, err
	}

	if err := Validate(dst); err != nil {
		_ = dst.Remove(dstIndex)

		return 0, err
	}

	return dstIndex, nil
}
