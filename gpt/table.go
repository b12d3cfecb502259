// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gpt

import (
	"fmt"
	"hash/crc32"
	"io"
	"sort"

	"github.com/siderolabs/gen/xslices"
)

// readFullAt is io.ReadFull for io.ReaderAt: it keeps reading at
// increasing offsets until buf is full or a non-EOF error occurs.
func readFullAt(r io.ReaderAt, buf []byte, offset int64) error {
	for n := 0; n < len(buf); {
		m, err := r.ReadAt(buf[n:], offset)

		n += m
		offset += int64(m)

		if err != nil {
			if err == io.EOF && n == len(buf) {
				return nil
			}

			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}

			return err
		}
	}

	return nil
}

// Table is the in-memory GPT: the primary header, the ordered entry
// array (1-indexed externally, 0-indexed internally), and the sector
// size. A Table is a plain value; it does not retain the stream it was
// built from.
type Table struct {
	Header     *Header
	Entries    []*Entry
	SectorSize uint64
	Align      uint64

	rng RNG
}

// entryArraySectors returns k = ceil(N*E/sectorSize), the number of
// sectors the partition-entry array occupies.
func entryArraySectors(numEntries, entrySize uint32, sectorSize uint64) uint64 {
	total := uint64(numEntries) * uint64(entrySize)

	return (total + sectorSize - 1) / sectorSize
}

// defaultAlign returns the default placement alignment for a sector size,
// chosen so that the aligned unit is always 1 MiB (§4.4).
func defaultAlign(sectorSize uint64) uint64 {
	if sectorSize == 0 {
		return 2048
	}

	return (1024 * 1024) / sectorSize
}

// NewFrom constructs a fresh, empty Table sized for a stream of the given
// length and sector size, per §4.2.
func NewFrom(streamLen int64, sectorSize uint64, diskGUID [16]byte, setters ...Option) (*Table, error) {
	if sectorSize != 512 && sectorSize != 4096 {
		return nil, newError(KindInvalidSectorSize, fmt.Sprintf("%d", sectorSize), nil)
	}

	opts, err := NewDefaultOptions(setters...)
	if err != nil {
		return nil, err
	}

	totalSectors := uint64(streamLen) / sectorSize

	entryLBA := opts.PartitionEntryLBA
	if entryLBA == 0 {
		entryLBA = 2
	}

	k := entryArraySectors(DefaultNumberOfPartitionEntries, DefaultPartitionEntrySize, sectorSize)

	h := &Header{
		Signature:                MagicEFIPart,
		Revision:                 DefaultRevision,
		HeaderSize:               HeaderSize,
		CurrentLBA:               1,
		BackupLBA:                totalSectors - 1,
		FirstUsableLBA:           entryLBA + k,
		LastUsableLBA:            totalSectors - 1 - k - 1,
		DiskGUID:                 diskGUID,
		PartitionEntryLBA:        entryLBA,
		NumberOfPartitionEntries: DefaultNumberOfPartitionEntries,
		PartitionEntrySize:       DefaultPartitionEntrySize,
	}

	entries := make([]*Entry, h.NumberOfPartitionEntries)
	for i := range entries {
		entries[i] = &Entry{}
	}

	align := opts.Align
	if align == 0 {
		align = defaultAlign(sectorSize)
	}

	return &Table{
		Header:     h,
		Entries:    entries,
		SectorSize: sectorSize,
		Align:      align,
		rng:        opts.RNG,
	}, nil
}

// FindFrom locates and decodes a GPT on stream, trying sector size 512
// first and 4096 second, falling back to the backup header when the
// primary's header CRC is invalid, per §4.2/§7.
func FindFrom(stream Stream, setters ...Option) (*Table, error) {
	opts, err := NewDefaultOptions(setters...)
	if err != nil {
		return nil, err
	}

	var primaryErr error

	for _, sectorSize := range []uint64{512, 4096} {
		t, err := readFrom(stream, sectorSize, opts)
		if err == nil {
			return t, nil
		}

		if isKind(err, KindInvalidSignature) {
			primaryErr = err

			continue
		}

		return nil, err
	}

	return nil, primaryErr
}

func isKind(err error, kind Kind) bool {
	gerr, ok := err.(*Error)

	return ok && gerr.Kind == kind
}

func readFrom(stream Stream, sectorSize uint64, opts *Options) (*Table, error) {
	size, err := stream.Size()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadError, err)
	}

	totalSectors := uint64(size) / sectorSize

	primary, primaryErr := readHeaderAt(stream, 1, sectorSize)
	if primaryErr == nil {
		entries, err := readEntriesAt(stream, primary, sectorSize)
		if err == nil {
			return newTable(primary, entries, sectorSize, opts), nil
		}

		primaryErr = err
	}

	if isKind(primaryErr, KindInvalidSignature) {
		return nil, primaryErr
	}

	// header CRC or entries CRC failed: fall back to the backup copy.
	backup, backupErr := readHeaderAt(stream, totalSectors-1, sectorSize)
	if backupErr != nil {
		return nil, primaryErr
	}

	entries, err := readEntriesAt(stream, backup, sectorSize)
	if err != nil {
		return nil, primaryErr
	}

	primaryFromBackup := derivePrimaryFromBackup(backup)

	return newTable(primaryFromBackup, entries, sectorSize, opts), nil
}

func readHeaderAt(stream Stream, lba, sectorSize uint64) (*Header, error) {
	buf := make([]byte, HeaderSize)
	if err := readFullAt(stream, buf, int64(lba*sectorSize)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadError, err)
	}

	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}

	if h.Signature != MagicEFIPart {
		return nil, newError(KindInvalidSignature, fmt.Sprintf("got %q", h.Signature), nil)
	}

	if h.HeaderSize < HeaderSize {
		return nil, newError(KindInvalidHeaderCRC, "header size too small", nil)
	}

	full := buf
	if h.HeaderSize > HeaderSize {
		full = make([]byte, h.HeaderSize)
		if err := readFullAt(stream, full, int64(lba*sectorSize)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadError, err)
		}
	}

	if got := headerCRC32(full, h.HeaderSize); got != h.HeaderCRC32 {
		return nil, newError(KindInvalidHeaderCRC, fmt.Sprintf("expected %d, got %d", got, h.HeaderCRC32), nil)
	}

	return h, nil
}

func readEntriesAt(stream Stream, h *Header, sectorSize uint64) ([]*Entry, error) {
	n := uint64(h.NumberOfPartitionEntries) * uint64(h.PartitionEntrySize)
	buf := make([]byte, n)

	if err := readFullAt(stream, buf, int64(h.PartitionEntryLBA*sectorSize)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadError, err)
	}

	if crc32.ChecksumIEEE(buf) != h.PartitionEntriesCRC32 {
		return nil, ErrInvalidEntriesCRC
	}

	return DecodeEntries(buf, h.NumberOfPartitionEntries, h.PartitionEntrySize)
}

func newTable(h *Header, entries []*Entry, sectorSize uint64, opts *Options) *Table {
	align := opts.Align
	if align == 0 {
		align = findAlignment(h, entries, sectorSize)
	}

	return &Table{
		Header:     h,
		Entries:    entries,
		SectorSize: sectorSize,
		Align:      align,
		rng:        opts.RNG,
	}
}

// findAlignment infers the alignment in effect on an existing table by
// finding the largest divisor (bounded by a sane maximum) common to every
// used entry's starting LBA, falling back to the sector size's default
// when there is nothing to infer from.
func findAlignment(h *Header, entries []*Entry, sectorSize uint64) uint64 {
	const maxAlign = 16384

	var lbas []uint64

	for _, e := range entries {
		if e.IsUsed() {
			lbas = append(lbas, e.StartingLBA)
		}
	}

	if len(lbas) == 0 {
		return defaultAlign(sectorSize)
	}

	if len(lbas) == 1 && lbas[0] == h.FirstUsableLBA {
		return 1
	}

	max := lbas[0]
	for _, l := range lbas[1:] {
		if l > max {
			max = l
		}
	}

	if max > maxAlign {
		max = maxAlign
	}

	best := uint64(1)

	for div := uint64(1); div <= max; div++ {
		ok := true

		for _, l := range lbas {
			if l%div != 0 {
				ok = false

				break
			}
		}

		if ok {
			best = div
		}
	}

	return best
}

// Get returns the 1-indexed entry, failing on an out-of-range index.
func (t *Table) Get(i uint32) (*Entry, error) {
	if i == 0 || i > t.Header.NumberOfPartitionEntries {
		return nil, newError(KindInvalidPartitionNumber, fmt.Sprintf("%d", i), nil)
	}

	return t.Entries[i-1], nil
}

// Set assigns the 1-indexed entry, failing on an out-of-range index.
func (t *Table) Set(i uint32, e *Entry) error {
	if i == 0 || i > t.Header.NumberOfPartitionEntries {
		return newError(KindInvalidPartitionNumber, fmt.Sprintf("%d", i), nil)
	}

	t.Entries[i-1] = e

	return nil
}

// IndexedEntry pairs a 1-based slot number with its entry.
type IndexedEntry struct {
	Index uint32
	Entry *Entry
}

// Iter yields every slot in order, 1-indexed.
func (t *Table) Iter() []IndexedEntry {
	out := make([]IndexedEntry, len(t.Entries))
	for i, e := range t.Entries {
		out[i] = IndexedEntry{Index: uint32(i) + 1, Entry: e}
	}

	return out
}

// Used returns only the occupied slots, in slot order.
func (t *Table) Used() []IndexedEntry {
	return xslices.Filter(t.Iter(), func(ie IndexedEntry) bool {
		return ie.Entry.IsUsed()
	})
}

// Sort rearranges used entries to occupy the lowest slot indices in
// ascending StartingLBA order, per §4.2/§4.4. This invalidates any index
// the caller was holding.
func (t *Table) Sort() {
	sort.SliceStable(t.Entries, func(i, j int) bool {
		a, b := t.Entries[i], t.Entries[j]

		switch {
		case a.IsUsed() && b.IsUsed():
			return a.StartingLBA < b.StartingLBA
		case a.IsUsed() && !b.IsUsed():
			return true
		case !a.IsUsed() && b.IsUsed():
			return false
		default:
			return false
		}
	})
}

// Remove zero-fills entry i, per §4.2.
func (t *Table) Remove(i uint32) error {
	if i == 0 || i > t.Header.NumberOfPartitionEntries {
		return newError(KindInvalidPartitionNumber, fmt.Sprintf("%d", i), nil)
	}

	t.Entries[i-1] = &Entry{}

	return nil
}

// Swap exchanges the contents of two slots, per §4.2.
func (t *Table) Swap(i, j uint32) error {
	if i == 0 || i > t.Header.NumberOfPartitionEntries {
		return newError(KindInvalidPartitionNumber, fmt.Sprintf("%d", i), nil)
	}

	if j == 0 || j > t.Header.NumberOfPartitionEntries {
		return newError(KindInvalidPartitionNumber, fmt.Sprintf("%d", j), nil)
	}

	t.Entries[i-1], t.Entries[j-1] = t.Entries[j-1], t.Entries[i-1]

	return nil
}

// RandomizeGUIDs replaces the disk GUID and every used entry's unique
// partition GUID with fresh values drawn from rng (or the Table's
// configured RNG when rng is nil), per §4.2.
func (t *Table) RandomizeGUIDs(rng RNG) {
	if rng == nil {
		rng = t.rng
	}

	t.Header.DiskGUID = rng.Read()

	for _, e := range t.Entries {
		if e.IsUsed() {
			e.UniquePartitionGUID = rng.Read()
		}
	}
}

// RandomizeDiskGUID replaces only the disk GUID.
func (t *Table) RandomizeDiskGUID(rng RNG) {
	if rng == nil {
		rng = t.rng
	}

	t.Header.DiskGUID = rng.Read()
}

// RandomizePartitionGUIDs replaces only the used entries' unique GUIDs.
func (t *Table) RandomizePartitionGUIDs(rng RNG) {
	if rng == nil {
		rng = t.rng
	}

	for _, e := range t.Entries {
		if e.IsUsed() {
			e.UniquePartitionGUID = rng.Read()
		}
	}
}

// UpdateFrom refreshes LastUsableLBA and the backup location by
// re-examining the stream's current length, per §4.2.
// FirstUsableLBA is left unchanged, matching scenario 6 of §8.
func (t *Table) UpdateFrom(stream Stream) error {
	size, err := stream.Size()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadError, err)
	}

	totalSectors := uint64(size) / t.SectorSize
	k := entryArraySectors(t.Header.NumberOfPartitionEntries, t.Header.PartitionEntrySize, t.SectorSize)

	t.Header.BackupLBA = totalSectors - 1
	t.Header.LastUsableLBA = totalSectors - 1 - k - 1

	return nil
}
