// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gpt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"golang.org/x/text/encoding/unicode"
)

// PartitionNameMaxLength is the number of UTF-16LE code units a partition
// name field holds, not counting a terminating NUL.
const PartitionNameMaxLength = 36

// Attribute bit positions shared by every partition, per §3.
const (
	AttributeRequiredPartition = 0
	AttributeNoBlockIOProtocol = 1
	AttributeLegacyBIOSBootable = 2
)

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Entry is one partition-entry record. GUID fields are opaque 16-byte
// arrays, matching Header's discipline.
type Entry struct {
	PartitionTypeGUID   [16]byte
	UniquePartitionGUID [16]byte
	StartingLBA         uint64
	EndingLBA           uint64
	AttributeBits       uint64
	PartitionName       string
}

// IsUsed reports whether the slot is occupied, per §3: a slot is used iff
// its partition type GUID is not all-zero.
func (e *Entry) IsUsed() bool {
	var zero [16]byte

	return e.PartitionTypeGUID != zero
}

// SizeInSectors returns the inclusive LBA range length. Only meaningful
// for a used entry with StartingLBA <= EndingLBA.
func (e *Entry) SizeInSectors() uint64 {
	if e.EndingLBA < e.StartingLBA {
		return 0
	}

	return e.EndingLBA - e.StartingLBA + 1
}

// DecodeEntries decodes count fixed-size records of entrySize bytes each
// from b. Decoding never validates ranges or CRCs.
func DecodeEntries(b []byte, count, entrySize uint32) ([]*Entry, error) {
	if uint64(len(b)) < uint64(count)*uint64(entrySize) {
		return nil, newError(KindReadError, "entry array buffer too short", nil)
	}

	entries := make([]*Entry, count)

	for i := uint32(0); i < count; i++ {
		rec := b[uint64(i)*uint64(entrySize) : uint64(i+1)*uint64(entrySize)]

		e, err := decodeEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("decode entry %d: %w", i, err)
		}

		entries[i] = e
	}

	return entries, nil
}

// EncodeEntries encodes entries into a count*entrySize byte buffer.
func EncodeEntries(entries []*Entry, entrySize uint32) ([]byte, error) {
	b := make([]byte, uint64(len(entries))*uint64(entrySize))

	for i, e := range entries {
		if e == nil {
			continue
		}

		if err := encodeEntry(e, b[uint64(i)*uint64(entrySize):uint64(i+1)*uint64(entrySize)]); err != nil {
			return nil, fmt.Errorf("encode entry %d: %w", i, err)
		}
	}

	return b, nil
}

// EntriesCRC32 computes the entry-array CRC over exactly count*entrySize
// encoded bytes, per §4.1.
func EntriesCRC32(entries []*Entry, entrySize uint32) (uint32, error) {
	b, err := EncodeEntries(entries, entrySize)
	if err != nil {
		return 0, err
	}

	return crc32.ChecksumIEEE(b), nil
}

func decodeEntry(b []byte) (*Entry, error) {
	if len(b) < 56 {
		return nil, newError(KindReadError, "entry record too short", nil)
	}

	e := &Entry{
		StartingLBA:   binary.LittleEndian.Uint64(b[32:40]),
		EndingLBA:     binary.LittleEndian.Uint64(b[40:48]),
		AttributeBits: binary.LittleEndian.Uint64(b[48:56]),
	}

	copy(e.PartitionTypeGUID[:], b[0:16])
	copy(e.UniquePartitionGUID[:], b[16:32])

	if len(b) >= 128 {
		decoded, err := utf16LE.NewDecoder().Bytes(b[56:128])
		if err != nil {
			return nil, fmt.Errorf("decode partition name: %w", err)
		}

		if end := bytes.IndexByte(decoded, 0); end >= 0 {
			decoded = decoded[:end]
		}

		e.PartitionName = string(decoded)
	}

	return e, nil
}

func encodeEntry(e *Entry, b []byte) error {
	if len(b) < 56 {
		return newError(KindWriteError, "entry record too short", nil)
	}

	copy(b[0:16], e.PartitionTypeGUID[:])
	copy(b[16:32], e.UniquePartitionGUID[:])
	binary.LittleEndian.PutUint64(b[32:40], e.StartingLBA)
	binary.LittleEndian.PutUint64(b[40:48], e.EndingLBA)
	binary.LittleEndian.PutUint64(b[48:56], e.AttributeBits)

	if len(b) < 128 {
		return nil
	}

	name, err := utf16LE.NewEncoder().Bytes([]byte(e.PartitionName))
	if err != nil {
		return fmt.Errorf("encode partition name: %w", err)
	}

	if len(name) > len(b)-56 {
		return newError(KindWriteError, fmt.Sprintf("partition name %q too long", e.PartitionName), nil)
	}

	copy(b[56:len(b)], name)

	return nil
}
