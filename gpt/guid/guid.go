// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package guid converts between the opaque 16-byte GUID arrays the gpt
// package's codec passes through unchanged and github.com/google/uuid's
// big-endian UUID type, applying the Microsoft mixed-endian shuffle at
// the boundary. Nothing in this package participates in round-trip
// correctness of the codec itself; it exists purely for callers who want
// a printable or parseable GUID.
package guid

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// ToUUID converts an on-disk mixed-endian GUID array to a big-endian
// uuid.UUID.
func ToUUID(g [16]byte) (uuid.UUID, error) {
	var b [16]byte

	binary.BigEndian.PutUint32(b[0:4], binary.LittleEndian.Uint32(g[0:4]))
	binary.BigEndian.PutUint16(b[4:6], binary.LittleEndian.Uint16(g[4:6]))
	binary.BigEndian.PutUint16(b[6:8], binary.LittleEndian.Uint16(g[6:8]))
	copy(b[8:16], g[8:16])

	return uuid.FromBytes(b[:])
}

// FromUUID converts a big-endian uuid.UUID to an on-disk mixed-endian
// GUID array.
func FromUUID(u uuid.UUID) [16]byte {
	var g [16]byte

	binary.LittleEndian.PutUint32(g[0:4], binary.BigEndian.Uint32(u[0:4]))
	binary.LittleEndian.PutUint16(g[4:6], binary.BigEndian.Uint16(u[4:6]))
	binary.LittleEndian.PutUint16(g[6:8], binary.BigEndian.Uint16(u[6:8]))
	copy(g[8:16], u[8:16])

	return g
}

// New generates a fresh random GUID, ready to place directly into a
// Header.DiskGUID or Entry.UniquePartitionGUID field.
func New() [16]byte {
	return FromUUID(uuid.New())
}
