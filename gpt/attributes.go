// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gpt

import (
	"fmt"
	"strings"
)

// BasicDataPartitionGUID is the on-disk (mixed-endian, opaque) type GUID
// for the Microsoft Basic Data Partition, the only type whose bits
// 60-63 this package names (§12).
var BasicDataPartitionGUID = [16]byte{
	0xA2, 0xA0, 0xD0, 0xEB, 0xE5, 0xB9, 0x33, 0x44, 0x87, 0xC0, 0x68, 0xB6, 0xB7, 0x26, 0x99, 0xC7,
}

// DisplayAttributeBits renders the set bits of an entry's AttributeBits
// field as a comma-separated list of names. Bits 0-2 have fixed
// meanings; bits 48-63 are type-specific, and for the Basic Data
// Partition type the four highest bits are named. This is
// presentation-only and never participates in any invariant.
func DisplayAttributeBits(attributeBits uint64, typeGUID [16]byte) string {
	var names []string

	for bit := 0; bit < 64; bit++ {
		if attributeBits&(1<<uint(bit)) == 0 {
			continue
		}

		names = append(names, attributeBitName(bit, typeGUID))
	}

	return strings.Join(names, ",")
}

func attributeBitName(bit int, typeGUID [16]byte) string {
	switch bit {
	case AttributeRequiredPartition:
		return fmt.Sprintf("%d:RequiredPartition", bit)
	case AttributeNoBlockIOProtocol:
		return fmt.Sprintf("%d:NoBlockIOProtocol", bit)
	case AttributeLegacyBIOSBootable:
		return fmt.Sprintf("%d:LegacyBIOSBootable", bit)
	}

	if bit < 48 {
		return fmt.Sprintf("%d:Reserved", bit)
	}

	if typeGUID == BasicDataPartitionGUID {
		switch bit {
		case 60:
			return "60:ReadOnly"
		case 61:
			return "61:ShadowCopy"
		case 62:
			return "62:Hidden"
		case 63:
			return "63:NoDriveLetter"
		}
	}

	return fmt.Sprintf("%d", bit)
}
