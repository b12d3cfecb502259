// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gpt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siderolabs/go-gpt/gpt"
)

func TestDisplayAttributeBitsFixedBits(t *testing.T) {
	bits := uint64(1<<gpt.AttributeRequiredPartition | 1<<gpt.AttributeLegacyBIOSBootable)

	display := gpt.DisplayAttributeBits(bits, [16]byte{})
	require.Equal(t, "0:RequiredPartition,2:LegacyBIOSBootable", display)
}

func TestDisplayAttributeBitsBasicDataPartition(t *testing.T) {
	bits := uint64(1<<60 | 1<<62)

	display := gpt.DisplayAttributeBits(bits, gpt.BasicDataPartitionGUID)
	require.Equal(t, "60:ReadOnly,62:Hidden", display)
}

func TestDisplayAttributeBitsUnknownTypeFallsBackToNumber(t *testing.T) {
	bits := uint64(1 << 60)

	display := gpt.DisplayAttributeBits(bits, [16]byte{0x01})
	require.Equal(t, "60", display)
}
