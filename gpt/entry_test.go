// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gpt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siderolabs/go-gpt/gpt"
)

func sampleEntry(name string, start, end uint64) *gpt.Entry {
	e := &gpt.Entry{
		StartingLBA:   start,
		EndingLBA:     end,
		AttributeBits: 1 << gpt.AttributeRequiredPartition,
		PartitionName: name,
	}
	e.PartitionTypeGUID[0] = 0xEB
	e.UniquePartitionGUID[0] = 0x01

	return e
}

func TestEntryIsUsed(t *testing.T) {
	used := sampleEntry("root", 34, 99)
	require.True(t, used.IsUsed())

	unused := &gpt.Entry{}
	require.False(t, unused.IsUsed())
}

func TestEntrySizeInSectors(t *testing.T) {
	e := sampleEntry("root", 34, 99)
	require.EqualValues(t, 66, e.SizeInSectors())
}

func TestEntriesRoundTrip(t *testing.T) {
	entries := []*gpt.Entry{
		sampleEntry("alpha", 34, 50),
		{},
		sampleEntry("beta", 51, 99),
	}

	encoded, err := gpt.EncodeEntries(entries, gpt.DefaultPartitionEntrySize)
	require.NoError(t, err)
	require.Len(t, encoded, 3*int(gpt.DefaultPartitionEntrySize))

	decoded, err := gpt.DecodeEntries(encoded, 3, gpt.DefaultPartitionEntrySize)
	require.NoError(t, err)
	require.Len(t, decoded, 3)

	require.True(t, decoded[0].IsUsed())
	require.Equal(t, "alpha", decoded[0].PartitionName)
	require.Equal(t, uint64(34), decoded[0].StartingLBA)
	require.Equal(t, uint64(50), decoded[0].EndingLBA)

	require.False(t, decoded[1].IsUsed())

	require.True(t, decoded[2].IsUsed())
	require.Equal(t, "beta", decoded[2].PartitionName)

	reencoded, err := gpt.EncodeEntries(decoded, gpt.DefaultPartitionEntrySize)
	require.NoError(t, err)
	require.Equal(t, encoded, reencoded)
}

func TestEntryNameTooLongFails(t *testing.T) {
	long := make([]rune, 40)
	for i := range long {
		long[i] = 'x'
	}

	e := sampleEntry(string(long), 34, 50)

	_, err := gpt.EncodeEntries([]*gpt.Entry{e}, gpt.DefaultPartitionEntrySize)
	require.Error(t, err)
}
