// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gpt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siderolabs/go-gpt/gpt"
)

func TestFindFreeSectorsOnEmptyDisk(t *testing.T) {
	table, _ := newFreshTable(t, gpt.WithAlign(1))

	runs := table.FindFreeSectors()
	require.Len(t, runs, 1)
	require.EqualValues(t, 34, runs[0].Start)
	require.EqualValues(t, 33, runs[0].Length)
}

func TestGetMaximumPartitionSizeOnEmptyDisk(t *testing.T) {
	table, _ := newFreshTable(t, gpt.WithAlign(1))

	size, err := table.GetMaximumPartitionSize()
	require.NoError(t, err)
	require.EqualValues(t, 33, size)
}

func TestGetMaximumPartitionSizeOnFullDisk(t *testing.T) {
	table, _ := newFreshTable(t, gpt.WithAlign(1))
	require.NoError(t, table.Set(1, usedEntry(34, 66)))

	_, err := table.GetMaximumPartitionSize()
	require.ErrorIs(t, err, gpt.ErrNoSpaceLeft)
}

func TestFindOptimalPlaceReturnsLowestSufficientLBA(t *testing.T) {
	table, _ := newFreshTable(t, gpt.WithAlign(1))
	require.NoError(t, table.Set(1, usedEntry(34, 40)))
	require.NoError(t, table.Set(2, usedEntry(50, 55)))

	// free runs: [41,49] length 9, [56,66] length 11
	lba, err := table.FindOptimalPlace(5)
	require.NoError(t, err)
	require.EqualValues(t, 41, lba)

	lba, err = table.FindOptimalPlace(10)
	require.NoError(t, err)
	require.EqualValues(t, 56, lba)

	_, err = table.FindOptimalPlace(100)
	require.ErrorIs(t, err, gpt.ErrNoSpaceLeft)
}

func TestFindOptimalPlaceRespectsAlignment(t *testing.T) {
	table, _ := newFreshTable(t, gpt.WithAlign(8))

	lba, err := table.FindOptimalPlace(4)
	require.NoError(t, err)
	require.Zero(t, lba%8)
	require.GreaterOrEqual(t, lba, table.Header.FirstUsableLBA)
}

func TestGetPartitionByteRange(t *testing.T) {
	table, _ := newFreshTable(t, gpt.WithAlign(1))
	require.NoError(t, table.Set(1, usedEntry(34, 40)))

	start, end, err := table.GetPartitionByteRange(1)
	require.NoError(t, err)
	require.EqualValues(t, 34*testSectorSize, start)
	require.EqualValues(t, 41*testSectorSize-1, end)
}

func TestGetPartitionByteRangeFailsForUnusedSlot(t *testing.T) {
	table, _ := newFreshTable(t, gpt.WithAlign(1))

	_, _, err := table.GetPartitionByteRange(1)
	require.Error(t, err)
}
