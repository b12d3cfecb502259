// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gpt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siderolabs/go-gpt/gpt"
)

func TestResizeGrowsIntoAdjacentFreeSpace(t *testing.T) {
	table, _ := newFreshTable(t, gpt.WithAlign(1))
	require.NoError(t, table.Set(1, usedEntry(34, 40)))

	require.NoError(t, gpt.Resize(table, 1, 50))

	e, err := table.Get(1)
	require.NoError(t, err)
	require.EqualValues(t, 50, e.EndingLBA)
}

func TestResizeFailsWhenGrowthExceedsFreeSpace(t *testing.T) {
	table, _ := newFreshTable(t, gpt.WithAlign(1))
	require.NoError(t, table.Set(1, usedEntry(34, 40)))
	require.NoError(t, table.Set(2, usedEntry(50, 60)))

	err := gpt.Resize(table, 1, 55)
	require.ErrorIs(t, err, gpt.ErrNoSpaceLeft)

	e, err := table.Get(1)
	require.NoError(t, err)
	require.EqualValues(t, 40, e.EndingLBA)
}

func TestResizeShrinks(t *testing.T) {
	table, _ := newFreshTable(t, gpt.WithAlign(1))
	require.NoError(t, table.Set(1, usedEntry(34, 60)))

	require.NoError(t, gpt.Resize(table, 1, 45))

	e, err := table.Get(1)
	require.NoError(t, err)
	require.EqualValues(t, 45, e.EndingLBA)
}

func TestCopyPartitionPlacesIntoFreeSpace(t *testing.T) {
	src, _ := newFreshTable(t, gpt.WithAlign(1))
	require.NoError(t, src.Set(1, usedEntry(34, 40)))

	dst, _ := newFreshTable(t, gpt.WithAlign(1))

	dstIndex, err := gpt.CopyPartition(dst, src, 1)
	require.NoError(t, err)
	require.EqualValues(t, 1, dstIndex)

	copied, err := dst.Get(dstIndex)
	require.NoError(t, err)
	require.True(t, copied.IsUsed())
	require.EqualValues(t, 7, copied.SizeInSectors())
}
