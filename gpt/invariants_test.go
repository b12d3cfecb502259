// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gpt_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siderolabs/go-gpt/gpt"
)

func usedEntry(start, end uint64) *gpt.Entry {
	e := &gpt.Entry{StartingLBA: start, EndingLBA: end}
	e.PartitionTypeGUID[0] = 0x01

	return e
}

func TestRefreshIsIdempotent(t *testing.T) {
	table, _ := newFreshTable(t)
	require.NoError(t, table.Set(1, usedEntry(34, 66)))

	require.NoError(t, gpt.Refresh(table))
	firstCRC := table.Header.HeaderCRC32
	firstEntriesCRC := table.Header.PartitionEntriesCRC32

	require.NoError(t, gpt.Refresh(table))
	require.Equal(t, firstCRC, table.Header.HeaderCRC32)
	require.Equal(t, firstEntriesCRC, table.Header.PartitionEntriesCRC32)
}

func TestValidateRejectsOutOfWindowEntry(t *testing.T) {
	table, _ := newFreshTable(t)
	require.NoError(t, table.Set(1, usedEntry(10, 20)))

	err := gpt.Validate(table)
	require.Error(t, err)
	require.True(t, errors.Is(err, gpt.ErrInvalidPartitionBoundaries))
}

func TestValidateRejectsEndBeforeStart(t *testing.T) {
	table, _ := newFreshTable(t)
	require.NoError(t, table.Set(1, usedEntry(50, 40)))

	err := gpt.Validate(table)
	require.Error(t, err)
	require.True(t, errors.Is(err, gpt.ErrInvalidPartitionBoundaries))
}

func TestValidateDetectsOverlap(t *testing.T) {
	table, _ := newFreshTable(t)
	require.NoError(t, table.Set(1, usedEntry(34, 50)))
	require.NoError(t, table.Set(2, usedEntry(40, 60)))

	err := gpt.Validate(table)
	require.Error(t, err)
	require.True(t, errors.Is(err, gpt.ErrPartitionOverlap))
}

func TestValidateAcceptsAdjacentNonOverlapping(t *testing.T) {
	table, _ := newFreshTable(t)
	require.NoError(t, table.Set(1, usedEntry(34, 50)))
	require.NoError(t, table.Set(2, usedEntry(51, 66)))

	require.NoError(t, gpt.Validate(table))
}
