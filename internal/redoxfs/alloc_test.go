// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package redoxfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatorDeallocateMerges(t *testing.T) {
	tests := []struct {
		name     string
		extents  []Extent
		expected []Extent
	}{
		{
			name:     "single",
			extents:  []Extent{{Index: 4, Count: 2}},
			expected: []Extent{{Index: 4, Count: 2}},
		},
		{
			name:     "adjacent after",
			extents:  []Extent{{Index: 4, Count: 2}, {Index: 6, Count: 3}},
			expected: []Extent{{Index: 4, Count: 5}},
		},
		{
			name:     "adjacent before",
			extents:  []Extent{{Index: 6, Count: 3}, {Index: 4, Count: 2}},
			expected: []Extent{{Index: 4, Count: 5}},
		},
		{
			name:     "gap kept",
			extents:  []Extent{{Index: 4, Count: 2}, {Index: 8, Count: 1}},
			expected: []Extent{{Index: 4, Count: 2}, {Index: 8, Count: 1}},
		},
		{
			name:     "bridge",
			extents:  []Extent{{Index: 2, Count: 2}, {Index: 6, Count: 2}, {Index: 4, Count: 2}},
			expected: []Extent{{Index: 2, Count: 6}},
		},
		{
			name:     "empty ignored",
			extents:  []Extent{{Index: 4, Count: 2}, {Index: 9, Count: 0}},
			expected: []Extent{{Index: 4, Count: 2}},
		},
		{
			name:     "contained does not shrink",
			extents:  []Extent{{Index: 0, Count: 10}, {Index: 2, Count: 3}},
			expected: []Extent{{Index: 0, Count: 10}},
		},
		{
			name:     "overlap before extends",
			extents:  []Extent{{Index: 0, Count: 5}, {Index: 3, Count: 4}},
			expected: []Extent{{Index: 0, Count: 7}},
		},
		{
			name:     "overlap after extends",
			extents:  []Extent{{Index: 3, Count: 4}, {Index: 0, Count: 5}},
			expected: []Extent{{Index: 0, Count: 7}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var alloc Allocator
			for _, extent := range tt.extents {
				alloc.Deallocate(extent)
			}

			assert.Equal(t, tt.expected, alloc.FreeExtents())
		})
	}
}

func TestAllocatorAllocate(t *testing.T) {
	tests := []struct {
		name        string
		extent      Extent
		expected    []Extent
		expectedErr error
	}{
		{
			name:     "whole extent",
			extent:   Extent{Index: 10, Count: 10},
			expected: []Extent{{Index: 30, Count: 10}},
		},
		{
			name:     "head",
			extent:   Extent{Index: 10, Count: 4},
			expected: []Extent{{Index: 14, Count: 6}, {Index: 30, Count: 10}},
		},
		{
			name:     "tail",
			extent:   Extent{Index: 16, Count: 4},
			expected: []Extent{{Index: 10, Count: 6}, {Index: 30, Count: 10}},
		},
		{
			name:     "middle splits",
			extent:   Extent{Index: 13, Count: 4},
			expected: []Extent{{Index: 10, Count: 3}, {Index: 17, Count: 3}, {Index: 30, Count: 10}},
		},
		{
			name:        "overlapping allocated",
			extent:      Extent{Index: 18, Count: 4},
			expectedErr: ErrBlocksNotFree,
		},
		{
			name:        "fully allocated",
			extent:      Extent{Index: 22, Count: 4},
			expectedErr: ErrBlocksNotFree,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var alloc Allocator
			alloc.Deallocate(Extent{Index: 10, Count: 10})
			alloc.Deallocate(Extent{Index: 30, Count: 10})

			err := alloc.Allocate(tt.extent)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, alloc.FreeExtents())
		})
	}
}

func TestAllocatorAllocateBlock(t *testing.T) {
	var alloc Allocator
	alloc.Deallocate(Extent{Index: 5, Count: 2})

	index, err := alloc.AllocateBlock()
	require.NoError(t, err)
	assert.EqualValues(t, 5, index)

	index, err = alloc.AllocateBlock()
	require.NoError(t, err)
	assert.EqualValues(t, 6, index)

	_, err = alloc.AllocateBlock()
	require.ErrorIs(t, err, ErrBlocksNotFree)
}

func TestAllocatorTrailingFree(t *testing.T) {
	var alloc Allocator
	alloc.Deallocate(Extent{Index: 2, Count: 3})
	alloc.Deallocate(Extent{Index: 10, Count: 6})

	tail, ok := alloc.TrailingFree(16)
	require.True(t, ok)
	assert.Equal(t, Extent{Index: 10, Count: 6}, tail)

	_, ok = alloc.TrailingFree(20)
	assert.False(t, ok)
}

func TestLogBlockRoundTrip(t *testing.T) {
	block := logBlock{
		next: 42,
		entries: []AllocEntry{
			{Index: 7, Count: 13},
			{Index: 100, Count: -3},
		},
	}

	var decoded logBlock
	require.NoError(t, decoded.unmarshal(block.marshal()))
	assert.Equal(t, block, decoded)
}
