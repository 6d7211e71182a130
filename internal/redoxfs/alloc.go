// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package redoxfs

import (
	"encoding/binary"
	"fmt"
	"slices"
)

// minBlocks is the smallest usable filesystem area: header block, one
// allocation log block and at least one data block.
const minBlocks = 3

// logEntriesPerBlock is the number of allocation entries a log block holds
// after its next pointer and entry count.
const logEntriesPerBlock = (BlockSize - 16) / 16

// Extent is a run of consecutive blocks.
type Extent struct {
	Index uint64
	Count uint64
}

// End returns the index of the first block after the extent.
func (e Extent) End() uint64 {
	return e.Index + e.Count
}

// AllocEntry is one record of the allocation log. A positive Count frees the
// extent starting at Index, a negative Count allocates it.
type AllocEntry struct {
	Index uint64
	Count int64
}

// Allocator tracks the free extents of a filesystem area. Extents are kept
// sorted by index and adjacent runs are merged.
type Allocator struct {
	free []Extent
}

// Replay applies one allocation log entry.
func (a *Allocator) Replay(entry AllocEntry) error {
	if entry.Count >= 0 {
		a.Deallocate(Extent{Index: entry.Index, Count: uint64(entry.Count)})
		return nil
	}

	return a.Allocate(Extent{Index: entry.Index, Count: uint64(-entry.Count)})
}

// Deallocate adds an extent to the free set.
func (a *Allocator) Deallocate(extent Extent) {
	if extent.Count == 0 {
		return
	}

	pos, _ := slices.BinarySearchFunc(a.free, extent, compareExtents)
	a.free = slices.Insert(a.free, pos, extent)

	// Merge with neighbors. Ends are compared with max so an overlapping
	// extent, as a corrupted log can produce, never shrinks the free set.
	if pos+1 < len(a.free) && a.free[pos].End() >= a.free[pos+1].Index {
		end := max(a.free[pos].End(), a.free[pos+1].End())
		a.free[pos].Count = end - a.free[pos].Index
		a.free = slices.Delete(a.free, pos+1, pos+2)
	}

	if pos > 0 && a.free[pos-1].End() >= a.free[pos].Index {
		end := max(a.free[pos-1].End(), a.free[pos].End())
		a.free[pos-1].Count = end - a.free[pos-1].Index
		a.free = slices.Delete(a.free, pos, pos+1)
	}
}

// Allocate removes an extent from the free set. The extent must be fully
// contained in a single free extent.
func (a *Allocator) Allocate(extent Extent) error {
	if extent.Count == 0 {
		return nil
	}

	for i, free := range a.free {
		if free.Index > extent.Index || free.End() < extent.End() {
			continue
		}

		before := Extent{Index: free.Index, Count: extent.Index - free.Index}
		after := Extent{Index: extent.End(), Count: free.End() - extent.End()}

		switch {
		case before.Count == 0 && after.Count == 0:
			a.free = slices.Delete(a.free, i, i+1)
		case before.Count == 0:
			a.free[i] = after
		case after.Count == 0:
			a.free[i] = before
		default:
			a.free[i] = before
			a.free = slices.Insert(a.free, i+1, after)
		}

		return nil
	}

	return fmt.Errorf("%w: extent %d+%d", ErrBlocksNotFree, extent.Index, extent.Count)
}

// AllocateBlock removes the lowest free block from the free set and returns
// its index.
func (a *Allocator) AllocateBlock() (uint64, error) {
	if len(a.free) == 0 {
		return 0, fmt.Errorf("%w: no free blocks", ErrBlocksNotFree)
	}

	index := a.free[0].Index
	if err := a.Allocate(Extent{Index: index, Count: 1}); err != nil {
		return 0, err
	}

	return index, nil
}

// FreeExtents returns a copy of the free set.
func (a *Allocator) FreeExtents() []Extent {
	return slices.Clone(a.free)
}

// FreeBlocks returns the total number of free blocks.
func (a *Allocator) FreeBlocks() uint64 {
	var total uint64
	for _, e := range a.free {
		total += e.Count
	}

	return total
}

// TrailingFree returns the free extent ending at the last block of the
// filesystem area, if there is one.
func (a *Allocator) TrailingFree(totalBlocks uint64) (Extent, bool) {
	if len(a.free) == 0 {
		return Extent{}, false
	}

	last := a.free[len(a.free)-1]
	if last.End() != totalBlocks {
		return Extent{}, false
	}

	return last, true
}

func (a *Allocator) clone() Allocator {
	return Allocator{free: slices.Clone(a.free)}
}

func compareExtents(a, b Extent) int {
	switch {
	case a.Index < b.Index:
		return -1
	case a.Index > b.Index:
		return 1
	default:
		return 0
	}
}

// logBlock is one block of the allocation log chain.
type logBlock struct {
	next    uint64
	entries []AllocEntry
}

func (b *logBlock) marshal() []byte {
	block := make([]byte, BlockSize)
	binary.LittleEndian.PutUint64(block[0:], b.next)
	binary.LittleEndian.PutUint32(block[8:], uint32(len(b.entries)))

	for i, entry := range b.entries {
		off := 16 + i*16
		binary.LittleEndian.PutUint64(block[off:], entry.Index)
		binary.LittleEndian.PutUint64(block[off+8:], uint64(entry.Count))
	}

	return block
}

func (b *logBlock) unmarshal(data []byte) error {
	b.next = binary.LittleEndian.Uint64(data[0:])
	count := binary.LittleEndian.Uint32(data[8:])

	if count > logEntriesPerBlock {
		return fmt.Errorf("%w: log block with %d entries", ErrCorrupted, count)
	}

	b.entries = make([]AllocEntry, count)
	for i := range b.entries {
		off := 16 + i*16
		b.entries[i] = AllocEntry{
			Index: binary.LittleEndian.Uint64(data[off:]),
			Count: int64(binary.LittleEndian.Uint64(data[off+8:])),
		}
	}

	return nil
}
