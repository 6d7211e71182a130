// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package redoxfs

import (
	"fmt"
	"os"
)

// FileSystem is an open image file together with its replayed block
// accounting. It is not safe for concurrent use.
type FileSystem struct {
	file      *os.File
	path      string
	header    Header
	alloc     Allocator
	logBlocks []uint64
}

// Create initializes a new image at path with a reserved bootloader region
// followed by a filesystem area of size bytes, rounded down to a block
// multiple. An existing file at path is replaced.
func Create(path string, bootloader []byte, size uint64) (*FileSystem, error) {
	size -= size % BlockSize

	if uint64(len(bootloader)) > BootloaderSize {
		return nil, wrapErr(path, fmt.Errorf("%w: bootloader %d bytes exceeds reserved region",
			ErrImageTooSmall, len(bootloader)))
	}

	if size/BlockSize < minBlocks {
		return nil, wrapErr(path, fmt.Errorf("%w: %d bytes", ErrImageTooSmall, size))
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, wrapErr(path, err)
	}

	fs := &FileSystem{
		file: file,
		path: path,
		header: Header{
			Magic:     headerMagic,
			Size:      size,
			BlockSize: BlockSize,
		},
	}

	// Block 0 holds the header, the initial commit allocates the log.
	fs.alloc.Deallocate(Extent{Index: 1, Count: size/BlockSize - 1})

	if err := fs.init(bootloader); err != nil {
		_ = file.Close()
		return nil, wrapErr(path, err)
	}

	return fs, nil
}

func (fs *FileSystem) init(bootloader []byte) error {
	if err := fs.file.Truncate(int64(DataOffset + fs.header.Size)); err != nil {
		return err
	}

	if len(bootloader) > 0 {
		if _, err := fs.file.WriteAt(bootloader, 0); err != nil {
			return err
		}
	}

	return fs.commit(&Tx{fs: fs, alloc: fs.alloc.clone(), header: fs.header})
}

// Open reads the image at path and replays its allocation log.
func Open(path string) (*FileSystem, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, wrapErr(path, err)
	}

	fs := &FileSystem{file: file, path: path}

	if err := fs.load(); err != nil {
		_ = file.Close()
		return nil, wrapErr(path, err)
	}

	return fs, nil
}

func (fs *FileSystem) load() error {
	block, err := fs.readBlock(0)
	if err != nil {
		return err
	}

	if err := fs.header.UnmarshalBinary(block); err != nil {
		return err
	}

	info, err := fs.file.Stat()
	if err != nil {
		return err
	}

	if uint64(info.Size()) < DataOffset+fs.header.Size {
		return fmt.Errorf("%w: file smaller than filesystem area", ErrCorrupted)
	}

	return fs.replayLog()
}

func (fs *FileSystem) replayLog() error {
	seen := make(map[uint64]bool)

	for next := fs.header.AllocHead; next != 0; {
		if seen[next] || next >= fs.header.Blocks() {
			return fmt.Errorf("%w: bad log block %d", ErrCorrupted, next)
		}

		seen[next] = true
		fs.logBlocks = append(fs.logBlocks, next)

		data, err := fs.readBlock(next)
		if err != nil {
			return err
		}

		var block logBlock
		if err := block.unmarshal(data); err != nil {
			return err
		}

		for _, entry := range block.entries {
			if err := fs.alloc.Replay(entry); err != nil {
				return fmt.Errorf("%w: %w", ErrCorrupted, err)
			}
		}

		next = block.next
	}

	return nil
}

// Close closes the image file.
func (fs *FileSystem) Close() error {
	return fs.file.Close()
}

// Path returns the path of the image file.
func (fs *FileSystem) Path() string {
	return fs.path
}

// Size returns the size of the filesystem area in bytes.
func (fs *FileSystem) Size() uint64 {
	return fs.header.Size
}

// FreeBlocks returns the number of free blocks.
func (fs *FileSystem) FreeBlocks() uint64 {
	return fs.alloc.FreeBlocks()
}

// Tx runs fn with a transaction over the block accounting. If fn succeeds,
// the transaction is committed with a squashed allocation log. If fn fails,
// the on-disk state is untouched.
func (fs *FileSystem) Tx(fn func(*Tx) error) error {
	tx := &Tx{fs: fs, alloc: fs.alloc.clone(), header: fs.header}

	if err := fn(tx); err != nil {
		return err
	}

	if err := fs.commit(tx); err != nil {
		return wrapErr(fs.path, err)
	}

	return nil
}

// commit squashes the free set into a fresh log chain, links it from the
// header and syncs the file.
func (fs *FileSystem) commit(tx *Tx) error {
	// Blocks of the previous log return to the free set.
	for _, index := range fs.logBlocks {
		tx.alloc.Deallocate(Extent{Index: index, Count: 1})
	}

	logBlocks, entries, err := reserveLog(&tx.alloc)
	if err != nil {
		return err
	}

	for i, index := range logBlocks {
		block := logBlock{entries: entries[:min(len(entries), logEntriesPerBlock)]}
		entries = entries[len(block.entries):]

		if i+1 < len(logBlocks) {
			block.next = logBlocks[i+1]
		}

		if err := fs.writeBlock(index, block.marshal()); err != nil {
			return err
		}
	}

	tx.header.AllocHead = logBlocks[0]
	tx.header.Generation++

	data, err := tx.header.MarshalBinary()
	if err != nil {
		return err
	}

	if err := fs.writeBlock(0, data); err != nil {
		return err
	}

	if err := fs.file.Sync(); err != nil {
		return err
	}

	fs.header = tx.header
	fs.alloc = tx.alloc
	fs.logBlocks = logBlocks

	return nil
}

// reserveLog allocates blocks for the squashed log. Allocating the log
// blocks themselves changes the free set, so the count is iterated until it
// is stable.
func reserveLog(alloc *Allocator) ([]uint64, []AllocEntry, error) {
	needed := 1

	for {
		trial := alloc.clone()

		blocks := make([]uint64, 0, needed)
		for i := 0; i < needed; i++ {
			index, err := trial.AllocateBlock()
			if err != nil {
				return nil, nil, err
			}

			blocks = append(blocks, index)
		}

		extents := trial.FreeExtents()
		if fit := (len(extents) + logEntriesPerBlock - 1) / logEntriesPerBlock; fit > needed {
			needed = fit
			continue
		}

		entries := make([]AllocEntry, len(extents))
		for i, extent := range extents {
			entries[i] = AllocEntry{Index: extent.Index, Count: int64(extent.Count)}
		}

		*alloc = trial

		return blocks, entries, nil
	}
}

func (fs *FileSystem) readBlock(index uint64) ([]byte, error) {
	block := make([]byte, BlockSize)
	if _, err := fs.file.ReadAt(block, int64(DataOffset+index*BlockSize)); err != nil {
		return nil, err
	}

	return block, nil
}

func (fs *FileSystem) writeBlock(index uint64, data []byte) error {
	_, err := fs.file.WriteAt(data, int64(DataOffset+index*BlockSize))
	return err
}

func wrapErr(path string, err error) error {
	return &FilesystemError{Path: path, Err: err}
}

// Tx is a pending change to the block accounting.
type Tx struct {
	fs     *FileSystem
	alloc  Allocator
	header Header
}

// Allocate removes an extent from the free set.
func (tx *Tx) Allocate(extent Extent) error {
	return tx.alloc.Allocate(extent)
}

// Deallocate adds an extent to the free set.
func (tx *Tx) Deallocate(extent Extent) {
	tx.alloc.Deallocate(extent)
}

// SetSize changes the recorded size of the filesystem area.
func (tx *Tx) SetSize(size uint64) {
	tx.header.Size = size
}
