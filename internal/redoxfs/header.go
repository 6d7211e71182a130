// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package redoxfs

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/c2h5oh/datasize"
)

const (
	// BlockSize is the allocation unit of the filesystem.
	BlockSize = 4096

	// BootloaderSize is the reserved region at the start of the image. It
	// precedes the filesystem area, so all block indices are relative to
	// [DataOffset].
	BootloaderSize = uint64(2 * datasize.MB)

	// DataOffset is the file offset of filesystem block 0.
	DataOffset = BootloaderSize

	headerVersion = 1
)

var headerMagic = [8]byte{'R', 'e', 'd', 'o', 'x', 'F', 'S', headerVersion}

// Header is the first block of the filesystem area. Size is the size of the
// filesystem area in bytes and AllocHead the block index of the first
// allocation log block, with 0 meaning an empty log.
type Header struct {
	Magic      [8]byte
	Size       uint64
	BlockSize  uint32
	_          uint32
	AllocHead  uint64
	Generation uint64
}

// MarshalBinary encodes the header into a full block.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.Grow(BlockSize)

	if err := binary.Write(buf, binary.LittleEndian, h); err != nil {
		return nil, err
	}

	block := make([]byte, BlockSize)
	copy(block, buf.Bytes())

	return block, nil
}

// UnmarshalBinary decodes and validates a header block.
func (h *Header) UnmarshalBinary(data []byte) error {
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, h); err != nil {
		return err
	}

	switch {
	case h.Magic != headerMagic:
		return fmt.Errorf("%w: bad magic %q", ErrCorrupted, h.Magic[:])
	case h.BlockSize != BlockSize:
		return fmt.Errorf("%w: block size %d", ErrCorrupted, h.BlockSize)
	case h.Size%BlockSize != 0:
		return fmt.Errorf("%w: size %d not block aligned", ErrCorrupted, h.Size)
	case h.Size/BlockSize < minBlocks:
		return fmt.Errorf("%w: size %d too small", ErrCorrupted, h.Size)
	}

	return nil
}

// Blocks returns the number of blocks in the filesystem area.
func (h *Header) Blocks() uint64 {
	return h.Size / BlockSize
}
