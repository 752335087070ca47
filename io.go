package ecs150fs

import (
	"errors"

	"github.com/mpgrau/ecs150fs/blockdevice"
	"github.com/mpgrau/ecs150fs/internal/fat"
)

// physicalBlock converts a FAT chain entry index into the block device index
// that actually stores it: the data region starts at sb.DataIndex and a
// chain entry i holds data block i directly, mirroring the original fs.c's
// dataBlk_index (data_blk = sb.dataIndex + index, no further offset).
func (fsys *FileSystem) physicalBlock(chainIndex uint16) int {
	return int(fsys.sb.DataIndex) + int(chainIndex)
}

// Read copies up to len(buf) bytes from fd's current offset and advances the
// offset by the number of bytes copied.
func (fsys *FileSystem) Read(fd Descriptor, buf []byte) (int, error) {
	const op = "Read"
	if err := fsys.checkMounted(op); err != nil {
		return 0, err
	}
	if len(buf) == 0 {
		return 0, nil
	}

	idx, err := fsys.open.RootIndex(fd)
	if err != nil {
		return 0, translateOpenfile(op, err)
	}
	offset, err := fsys.open.Offset(fd)
	if err != nil {
		return 0, translateOpenfile(op, err)
	}
	entry := fsys.dir.Entry(idx)
	size := int64(entry.Size)

	remaining := len(buf)
	if avail := size - offset; avail < 0 {
		remaining = 0
	} else if int64(remaining) > avail {
		remaining = int(avail)
	}
	if remaining == 0 {
		return 0, nil
	}

	chainIndex, err := fsys.fat.Walk(entry.FirstBlock, offset)
	if err != nil {
		// offset <= size so the chain should cover it; treat as corruption.
		return 0, translateFat(op, err)
	}

	bounce := make([]byte, blockdevice.BlockSize)
	copied := 0
	curOffset := offset
	for remaining > 0 {
		left := int(curOffset % blockdevice.BlockSize)
		span := blockdevice.BlockSize - left
		if span > remaining {
			span = remaining
		}

		if err := fsys.dev.ReadBlock(fsys.physicalBlock(chainIndex), bounce); err != nil {
			return copied, newErr(op, KindIo, err)
		}
		n := copy(buf[copied:copied+span], bounce[left:left+span])

		copied += n
		remaining -= n
		curOffset += int64(n)

		if remaining == 0 {
			break
		}
		next := fsys.fat.Get(chainIndex)
		if next == fat.EOC {
			break
		}
		chainIndex = next
	}

	if err := fsys.open.SetOffset(fd, offset+int64(copied)); err != nil {
		return copied, translateOpenfile(op, err)
	}
	return copied, nil
}

// Write copies up to len(buf) bytes to fd's current offset, extending the
// file's FAT chain as needed, and advances the offset by the number of bytes
// actually written. The file's recorded size grows to the new offset when the
// write ends past the old size, and is otherwise left unchanged. A write may
// transfer fewer bytes than requested if the FAT runs out of free blocks;
// this is not reported as an error.
func (fsys *FileSystem) Write(fd Descriptor, buf []byte) (int, error) {
	const op = "Write"
	if err := fsys.checkMounted(op); err != nil {
		return 0, err
	}
	if len(buf) == 0 {
		return 0, nil
	}

	idx, err := fsys.open.RootIndex(fd)
	if err != nil {
		return 0, translateOpenfile(op, err)
	}
	offset, err := fsys.open.Offset(fd)
	if err != nil {
		return 0, translateOpenfile(op, err)
	}
	entry := fsys.dir.Entry(idx)

	chainIndex, walkErr := fsys.fat.Walk(entry.FirstBlock, offset)
	if walkErr != nil && !errors.Is(walkErr, fat.ErrChainEnded) {
		return 0, translateFat(op, walkErr)
	}
	diskFull := false

	bounce := make([]byte, blockdevice.BlockSize)
	remaining := len(buf)
	written := 0
	curOffset := offset

	for remaining > 0 {
		if walkErr != nil {
			// The chain doesn't yet reach curOffset: extend it one block at a
			// time until it does.
			n, ok, err := fsys.fat.Extend(entry.FirstBlock)
			if err != nil {
				return written, translateFat(op, err)
			}
			if !ok {
				diskFull = true
				break
			}
			chainIndex = n
			walkErr = nil
		}

		left := int(curOffset % blockdevice.BlockSize)
		span := blockdevice.BlockSize - left
		if span > remaining {
			span = remaining
		}

		if left != 0 || span != blockdevice.BlockSize {
			if err := fsys.dev.ReadBlock(fsys.physicalBlock(chainIndex), bounce); err != nil {
				return written, newErr(op, KindIo, err)
			}
			copy(bounce[left:left+span], buf[written:written+span])
			if err := fsys.dev.WriteBlock(fsys.physicalBlock(chainIndex), bounce); err != nil {
				return written, newErr(op, KindIo, err)
			}
		} else {
			copy(bounce, buf[written:written+span])
			if err := fsys.dev.WriteBlock(fsys.physicalBlock(chainIndex), bounce); err != nil {
				return written, newErr(op, KindIo, err)
			}
		}

		written += span
		remaining -= span
		curOffset += int64(span)

		if remaining == 0 {
			break
		}
		next := fsys.fat.Get(chainIndex)
		if next == fat.EOC {
			walkErr = fat.ErrChainEnded
			continue
		}
		chainIndex = next
	}

	_ = diskFull // partial writes are signaled by written < len(buf), not an error

	newOffset := offset + int64(written)
	if newOffset > int64(entry.Size) {
		entry.Size = uint32(newOffset)
	}
	if err := fsys.open.SetOffset(fd, newOffset); err != nil {
		return written, translateOpenfile(op, err)
	}
	return written, nil
}
