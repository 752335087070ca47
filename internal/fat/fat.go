// Package fat implements the FAT manager: the in-memory File Allocation
// Table, its (de)serialization, chain walking/extension, and chain freeing.
// Algorithms are grounded on the original ECS150FS fs.c's find_empty_fat,
// dataBlk_index, allocate_block and fs_delete's chain walk, generalized the
// way github.com/diskfs/go-diskfs/filesystem/fat32's table.go generalizes
// FAT12/16/32 entry widths into one table type.
package fat

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/mpgrau/ecs150fs/blockdevice"
)

// EOC is the end-of-chain sentinel. Entry 0 always holds it; it marks the
// reserved entry that is never part of any file's chain.
const EOC uint16 = 0xFFFF

const entrySize = 2 // bytes per FAT entry on disk

var (
	// ErrChainEnded is a non-error signal: a walk ran off the end of a chain
	// (hit EOC) before covering the requested number of links.
	ErrChainEnded = errors.New("fat: chain ended before requested offset")
	// ErrCorrupt is returned when a chain traversal exceeds the maximum
	// possible chain length without terminating, indicating a cycle.
	ErrCorrupt = errors.New("fat: cycle or corruption detected in chain")
)

// Table is the in-memory File Allocation Table.
type Table struct {
	entries       []uint16 // length numFATBlocks*(BlockSize/2); only [0,numDataBlocks) meaningful
	numDataBlocks uint16
	numFATBlocks  uint8
}

// Load reads numFATBlocks blocks starting at block 1 of dev into a Table
// covering numDataBlocks entries.
func Load(dev blockdevice.Device, numFATBlocks uint8, numDataBlocks uint16) (*Table, error) {
	entriesPerBlock := blockdevice.BlockSize / entrySize
	raw := make([]byte, int(numFATBlocks)*blockdevice.BlockSize)
	block := make([]byte, blockdevice.BlockSize)
	for i := 0; i < int(numFATBlocks); i++ {
		if err := dev.ReadBlock(1+i, block); err != nil {
			return nil, fmt.Errorf("fat: read block %d: %w", 1+i, err)
		}
		copy(raw[i*blockdevice.BlockSize:], block)
	}

	t := &Table{
		entries:       make([]uint16, int(numFATBlocks)*entriesPerBlock),
		numDataBlocks: numDataBlocks,
		numFATBlocks:  numFATBlocks,
	}
	for i := range t.entries {
		t.entries[i] = binary.LittleEndian.Uint16(raw[i*entrySize:])
	}

	if t.entries[0] != EOC {
		return nil, fmt.Errorf("%w: entry 0 is %#x, want %#x", ErrCorrupt, t.entries[0], EOC)
	}
	return t, nil
}

// Flush writes the in-memory table back to the numFATBlocks blocks starting at block 1.
func (t *Table) Flush(dev blockdevice.Device) error {
	block := make([]byte, blockdevice.BlockSize)
	entriesPerBlock := blockdevice.BlockSize / entrySize
	for i := 0; i < int(t.numFATBlocks); i++ {
		for j := 0; j < entriesPerBlock; j++ {
			idx := i*entriesPerBlock + j
			binary.LittleEndian.PutUint16(block[j*entrySize:], t.entries[idx])
		}
		if err := dev.WriteBlock(1+i, block); err != nil {
			return fmt.Errorf("fat: write block %d: %w", 1+i, err)
		}
	}
	return nil
}

// FreeCount returns the number of free entries in [1, numDataBlocks).
func (t *Table) FreeCount() int {
	count := 0
	for i := uint16(1); i < t.numDataBlocks; i++ {
		if t.entries[i] == 0 {
			count++
		}
	}
	return count
}

// FindFree returns the lowest-indexed free entry in [1, numDataBlocks), or
// false if the table is full. Lowest-index-first is required by spec for
// deterministic, testable allocation.
func (t *Table) FindFree() (uint16, bool) {
	for i := uint16(1); i < t.numDataBlocks; i++ {
		if t.entries[i] == 0 {
			return i, true
		}
	}
	return 0, false
}

// Get returns the raw entry at index i.
func (t *Table) Get(i uint16) uint16 {
	return t.entries[i]
}

// SetEOC marks a previously free entry i as a new, one-block chain: the way
// the original fs_create sets fat[indexFirstBlock] = FAT_EOC before it has
// any continuation. Callers must only call this on an entry FindFree just
// returned.
func (t *Table) SetEOC(i uint16) {
	t.entries[i] = EOC
}

// Walk follows the chain starting at start, skipping byteOffset/BlockSize
// links, and returns the entry index reached. It returns ErrChainEnded if the
// chain's EOC is reached before enough links are followed, and ErrCorrupt if
// more than numDataBlocks links are followed without terminating.
func (t *Table) Walk(start uint16, byteOffset int64) (uint16, error) {
	links := byteOffset / blockdevice.BlockSize
	cur := start
	for i := int64(0); i < links; i++ {
		if int64(i) > int64(t.numDataBlocks) {
			return 0, ErrCorrupt
		}
		next := t.entries[cur]
		if next == EOC {
			return 0, ErrChainEnded
		}
		cur = next
	}
	return cur, nil
}

// Extend walks to the chain's tail (the entry holding EOC), allocates a free
// entry n, links fat[tail] = n and sets fat[n] = EOC. It returns false if the
// table has no free entry; extension then has no effect.
func (t *Table) Extend(start uint16) (uint16, bool, error) {
	tail, err := t.tailOf(start)
	if err != nil {
		return 0, false, err
	}
	n, ok := t.FindFree()
	if !ok {
		return 0, false, nil
	}
	t.entries[tail] = n
	t.entries[n] = EOC
	return n, true, nil
}

func (t *Table) tailOf(start uint16) (uint16, error) {
	cur := start
	for i := uint16(0); ; i++ {
		if i > t.numDataBlocks {
			return 0, ErrCorrupt
		}
		next := t.entries[cur]
		if next == EOC {
			return cur, nil
		}
		cur = next
	}
}

// FreeChain walks the chain starting at start, setting every visited entry
// (including the one holding EOC) to 0.
func (t *Table) FreeChain(start uint16) error {
	cur := start
	for i := uint16(0); ; i++ {
		if i > t.numDataBlocks {
			return ErrCorrupt
		}
		next := t.entries[cur]
		t.entries[cur] = 0
		if next == EOC {
			return nil
		}
		cur = next
	}
}

// ChainLength returns the number of blocks in the chain starting at start,
// counting start itself.
func (t *Table) ChainLength(start uint16) (int, error) {
	n := 0
	cur := start
	for {
		if n > int(t.numDataBlocks) {
			return 0, ErrCorrupt
		}
		n++
		next := t.entries[cur]
		if next == EOC {
			return n, nil
		}
		cur = next
	}
}
