// Package rootdir implements the root directory manager: the single block
// of 128 fixed-size directory entries, name validation, lookup, creation and
// deletion bookkeeping. Grounded on the entry-management style of
// github.com/diskfs/go-diskfs/filesystem/fat32's directory.go (createEntry,
// removeEntry, lookup-by-name), adapted to ECS150FS's flat, fixed-width,
// single-block directory (no long filenames, no subdirectories).
package rootdir

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/mpgrau/ecs150fs/blockdevice"
)

const (
	// MaxEntries is the number of fixed-size entries the root block holds.
	MaxEntries = 128
	// NameSize is the width, in bytes, of the null-terminated name field,
	// including the terminator.
	NameSize = 16
	// MaxNameLen is the longest name that fits with a terminator.
	MaxNameLen = NameSize - 1

	entrySize   = 32
	paddingSize = entrySize - NameSize - 4 - 2 // 10 bytes
)

// reservedChars mirrors the original valid_filename's bad_chars set.
const reservedChars = "!@%^*~|"

var (
	ErrInvalidName = errors.New("rootdir: invalid file name")
	ErrNameExists  = errors.New("rootdir: name already exists")
	ErrNotFound    = errors.New("rootdir: no such file")
	ErrDirFull     = errors.New("rootdir: directory is full")
)

// Entry is one 32-byte root directory entry.
type Entry struct {
	Name       [NameSize]byte
	Size       uint32
	FirstBlock uint16
	padding    [paddingSize]byte
}

// Empty reports whether the entry is unused.
func (e *Entry) Empty() bool {
	return e.Name[0] == 0
}

// NameString returns the entry's name as a Go string, stopping at the first NUL.
func (e *Entry) NameString() string {
	return nameString(e.Name[:])
}

func nameString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// ValidateName checks a candidate file name against spec.md §4.3: non-empty,
// fits in NameSize bytes with its terminator, and contains none of the
// reserved characters.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if len(name) > MaxNameLen {
		return fmt.Errorf("%w: %q longer than %d characters", ErrInvalidName, name, MaxNameLen)
	}
	if strings.ContainsAny(name, reservedChars) {
		return fmt.Errorf("%w: %q contains a reserved character", ErrInvalidName, name)
	}
	return nil
}

// Dir is the in-memory root directory block.
type Dir struct {
	entries [MaxEntries]Entry
}

// Load reads the root directory block at blockIndex from dev.
func Load(dev blockdevice.Device, blockIndex int) (*Dir, error) {
	block := make([]byte, blockdevice.BlockSize)
	if err := dev.ReadBlock(blockIndex, block); err != nil {
		return nil, fmt.Errorf("rootdir: read block %d: %w", blockIndex, err)
	}
	d := &Dir{}
	for i := 0; i < MaxEntries; i++ {
		off := i * entrySize
		e := &d.entries[i]
		copy(e.Name[:], block[off:off+NameSize])
		e.Size = binary.LittleEndian.Uint32(block[off+NameSize : off+NameSize+4])
		e.FirstBlock = binary.LittleEndian.Uint16(block[off+NameSize+4 : off+NameSize+6])
		copy(e.padding[:], block[off+NameSize+6:off+entrySize])
	}
	return d, nil
}

// Flush writes the root directory block back to blockIndex on dev.
func (d *Dir) Flush(dev blockdevice.Device, blockIndex int) error {
	block := make([]byte, blockdevice.BlockSize)
	for i := 0; i < MaxEntries; i++ {
		off := i * entrySize
		e := &d.entries[i]
		copy(block[off:off+NameSize], e.Name[:])
		binary.LittleEndian.PutUint32(block[off+NameSize:off+NameSize+4], e.Size)
		binary.LittleEndian.PutUint16(block[off+NameSize+4:off+NameSize+6], e.FirstBlock)
		copy(block[off+NameSize+6:off+entrySize], e.padding[:])
	}
	if err := dev.WriteBlock(blockIndex, block); err != nil {
		return fmt.Errorf("rootdir: write block %d: %w", blockIndex, err)
	}
	return nil
}

// Lookup returns the index of the entry named name, by full null-terminated
// equality (not the original's buggy strncmp-by-needle-length comparison,
// which let "file1" match an existing "file10" — spec.md §9 calls this out
// as a bug not to replicate).
func (d *Dir) Lookup(name string) (int, bool) {
	for i := range d.entries {
		if !d.entries[i].Empty() && d.entries[i].NameString() == name {
			return i, true
		}
	}
	return -1, false
}

// FindEmpty returns the lowest-indexed empty slot, or false if none remain.
func (d *Dir) FindEmpty() (int, bool) {
	for i := range d.entries {
		if d.entries[i].Empty() {
			return i, true
		}
	}
	return -1, false
}

// Entry returns a pointer to the entry at index i for the caller to inspect or mutate.
func (d *Dir) Entry(i int) *Entry {
	return &d.entries[i]
}

// Create installs a new entry named name at index i with the given first
// block, zero size. The caller is responsible for having validated name,
// checked for duplicates, and allocated firstBlock from the FAT beforehand;
// Create itself only performs the bookkeeping write.
func (d *Dir) Create(i int, name string, firstBlock uint16) {
	e := &d.entries[i]
	*e = Entry{}
	copy(e.Name[:], name)
	e.Size = 0
	e.FirstBlock = firstBlock
}

// Clear empties the entry at index i, the way the original fs_delete clears
// only name[0] rather than zeroing the whole entry.
func (d *Dir) Clear(i int) {
	d.entries[i].Name[0] = 0
}
