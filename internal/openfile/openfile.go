// Package openfile implements the open-file table: a fixed 32-slot table
// mapping descriptors to a root directory entry index and a byte offset.
//
// Unlike the original ECS150FS fs.c, which both (a) grows an ever-increasing
// counter as the descriptor id and (b) indexes straight into the table with
// the raw descriptor value (so it only works because the counter happens to
// equal the slot index), Table returns an opaque Descriptor{slot,
// generation} and always resolves it through a reverse lookup by slot. This
// is the redesign spec.md §9 calls for.
package openfile

import "fmt"

// MaxOpen is the number of simultaneously open descriptors the table holds.
const MaxOpen = 32

var (
	ErrTooManyOpen    = fmt.Errorf("openfile: table is full (max %d)", MaxOpen)
	ErrBadDescriptor  = fmt.Errorf("openfile: descriptor is not open")
	ErrSeekOutOfRange = fmt.Errorf("openfile: offset is past end of file")
)

// Descriptor identifies one open file. It is only ever produced by Table.Open
// and should be treated as opaque by callers.
type Descriptor struct {
	slot       uint8
	generation uint32
}

type entry struct {
	used       bool
	generation uint32
	rootIndex  int
	offset     int64
}

// Table is the fixed-size open-file table for one mount.
type Table struct {
	nextGeneration uint32
	slots          [MaxOpen]entry
	count          int
}

// New returns an empty Table. seed lets the caller start the generation
// counter away from zero, so descriptors minted by this mount can never
// collide with descriptors a prior mount of the same process handed out
// (generalizing soypat-fat's FS.id mount-invalidation field).
func New(seed uint32) *Table {
	return &Table{nextGeneration: seed}
}

// Open allocates a slot for rootIndex at offset 0 and returns its descriptor.
func (t *Table) Open(rootIndex int) (Descriptor, error) {
	for i := range t.slots {
		if !t.slots[i].used {
			t.nextGeneration++
			gen := t.nextGeneration
			t.slots[i] = entry{used: true, generation: gen, rootIndex: rootIndex, offset: 0}
			t.count++
			return Descriptor{slot: uint8(i), generation: gen}, nil
		}
	}
	return Descriptor{}, ErrTooManyOpen
}

func (t *Table) find(d Descriptor) (*entry, error) {
	if int(d.slot) >= MaxOpen {
		return nil, ErrBadDescriptor
	}
	e := &t.slots[d.slot]
	if !e.used || e.generation != d.generation {
		return nil, ErrBadDescriptor
	}
	return e, nil
}

// Close releases d's slot.
func (t *Table) Close(d Descriptor) error {
	e, err := t.find(d)
	if err != nil {
		return err
	}
	*e = entry{}
	t.count--
	return nil
}

// RootIndex returns the root directory entry index d refers to.
func (t *Table) RootIndex(d Descriptor) (int, error) {
	e, err := t.find(d)
	if err != nil {
		return 0, err
	}
	return e.rootIndex, nil
}

// Offset returns d's current byte offset.
func (t *Table) Offset(d Descriptor) (int64, error) {
	e, err := t.find(d)
	if err != nil {
		return 0, err
	}
	return e.offset, nil
}

// SetOffset sets d's byte offset unconditionally (range-checking is the caller's job).
func (t *Table) SetOffset(d Descriptor, offset int64) error {
	e, err := t.find(d)
	if err != nil {
		return err
	}
	e.offset = offset
	return nil
}

// Seek validates offset against size and, if valid, sets d's offset to it.
func (t *Table) Seek(d Descriptor, offset, size int64) error {
	e, err := t.find(d)
	if err != nil {
		return err
	}
	if offset < 0 || offset > size {
		return ErrSeekOutOfRange
	}
	e.offset = offset
	return nil
}

// IsOpen reports whether any descriptor currently references rootIndex.
func (t *Table) IsOpen(rootIndex int) bool {
	for i := range t.slots {
		if t.slots[i].used && t.slots[i].rootIndex == rootIndex {
			return true
		}
	}
	return false
}

// Count returns the number of currently open descriptors.
func (t *Table) Count() int {
	return t.count
}
