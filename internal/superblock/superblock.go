// Package superblock parses, validates and serializes the single metadata
// block (block 0) of an ECS150FS image.
package superblock

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/mpgrau/ecs150fs/blockdevice"
)

// Size is the on-disk size of the superblock: exactly one block.
const Size = blockdevice.BlockSize

const (
	signatureSize = 8
	headerSize    = signatureSize + 2 + 2 + 2 + 2 + 1 // sig + 4 uint16 + 1 uint8
	paddingSize   = Size - headerSize
)

// Signature is the required bit-exact magic at the start of block 0.
var Signature = [signatureSize]byte{'E', 'C', 'S', '1', '5', '0', 'F', 'S'}

var (
	// ErrBadSignature is returned by Parse when block 0 does not start with Signature.
	ErrBadSignature = errors.New("superblock: bad signature")
	// ErrBadGeometry is returned by Validate when the superblock's recorded
	// geometry is inconsistent with itself or with the underlying device.
	ErrBadGeometry = errors.New("superblock: inconsistent geometry")
)

// Superblock is the in-memory form of block 0.
type Superblock struct {
	NumBlocks     uint16
	RootIndex     uint16
	DataIndex     uint16
	NumDataBlocks uint16
	NumFATBlocks  uint8

	// padding holds the 4079 unspecified bytes verbatim, so a read-modify-write
	// round-trip preserves whatever a previous writer left there instead of
	// zeroing it, per spec's open question on padding preservation.
	padding [paddingSize]byte
}

// Parse decodes a raw BlockSize-byte block into a Superblock. It does not
// validate geometry; call Validate for that.
func Parse(block []byte) (*Superblock, error) {
	if len(block) != Size {
		return nil, fmt.Errorf("superblock: block must be %d bytes, got %d", Size, len(block))
	}
	if !bytes.Equal(block[:signatureSize], Signature[:]) {
		return nil, ErrBadSignature
	}

	sb := &Superblock{
		NumBlocks:     binary.LittleEndian.Uint16(block[8:10]),
		RootIndex:     binary.LittleEndian.Uint16(block[10:12]),
		DataIndex:     binary.LittleEndian.Uint16(block[12:14]),
		NumDataBlocks: binary.LittleEndian.Uint16(block[14:16]),
		NumFATBlocks:  block[16],
	}
	copy(sb.padding[:], block[headerSize:])
	return sb, nil
}

// Validate checks the cross-field and device-size invariants spec.md requires
// at mount time. deviceBlockCount is the block device's reported block count.
func (sb *Superblock) Validate(deviceBlockCount int) error {
	if int(sb.NumBlocks) != deviceBlockCount {
		return fmt.Errorf("%w: num_blocks=%d but device has %d blocks", ErrBadGeometry, sb.NumBlocks, deviceBlockCount)
	}
	if sb.RootIndex != uint16(sb.NumFATBlocks)+1 {
		return fmt.Errorf("%w: root_index=%d want %d", ErrBadGeometry, sb.RootIndex, uint16(sb.NumFATBlocks)+1)
	}
	if sb.DataIndex != sb.RootIndex+1 {
		return fmt.Errorf("%w: data_index=%d want %d", ErrBadGeometry, sb.DataIndex, sb.RootIndex+1)
	}
	if uint32(sb.NumFATBlocks)*(blockdevice.BlockSize/2) < uint32(sb.NumDataBlocks) {
		return fmt.Errorf("%w: %d FAT blocks cannot address %d data blocks", ErrBadGeometry, sb.NumFATBlocks, sb.NumDataBlocks)
	}
	return nil
}

// Bytes serializes the superblock back to a BlockSize-byte block, preserving
// the padding captured at Parse time (or left zero, for a freshly Formatted one).
func (sb *Superblock) Bytes() []byte {
	b := make([]byte, Size)
	copy(b[:signatureSize], Signature[:])
	binary.LittleEndian.PutUint16(b[8:10], sb.NumBlocks)
	binary.LittleEndian.PutUint16(b[10:12], sb.RootIndex)
	binary.LittleEndian.PutUint16(b[12:14], sb.DataIndex)
	binary.LittleEndian.PutUint16(b[14:16], sb.NumDataBlocks)
	b[16] = sb.NumFATBlocks
	copy(b[headerSize:], sb.padding[:])
	return b
}

// Format builds a fresh superblock for an image of numBlocks blocks whose FAT
// occupies numFATBlocks blocks. It supplements fs_make, the disk-formatting
// tool the original ECS150FS source ships alongside fs.c but which isn't part
// of the retrieved core sources; the layout it produces is the one §3 of the
// spec mandates (root directly after the FAT, data directly after root).
func Format(numBlocks int, numFATBlocks uint8) (*Superblock, error) {
	if numBlocks <= 0 || numBlocks > int(^uint16(0)) {
		return nil, fmt.Errorf("superblock: invalid block count %d", numBlocks)
	}
	root := uint16(numFATBlocks) + 1
	data := root + 1
	if int(data) >= numBlocks {
		return nil, fmt.Errorf("superblock: %d FAT blocks leave no room for data in a %d-block image", numFATBlocks, numBlocks)
	}
	sb := &Superblock{
		NumBlocks:     uint16(numBlocks),
		RootIndex:     root,
		DataIndex:     data,
		NumDataBlocks: uint16(numBlocks) - data,
		NumFATBlocks:  numFATBlocks,
	}
	if err := sb.Validate(numBlocks); err != nil {
		return nil, err
	}
	return sb, nil
}

// Load reads and parses block 0 from dev, validating its geometry against
// dev's reported block count.
func Load(dev blockdevice.Device) (*Superblock, error) {
	block := make([]byte, Size)
	if err := dev.ReadBlock(0, block); err != nil {
		return nil, fmt.Errorf("superblock: read block 0: %w", err)
	}
	sb, err := Parse(block)
	if err != nil {
		return nil, err
	}
	if err := sb.Validate(dev.BlockCount()); err != nil {
		return nil, err
	}
	return sb, nil
}

// Flush writes the superblock back to block 0.
func (sb *Superblock) Flush(dev blockdevice.Device) error {
	if err := dev.WriteBlock(0, sb.Bytes()); err != nil {
		return fmt.Errorf("superblock: write block 0: %w", err)
	}
	return nil
}
