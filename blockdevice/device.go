// Package blockdevice defines the block-oriented storage collaborator that
// the ECS150FS core is built on. It is treated as an external dependency: the
// core never reaches past this interface to touch a real file or device.
package blockdevice

// BlockSize is the fixed size, in bytes, of every block a Device addresses.
// ECS150FS does not support any other block size.
const BlockSize = 4096

// Device is a fixed-size-block storage backend. Block index is bounds-checked
// by the implementation; reads and writes are synchronous and all-or-nothing
// at block granularity.
type Device interface {
	// Open opens the named image. It fails if an image is already open or the
	// named image does not describe a whole number of BlockSize-sized blocks.
	Open(name string) error
	// Close closes the currently open image.
	Close() error
	// BlockCount reports the number of blocks in the open image, or -1 if no
	// image is open.
	BlockCount() int
	// ReadBlock reads block index into buf, which must be BlockSize bytes.
	ReadBlock(index int, buf []byte) error
	// WriteBlock writes buf, which must be BlockSize bytes, to block index.
	WriteBlock(index int, buf []byte) error
}
