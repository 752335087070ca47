// Package memdevice provides an in-memory blockdevice.Device for tests,
// adapted from the teacher's testhelper.FileImpl (a stub implementation of
// its util.File interface) to ecs150fs's block-oriented Device interface
// instead of an io.ReaderAt/io.WriterAt file stub.
package memdevice

import (
	"fmt"

	"github.com/mpgrau/ecs150fs/blockdevice"
)

// Device is a blockdevice.Device backed by plain in-memory byte slices.
type Device struct {
	blocks [][]byte
}

// New returns a Device with numBlocks zeroed blocks.
func New(numBlocks int) *Device {
	d := &Device{blocks: make([][]byte, numBlocks)}
	for i := range d.blocks {
		d.blocks[i] = make([]byte, blockdevice.BlockSize)
	}
	return d
}

// Open and Close are no-ops: a Device is usable from New onward and never
// closed, so Open never fails (not even when called twice) and BlockCount
// always reports the number of blocks the Device was created with.
func (d *Device) Open(string) error { return nil }
func (d *Device) Close() error      { return nil }
func (d *Device) BlockCount() int   { return len(d.blocks) }

func (d *Device) checkBlock(index int, buf []byte) error {
	if index < 0 || index >= len(d.blocks) {
		return fmt.Errorf("memdevice: block %d out of bounds [0,%d)", index, len(d.blocks))
	}
	if len(buf) != blockdevice.BlockSize {
		return fmt.Errorf("memdevice: buffer must be %d bytes, got %d", blockdevice.BlockSize, len(buf))
	}
	return nil
}

// ReadBlock copies block index into buf.
func (d *Device) ReadBlock(index int, buf []byte) error {
	if err := d.checkBlock(index, buf); err != nil {
		return err
	}
	copy(buf, d.blocks[index])
	return nil
}

// WriteBlock copies buf into block index.
func (d *Device) WriteBlock(index int, buf []byte) error {
	if err := d.checkBlock(index, buf); err != nil {
		return err
	}
	copy(d.blocks[index], buf)
	return nil
}

var _ blockdevice.Device = (*Device)(nil)
