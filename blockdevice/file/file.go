// Package file backs a blockdevice.Device with a host file, generalizing the
// raw os.File wrapper in the teacher's backend/file package.
package file

import (
	"errors"
	"fmt"
	"os"

	"github.com/mpgrau/ecs150fs/blockdevice"
)

var errNotOpen = errors.New("blockdevice/file: no image open")

// Device is a blockdevice.Device backed by a plain host file.
type Device struct {
	f          *os.File
	blockCount int
}

// New returns an unopened Device.
func New() *Device {
	return &Device{}
}

// Open opens the named image file. The file must already exist and its size
// must be a multiple of blockdevice.BlockSize, mirroring the original
// block_disk_open's "size is not multiple of BLOCK_SIZE" check. On platforms
// that support it, Open takes an advisory exclusive lock on the file so a
// second process opening the same image concurrently fails cleanly instead of
// racing the first (spec.md's concurrency model leaves that case undefined;
// this turns it into an explicit error).
func (d *Device) Open(name string) error {
	if d.f != nil {
		return errors.New("blockdevice/file: image already open")
	}
	if name == "" {
		return errors.New("blockdevice/file: empty image name")
	}

	f, err := os.OpenFile(name, os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("blockdevice/file: open %s: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("blockdevice/file: stat %s: %w", name, err)
	}
	if info.Size()%blockdevice.BlockSize != 0 {
		f.Close()
		return fmt.Errorf("blockdevice/file: size %d of %s is not a multiple of %d", info.Size(), name, blockdevice.BlockSize)
	}

	if err := lockExclusive(f); err != nil {
		f.Close()
		return fmt.Errorf("blockdevice/file: %s: %w", name, err)
	}

	d.f = f
	d.blockCount = int(info.Size() / blockdevice.BlockSize)
	return nil
}

// Close closes the currently open image.
func (d *Device) Close() error {
	if d.f == nil {
		return errNotOpen
	}
	f := d.f
	d.f = nil
	d.blockCount = 0
	return f.Close()
}

// BlockCount reports the number of blocks in the open image, or -1 if none is open.
func (d *Device) BlockCount() int {
	if d.f == nil {
		return -1
	}
	return d.blockCount
}

func (d *Device) checkBlock(index int, buf []byte) error {
	if d.f == nil {
		return errNotOpen
	}
	if index < 0 || index >= d.blockCount {
		return fmt.Errorf("blockdevice/file: block %d out of bounds [0,%d)", index, d.blockCount)
	}
	if len(buf) != blockdevice.BlockSize {
		return fmt.Errorf("blockdevice/file: buffer must be %d bytes, got %d", blockdevice.BlockSize, len(buf))
	}
	return nil
}

// ReadBlock reads block index into buf.
func (d *Device) ReadBlock(index int, buf []byte) error {
	if err := d.checkBlock(index, buf); err != nil {
		return err
	}
	_, err := d.f.ReadAt(buf, int64(index)*blockdevice.BlockSize)
	if err != nil {
		return fmt.Errorf("blockdevice/file: read block %d: %w", index, err)
	}
	return nil
}

// WriteBlock writes buf to block index.
func (d *Device) WriteBlock(index int, buf []byte) error {
	if err := d.checkBlock(index, buf); err != nil {
		return err
	}
	_, err := d.f.WriteAt(buf, int64(index)*blockdevice.BlockSize)
	if err != nil {
		return fmt.Errorf("blockdevice/file: write block %d: %w", index, err)
	}
	return nil
}

// interface guard
var _ blockdevice.Device = (*Device)(nil)
