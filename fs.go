// Package ecs150fs implements ECS150FS, a simple on-disk file system that
// stores files in a fixed-size image file as FAT-linked blocks under a single
// flat root directory.
//
// The package replaces the original source's global mounted-image state
// (static Superblock/FAT/root/file-descriptor tables) with a FileSystem value
// returned by Mount, per the redesign spec calls for: every operation is a
// method on that value, and nothing survives between one image's unmount and
// the next mount.
package ecs150fs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mpgrau/ecs150fs/blockdevice"
	"github.com/mpgrau/ecs150fs/internal/fat"
	"github.com/mpgrau/ecs150fs/internal/openfile"
	"github.com/mpgrau/ecs150fs/internal/rootdir"
	"github.com/mpgrau/ecs150fs/internal/superblock"
)

// Descriptor identifies a file opened with FileSystem.Open. It is opaque:
// callers must not assume anything about its representation.
type Descriptor = openfile.Descriptor

// FileSystem is a single mounted ECS150FS image.
type FileSystem struct {
	dev  blockdevice.Device
	sb   *superblock.Superblock
	fat  *fat.Table
	dir  *rootdir.Dir
	open *openfile.Table
	log  *logrus.Entry

	mounted bool
}

// Mount loads the superblock, FAT and root directory off dev (which must
// already be Open) and returns a FileSystem ready for operations.
func Mount(dev blockdevice.Device, opts ...MountOption) (*FileSystem, error) {
	const op = "Mount"
	cfg := newMountConfig(opts)

	mountID := uuid.New()
	log := cfg.log.WithField("mount_id", mountID.String())

	sb, err := superblock.Load(dev)
	if err != nil {
		log.WithError(err).Warn("mount: superblock load failed")
		return nil, translateMount(op, err)
	}

	ft, err := fat.Load(dev, sb.NumFATBlocks, sb.NumDataBlocks)
	if err != nil {
		log.WithError(err).Warn("mount: fat load failed")
		return nil, translateFat(op, err)
	}

	dir, err := rootdir.Load(dev, int(sb.RootIndex))
	if err != nil {
		log.WithError(err).Warn("mount: root directory load failed")
		return nil, newErr(op, KindIo, err)
	}

	// Seed the descriptor generation counter from the mount id so descriptors
	// minted under one mount of an image can never alias descriptors from a
	// previous mount of the same process, generalizing soypat-fat's
	// FS.id mount-invalidation field.
	seed := binary.LittleEndian.Uint32(mountID[:4])

	fsys := &FileSystem{
		dev:     dev,
		sb:      sb,
		fat:     ft,
		dir:     dir,
		open:    openfile.New(seed),
		log:     log,
		mounted: true,
	}
	log.WithFields(logrus.Fields{
		"num_blocks":      sb.NumBlocks,
		"num_data_blocks": sb.NumDataBlocks,
	}).Debug("mount: ok")
	return fsys, nil
}

func (fsys *FileSystem) checkMounted(op string) error {
	if fsys == nil || !fsys.mounted {
		return newErr(op, KindNotMounted, nil)
	}
	return nil
}

// Unmount flushes the superblock, FAT and root directory and closes the
// underlying block device. It fails if any descriptor is still open.
func (fsys *FileSystem) Unmount() error {
	const op = "Unmount"
	if err := fsys.checkMounted(op); err != nil {
		return err
	}
	if fsys.open.Count() > 0 {
		return newErr(op, KindBusy, fmt.Errorf("%d descriptor(s) still open", fsys.open.Count()))
	}

	if err := fsys.sb.Flush(fsys.dev); err != nil {
		return newErr(op, KindIo, err)
	}
	if err := fsys.fat.Flush(fsys.dev); err != nil {
		return newErr(op, KindIo, err)
	}
	if err := fsys.dir.Flush(fsys.dev, int(fsys.sb.RootIndex)); err != nil {
		return newErr(op, KindIo, err)
	}
	if err := fsys.dev.Close(); err != nil {
		return newErr(op, KindIo, err)
	}

	fsys.mounted = false
	fsys.log.Debug("unmount: ok")
	return nil
}

// Info writes total/FAT/root/data block counts and free ratios to w, the way
// the original fs_info prints to stdout. Format is part of the interface
// contract and must not change.
func (fsys *FileSystem) Info(w io.Writer) error {
	const op = "Info"
	if err := fsys.checkMounted(op); err != nil {
		return err
	}
	freeDir := 0
	for i := 0; i < rootdir.MaxEntries; i++ {
		if fsys.dir.Entry(i).Empty() {
			freeDir++
		}
	}
	free := fsys.fat.FreeCount()

	fmt.Fprintf(w, "FS Info:\n")
	fmt.Fprintf(w, "total_blk_count=%d\n", fsys.sb.NumBlocks)
	fmt.Fprintf(w, "fat_blk_count=%d\n", fsys.sb.NumFATBlocks)
	fmt.Fprintf(w, "rdir_blk=%d\n", fsys.sb.RootIndex)
	fmt.Fprintf(w, "data_blk=%d\n", fsys.sb.DataIndex)
	fmt.Fprintf(w, "data_blk_count=%d\n", fsys.sb.NumDataBlocks)
	fmt.Fprintf(w, "fat_free_ratio=%d/%d\n", free, fsys.sb.NumDataBlocks)
	fmt.Fprintf(w, "rdir_free_ratio=%d/%d\n", freeDir, rootdir.MaxEntries)
	return nil
}

// Ls writes each non-empty root entry to w, the way the original fs_ls prints
// to stdout. Format is part of the interface contract and must not change.
func (fsys *FileSystem) Ls(w io.Writer) error {
	const op = "Ls"
	if err := fsys.checkMounted(op); err != nil {
		return err
	}
	fmt.Fprintf(w, "FS Ls:\n")
	for i := 0; i < rootdir.MaxEntries; i++ {
		e := fsys.dir.Entry(i)
		if e.Empty() {
			continue
		}
		fmt.Fprintf(w, "file: %s, size: %d, data_blk: %d\n", e.NameString(), e.Size, e.FirstBlock)
	}
	return nil
}

// Create creates a new, empty file named name in the root directory.
func (fsys *FileSystem) Create(name string) error {
	const op = "Create"
	if err := fsys.checkMounted(op); err != nil {
		return err
	}
	if err := rootdir.ValidateName(name); err != nil {
		return translateRootdir(op, err)
	}
	if _, ok := fsys.dir.Lookup(name); ok {
		return translateRootdir(op, fmt.Errorf("%w: %q", rootdir.ErrNameExists, name))
	}
	idx, ok := fsys.dir.FindEmpty()
	if !ok {
		return translateRootdir(op, fmt.Errorf("%w", rootdir.ErrDirFull))
	}
	first, ok := fsys.fat.FindFree()
	if !ok {
		return newErr(op, KindIo, errors.New("no free data blocks to allocate initial block"))
	}
	fsys.fat.SetEOC(first)
	fsys.dir.Create(idx, name, first)
	fsys.log.WithField("name", name).Debug("create: ok")
	return nil
}

// Delete removes the file named name, freeing its FAT chain. It fails if the
// file does not exist or is currently open.
func (fsys *FileSystem) Delete(name string) error {
	const op = "Delete"
	if err := fsys.checkMounted(op); err != nil {
		return err
	}
	if err := rootdir.ValidateName(name); err != nil {
		return translateRootdir(op, err)
	}
	idx, ok := fsys.dir.Lookup(name)
	if !ok {
		return translateRootdir(op, fmt.Errorf("%w: %q", rootdir.ErrNotFound, name))
	}
	if fsys.open.IsOpen(idx) {
		return newErr(op, KindBusy, fmt.Errorf("%q is open", name))
	}
	e := fsys.dir.Entry(idx)
	if err := fsys.fat.FreeChain(e.FirstBlock); err != nil {
		return translateFat(op, err)
	}
	fsys.dir.Clear(idx)
	fsys.log.WithField("name", name).Debug("delete: ok")
	return nil
}

// Open opens name for reading and writing and returns a descriptor.
func (fsys *FileSystem) Open(name string) (Descriptor, error) {
	const op = "Open"
	if err := fsys.checkMounted(op); err != nil {
		return Descriptor{}, err
	}
	if err := rootdir.ValidateName(name); err != nil {
		return Descriptor{}, translateRootdir(op, err)
	}
	idx, ok := fsys.dir.Lookup(name)
	if !ok {
		return Descriptor{}, translateRootdir(op, fmt.Errorf("%w: %q", rootdir.ErrNotFound, name))
	}
	fd, err := fsys.open.Open(idx)
	if err != nil {
		return Descriptor{}, translateOpenfile(op, err)
	}
	return fd, nil
}

// Close closes fd.
func (fsys *FileSystem) Close(fd Descriptor) error {
	const op = "Close"
	if err := fsys.checkMounted(op); err != nil {
		return err
	}
	if err := fsys.open.Close(fd); err != nil {
		return translateOpenfile(op, err)
	}
	return nil
}

// Stat returns the current size of the file fd refers to.
func (fsys *FileSystem) Stat(fd Descriptor) (int64, error) {
	const op = "Stat"
	if err := fsys.checkMounted(op); err != nil {
		return 0, err
	}
	idx, err := fsys.open.RootIndex(fd)
	if err != nil {
		return 0, translateOpenfile(op, err)
	}
	return int64(fsys.dir.Entry(idx).Size), nil
}

// Lseek sets fd's offset, failing if offset is past the file's current size.
func (fsys *FileSystem) Lseek(fd Descriptor, offset int64) error {
	const op = "Lseek"
	if err := fsys.checkMounted(op); err != nil {
		return err
	}
	idx, err := fsys.open.RootIndex(fd)
	if err != nil {
		return translateOpenfile(op, err)
	}
	size := int64(fsys.dir.Entry(idx).Size)
	if err := fsys.open.Seek(fd, offset, size); err != nil {
		return translateOpenfile(op, err)
	}
	return nil
}
