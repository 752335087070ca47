package ecs150fs_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpgrau/ecs150fs"
	"github.com/mpgrau/ecs150fs/blockdevice"
	"github.com/mpgrau/ecs150fs/blockdevice/memdevice"
	"github.com/mpgrau/ecs150fs/internal/fat"
	"github.com/mpgrau/ecs150fs/internal/superblock"
)

// newFormattedDevice builds an in-memory device with a valid superblock, a
// freshly initialized FAT (entry 0 = EOC) and an empty root directory, the
// minimum a FileSystem needs to Mount successfully.
func newFormattedDevice(t *testing.T, numBlocks int, numFATBlocks uint8) *memdevice.Device {
	t.Helper()
	dev := memdevice.New(numBlocks)

	sb, err := superblock.Format(numBlocks, numFATBlocks)
	require.NoError(t, err)
	require.NoError(t, sb.Flush(dev))

	fatBlock := make([]byte, blockdevice.BlockSize)
	binary.LittleEndian.PutUint16(fatBlock[0:2], fat.EOC)
	require.NoError(t, dev.WriteBlock(1, fatBlock))

	return dev
}

func TestCreateDeleteLifecycle(t *testing.T) {
	dev := newFormattedDevice(t, 16, 1)
	fsys, err := ecs150fs.Mount(dev)
	require.NoError(t, err)

	require.NoError(t, fsys.Create("hello.txt"))
	require.ErrorIs(t, fsys.Create("hello.txt"), ecs150fs.ErrNameExists)

	fd, err := fsys.Open("hello.txt")
	require.NoError(t, err)

	require.ErrorIs(t, fsys.Delete("hello.txt"), ecs150fs.ErrBusy)

	require.NoError(t, fsys.Close(fd))
	require.NoError(t, fsys.Delete("hello.txt"))
	require.ErrorIs(t, fsys.Delete("hello.txt"), ecs150fs.ErrNotFound)
}

func TestCreateRejectsInvalidNames(t *testing.T) {
	dev := newFormattedDevice(t, 16, 1)
	fsys, err := ecs150fs.Mount(dev)
	require.NoError(t, err)

	require.ErrorIs(t, fsys.Create(""), ecs150fs.ErrInvalidName)
	require.ErrorIs(t, fsys.Create("bad!name"), ecs150fs.ErrInvalidName)
}

func TestOpenLimitIsThirtyTwo(t *testing.T) {
	dev := newFormattedDevice(t, 64, 1)
	fsys, err := ecs150fs.Mount(dev)
	require.NoError(t, err)

	for i := 0; i < 32; i++ {
		name := string(rune('a' + i%26))
		if i >= 26 {
			name += string(rune('a' + i - 26))
		}
		require.NoError(t, fsys.Create(name))
		_, err := fsys.Open(name)
		require.NoError(t, err)
	}

	require.NoError(t, fsys.Create("overflow"))
	_, err = fsys.Open("overflow")
	require.ErrorIs(t, err, ecs150fs.ErrTooManyOpen)
}

func TestWriteReadRoundTripAcrossBlocks(t *testing.T) {
	dev := newFormattedDevice(t, 16, 1)
	fsys, err := ecs150fs.Mount(dev)
	require.NoError(t, err)

	require.NoError(t, fsys.Create("data.bin"))
	fd, err := fsys.Open("data.bin")
	require.NoError(t, err)

	payload := bytes.Repeat([]byte{0x5A}, blockdevice.BlockSize+10)
	n, err := fsys.Write(fd, payload)
	require.NoError(t, err)
	require.Equal(t, len(payload), n)

	require.NoError(t, fsys.Lseek(fd, 0))
	got := make([]byte, len(payload))
	n, err = fsys.Read(fd, got)
	require.NoError(t, err)
	require.Equal(t, len(payload), n)
	require.True(t, bytes.Equal(payload, got))

	size, err := fsys.Stat(fd)
	require.NoError(t, err)
	require.Equal(t, int64(len(payload)), size)
}

func TestReadAtOffsetCrossingBlockBoundary(t *testing.T) {
	dev := newFormattedDevice(t, 16, 1)
	fsys, err := ecs150fs.Mount(dev)
	require.NoError(t, err)

	require.NoError(t, fsys.Create("straddle.bin"))
	fd, err := fsys.Open("straddle.bin")
	require.NoError(t, err)

	payload := make([]byte, blockdevice.BlockSize+20)
	for i := range payload {
		payload[i] = byte(i)
	}
	_, err = fsys.Write(fd, payload)
	require.NoError(t, err)

	require.NoError(t, fsys.Lseek(fd, blockdevice.BlockSize-5))
	buf := make([]byte, 10)
	n, err := fsys.Read(fd, buf)
	require.NoError(t, err)
	require.Equal(t, 10, n)
	require.True(t, bytes.Equal(payload[blockdevice.BlockSize-5:blockdevice.BlockSize+5], buf))
}

func TestReadPastEndOfFileReturnsZero(t *testing.T) {
	dev := newFormattedDevice(t, 16, 1)
	fsys, err := ecs150fs.Mount(dev)
	require.NoError(t, err)

	require.NoError(t, fsys.Create("empty.bin"))
	fd, err := fsys.Open("empty.bin")
	require.NoError(t, err)

	n, err := fsys.Read(fd, make([]byte, 10))
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestWriteStopsShortWhenDiskFull(t *testing.T) {
	// 1 FAT block addresses up to 2048 data blocks; shrink the device to a
	// handful of data blocks so the FAT runs out quickly.
	dev := newFormattedDevice(t, 6, 1) // sb: blk0, fat blk1, root blk2, data blk3..5 (3 data blocks)
	fsys, err := ecs150fs.Mount(dev)
	require.NoError(t, err)

	require.NoError(t, fsys.Create("big.bin"))
	fd, err := fsys.Open("big.bin")
	require.NoError(t, err)

	payload := bytes.Repeat([]byte{0x7}, blockdevice.BlockSize*5)
	n, err := fsys.Write(fd, payload)
	require.NoError(t, err)
	require.Less(t, n, len(payload))

	size, err := fsys.Stat(fd)
	require.NoError(t, err)
	require.Equal(t, int64(n), size)
}

func TestUnmountFailsWithOpenDescriptor(t *testing.T) {
	dev := newFormattedDevice(t, 16, 1)
	fsys, err := ecs150fs.Mount(dev)
	require.NoError(t, err)

	require.NoError(t, fsys.Create("f"))
	_, err = fsys.Open("f")
	require.NoError(t, err)

	require.ErrorIs(t, fsys.Unmount(), ecs150fs.ErrBusy)
}

func TestInfoAndLsFormat(t *testing.T) {
	dev := newFormattedDevice(t, 16, 1)
	fsys, err := ecs150fs.Mount(dev)
	require.NoError(t, err)
	require.NoError(t, fsys.Create("readme.txt"))

	var info bytes.Buffer
	require.NoError(t, fsys.Info(&info))
	require.Contains(t, info.String(), "total_blk_count=16\n")
	require.Contains(t, info.String(), "fat_blk_count=1\n")

	var ls bytes.Buffer
	require.NoError(t, fsys.Ls(&ls))
	require.Contains(t, ls.String(), "file: readme.txt, size: 0, data_blk:")
}
