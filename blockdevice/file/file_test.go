package file_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpgrau/ecs150fs/blockdevice"
	"github.com/mpgrau/ecs150fs/blockdevice/file"
)

func makeImage(t *testing.T, numBlocks int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.fs")
	require.NoError(t, os.WriteFile(path, make([]byte, numBlocks*blockdevice.BlockSize), 0o644))
	return path
}

func TestOpenRejectsMisalignedSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.fs")
	require.NoError(t, os.WriteFile(path, make([]byte, blockdevice.BlockSize+1), 0o644))

	dev := file.New()
	err := dev.Open(path)
	require.Error(t, err)
}

func TestReadWriteBlockRoundTrip(t *testing.T) {
	path := makeImage(t, 4)
	dev := file.New()
	require.NoError(t, dev.Open(path))
	defer dev.Close()

	require.Equal(t, 4, dev.BlockCount())

	want := bytes.Repeat([]byte{0xAB}, blockdevice.BlockSize)
	require.NoError(t, dev.WriteBlock(2, want))

	got := make([]byte, blockdevice.BlockSize)
	require.NoError(t, dev.ReadBlock(2, got))
	require.Equal(t, want, got)
}

func TestReadWriteBlockRejectsBadSize(t *testing.T) {
	path := makeImage(t, 2)
	dev := file.New()
	require.NoError(t, dev.Open(path))
	defer dev.Close()

	require.Error(t, dev.WriteBlock(0, make([]byte, blockdevice.BlockSize-1)))
	require.Error(t, dev.ReadBlock(0, make([]byte, blockdevice.BlockSize+1)))
}

func TestReadWriteBlockBoundsChecked(t *testing.T) {
	path := makeImage(t, 2)
	dev := file.New()
	require.NoError(t, dev.Open(path))
	defer dev.Close()

	buf := make([]byte, blockdevice.BlockSize)
	require.Error(t, dev.ReadBlock(2, buf))
	require.Error(t, dev.WriteBlock(-1, buf))
}

func TestOpenTwiceInSameProcessFails(t *testing.T) {
	path := makeImage(t, 2)

	first := file.New()
	require.NoError(t, first.Open(path))
	defer first.Close()

	second := file.New()
	err := second.Open(path)
	if err == nil {
		t.Skip("advisory locking unsupported on this platform")
	}
}

var _ blockdevice.Device = (*file.Device)(nil)
