package openfile_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpgrau/ecs150fs/internal/openfile"
)

func TestOpenReturnsDistinctDescriptorsForSameFile(t *testing.T) {
	tbl := openfile.New(0)
	a, err := tbl.Open(5)
	require.NoError(t, err)
	b, err := tbl.Open(5)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.True(t, tbl.IsOpen(5))
}

func TestOpenFailsWhenTableFull(t *testing.T) {
	tbl := openfile.New(0)
	for i := 0; i < openfile.MaxOpen; i++ {
		_, err := tbl.Open(i)
		require.NoError(t, err)
	}
	_, err := tbl.Open(999)
	require.ErrorIs(t, err, openfile.ErrTooManyOpen)
}

func TestCloseThenReuseDoesNotAliasStaleDescriptor(t *testing.T) {
	tbl := openfile.New(0)
	first, err := tbl.Open(1)
	require.NoError(t, err)
	require.NoError(t, tbl.Close(first))

	second, err := tbl.Open(1)
	require.NoError(t, err)

	// A descriptor from a slot's previous occupant must not resolve once the
	// slot has been reused, even though the slot index may repeat.
	_, err = tbl.RootIndex(first)
	require.ErrorIs(t, err, openfile.ErrBadDescriptor)

	idx, err := tbl.RootIndex(second)
	require.NoError(t, err)
	require.Equal(t, 1, idx)
}

func TestSeekValidatesRange(t *testing.T) {
	tbl := openfile.New(0)
	fd, err := tbl.Open(0)
	require.NoError(t, err)

	require.NoError(t, tbl.Seek(fd, 10, 20))
	off, err := tbl.Offset(fd)
	require.NoError(t, err)
	require.Equal(t, int64(10), off)

	require.Error(t, tbl.Seek(fd, 21, 20))
	require.Error(t, tbl.Seek(fd, -1, 20))
}

func TestCloseUnknownDescriptorFails(t *testing.T) {
	tbl := openfile.New(0)
	_, err := tbl.Open(0)
	require.NoError(t, err)

	err = tbl.Close(openfile.Descriptor{})
	require.ErrorIs(t, err, openfile.ErrBadDescriptor)
}

func TestCountTracksOpenAndClose(t *testing.T) {
	tbl := openfile.New(0)
	require.Equal(t, 0, tbl.Count())
	fd, err := tbl.Open(0)
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Count())
	require.NoError(t, tbl.Close(fd))
	require.Equal(t, 0, tbl.Count())
}
