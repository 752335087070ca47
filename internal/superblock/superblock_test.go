package superblock_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpgrau/ecs150fs/blockdevice/memdevice"
	"github.com/mpgrau/ecs150fs/internal/superblock"
)

func TestFormatProducesValidSuperblock(t *testing.T) {
	sb, err := superblock.Format(64, 1)
	require.NoError(t, err)
	require.Equal(t, uint16(64), sb.NumBlocks)
	require.Equal(t, uint16(2), sb.RootIndex)
	require.Equal(t, uint16(3), sb.DataIndex)
	require.Equal(t, uint16(61), sb.NumDataBlocks)
	require.NoError(t, sb.Validate(64))
}

func TestFormatRejectsGeometryThatLeavesNoData(t *testing.T) {
	_, err := superblock.Format(2, 1)
	require.Error(t, err)
}

func TestBytesRoundTripsPadding(t *testing.T) {
	sb, err := superblock.Format(64, 1)
	require.NoError(t, err)

	raw := sb.Bytes()
	for i := len(raw) - 10; i < len(raw); i++ {
		raw[i] = 0x42
	}
	reparsed, err := superblock.Parse(raw)
	require.NoError(t, err)

	flushed := reparsed.Bytes()
	for i := len(flushed) - 10; i < len(flushed); i++ {
		require.Equal(t, byte(0x42), flushed[i])
	}
}

func TestParseRejectsBadSignature(t *testing.T) {
	block := make([]byte, superblock.Size)
	copy(block, []byte("NOTECS15"))
	_, err := superblock.Parse(block)
	require.ErrorIs(t, err, superblock.ErrBadSignature)
}

func TestLoadRejectsMismatchedBlockCount(t *testing.T) {
	sb, err := superblock.Format(64, 1)
	require.NoError(t, err)

	dev := memdevice.New(32) // deliberately wrong: sb says 64
	require.NoError(t, dev.WriteBlock(0, sb.Bytes()))

	_, err = superblock.Load(dev)
	require.ErrorIs(t, err, superblock.ErrBadGeometry)
}

func TestLoadAndFlushRoundTrip(t *testing.T) {
	sb, err := superblock.Format(64, 1)
	require.NoError(t, err)

	dev := memdevice.New(64)
	require.NoError(t, sb.Flush(dev))

	loaded, err := superblock.Load(dev)
	require.NoError(t, err)
	require.Equal(t, sb.NumBlocks, loaded.NumBlocks)
	require.Equal(t, sb.RootIndex, loaded.RootIndex)
	require.Equal(t, sb.DataIndex, loaded.DataIndex)
	require.Equal(t, sb.NumDataBlocks, loaded.NumDataBlocks)
	require.Equal(t, sb.NumFATBlocks, loaded.NumFATBlocks)
}
