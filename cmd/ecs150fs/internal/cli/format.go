package cli

import (
	"encoding/binary"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mpgrau/ecs150fs/blockdevice"
	"github.com/mpgrau/ecs150fs/blockdevice/file"
	"github.com/mpgrau/ecs150fs/internal/fat"
	"github.com/mpgrau/ecs150fs/internal/superblock"
)

func defineFormatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "format <image> <num_blocks> <num_fat_blocks>",
		Short: "Create a new, empty ECS150FS image",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			numBlocks, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("num_blocks: %w", err)
			}
			numFATBlocks, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("num_fat_blocks: %w", err)
			}
			return formatImage(args[0], numBlocks, numFATBlocks)
		},
	}
}

// formatImage supplements fs_make, the disk-formatting tool shipped
// alongside the original fs.c but not part of the retrieved sources: it
// lays out a fresh image with a valid superblock, a FAT whose entry 0 is
// FAT_EOC, and an empty root directory.
func formatImage(name string, numBlocks, numFATBlocks int) error {
	sb, err := superblock.Format(numBlocks, uint8(numFATBlocks))
	if err != nil {
		return err
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := f.Truncate(int64(numBlocks) * blockdevice.BlockSize); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	dev := file.New()
	if err := dev.Open(name); err != nil {
		return err
	}
	defer dev.Close()

	if err := sb.Flush(dev); err != nil {
		return err
	}

	fatBlock := make([]byte, blockdevice.BlockSize)
	binary.LittleEndian.PutUint16(fatBlock[0:2], fat.EOC)
	if err := dev.WriteBlock(1, fatBlock); err != nil {
		return err
	}
	empty := make([]byte, blockdevice.BlockSize)
	for i := 1; i < numFATBlocks; i++ {
		if err := dev.WriteBlock(1+i, empty); err != nil {
			return err
		}
	}
	if err := dev.WriteBlock(int(sb.RootIndex), empty); err != nil {
		return err
	}
	return nil
}
