// Package cli defines the ecs150fs command-line harness, one file per
// subcommand, grounded on github.com/ostafen/digler's cmd/cmd layout.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mpgrau/ecs150fs"
	"github.com/mpgrau/ecs150fs/blockdevice/file"
)

const appName = "ecs150fs"

// Execute runs the root command.
func Execute() error {
	root := &cobra.Command{
		Use:   appName,
		Short: appName + " - inspect and manipulate an ECS150FS disk image",
	}

	root.AddCommand(
		defineFormatCommand(),
		defineInfoCommand(),
		defineLsCommand(),
		defineCreateCommand(),
		defineDeleteCommand(),
		defineCatCommand(),
		defineWriteCommand(),
	)
	return root.Execute()
}

// withMount opens name, mounts it, runs fn, and always unmounts/closes
// afterward, the way each of the teacher's disk.Disk helpers open the
// backing file for the duration of one call.
func withMount(name string, fn func(fsys *ecs150fs.FileSystem) error) error {
	dev := file.New()
	if err := dev.Open(name); err != nil {
		return err
	}

	fsys, err := ecs150fs.Mount(dev)
	if err != nil {
		_ = dev.Close()
		return err
	}

	runErr := fn(fsys)

	if err := fsys.Unmount(); err != nil {
		_ = dev.Close()
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}
