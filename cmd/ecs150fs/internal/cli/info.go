package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mpgrau/ecs150fs"
)

func defineInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <image>",
		Short: "Print superblock and allocation info",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMount(args[0], func(fsys *ecs150fs.FileSystem) error {
				return fsys.Info(os.Stdout)
			})
		},
	}
}
