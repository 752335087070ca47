package cli

import (
	"github.com/spf13/cobra"

	"github.com/mpgrau/ecs150fs"
)

func defineDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <image> <filename>",
		Short: "Delete a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMount(args[0], func(fsys *ecs150fs.FileSystem) error {
				return fsys.Delete(args[1])
			})
		},
	}
}
