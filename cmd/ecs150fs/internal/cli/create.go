package cli

import (
	"github.com/spf13/cobra"

	"github.com/mpgrau/ecs150fs"
)

func defineCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <image> <filename>",
		Short: "Create a new, empty file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMount(args[0], func(fsys *ecs150fs.FileSystem) error {
				return fsys.Create(args[1])
			})
		},
	}
}
