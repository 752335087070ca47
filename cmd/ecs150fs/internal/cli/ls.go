package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mpgrau/ecs150fs"
)

func defineLsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls <image>",
		Short: "List the files in the root directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMount(args[0], func(fsys *ecs150fs.FileSystem) error {
				return fsys.Ls(os.Stdout)
			})
		},
	}
}
