package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mpgrau/ecs150fs"
)

func defineCatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <image> <filename>",
		Short: "Print a file's contents to stdout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMount(args[0], func(fsys *ecs150fs.FileSystem) error {
				fd, err := fsys.Open(args[1])
				if err != nil {
					return err
				}
				defer fsys.Close(fd)

				buf := make([]byte, 4096)
				for {
					n, err := fsys.Read(fd, buf)
					if n > 0 {
						if _, werr := os.Stdout.Write(buf[:n]); werr != nil {
							return werr
						}
					}
					if err != nil {
						return err
					}
					if n == 0 {
						return nil
					}
				}
			})
		},
	}
}
