package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpgrau/ecs150fs"
)

func defineWriteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "write <image> <filename>",
		Short: "Write stdin into a file, overwriting its contents from offset 0",
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
					n, rerr := os.Stdin.Read(buf)
					if n > 0 {
						if _, werr := fsys.Write(fd, buf[:n]); werr != nil {
							return werr
						}
					}
					if rerr == io.EOF {
						return nil
					}
					if rerr != nil {
						return rerr
					}
				}
			})
		},
	}
}
