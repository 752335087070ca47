// Command ecs150fs is a small demonstration harness for the ecs150fs
// package: each subcommand opens an image file, mounts it, performs one
// operation, and unmounts.
package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/mpgrau/ecs150fs/cmd/ecs150fs/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logrus.WithError(err).Error("ecs150fs: command failed")
		os.Exit(1)
	}
}
