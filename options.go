package ecs150fs

import "github.com/sirupsen/logrus"

// MountOption configures a Mount call, the way disk.FilesystemSpec configures
// the teacher's disk.CreateFilesystemSpecial.
type MountOption func(*mountConfig)

type mountConfig struct {
	log *logrus.Logger
}

func newMountConfig(opts []MountOption) *mountConfig {
	cfg := &mountConfig{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithLogger overrides the logrus.Logger used for mount/unmount/create/delete
// diagnostics. The default is logrus.StandardLogger().
func WithLogger(l *logrus.Logger) MountOption {
	return func(cfg *mountConfig) {
		cfg.log = l
	}
}
