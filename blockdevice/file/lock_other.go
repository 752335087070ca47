//go:build !unix

package file

import "os"

// lockExclusive is a no-op on platforms without flock, mirroring the
// teacher's diskfs_other.go fallback for platforms lacking block-device ioctls.
func lockExclusive(f *os.File) error {
	return nil
}
