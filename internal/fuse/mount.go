//go:build !linux
// +build !linux

package fuse

import (
	"fmt"

	"github.com/ostafen/fatlens/internal/disk"
)

func Mount(mountpoint string, vol *disk.Volume) error {
	return fmt.Errorf("FUSE mount is only supported on Linux")
}
