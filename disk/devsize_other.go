//go:build !linux && !darwin && !windows

package disk

import (
	"fmt"
	"os"
	"runtime"
)

// hostSource has no raw disks to offer on this OS; use image files instead.
type hostSource struct{}

func (hostSource) candidates() []string { return nil }

func (hostSource) open(path string, _ bool) (device, error) {
	return nil, &os.PathError{Op: "open", Path: path, Err: fmt.Errorf("unsupported OS: %s", runtime.GOOS)}
}

func (hostSource) size(dev device) (uint64, error) { return seekSize(dev) }

func (hostSource) name(path string) string { return path }
