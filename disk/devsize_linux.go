//go:build linux

package disk

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// hostSource probes the SCSI/SATA/USB disks /dev/sda to /dev/sdz.
type hostSource struct{}

func (hostSource) candidates() []string {
	var paths []string
	for c := 'a'; c <= 'z'; c++ {
		paths = append(paths, fmt.Sprintf("/dev/sd%c", c))
	}
	return paths
}

func (hostSource) open(path string, write bool) (device, error) {
	flag := os.O_RDONLY
	if write {
		flag = os.O_WRONLY
	}
	return os.OpenFile(path, flag, 0)
}

// size asks the kernel with BLKGETSIZE64 and falls back to seeking for regular files.
func (hostSource) size(dev device) (uint64, error) {
	f, ok := dev.(*os.File)
	if !ok {
		return seekSize(dev)
	}
	var size uint64
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.BLKGETSIZE64, uintptr(unsafe.Pointer(&size)))
	if errno != 0 {
		if st, err := f.Stat(); err == nil && st.Mode().IsRegular() {
			return seekSize(f)
		}
		return 0, fmt.Errorf("cannot determine device size: %w", errno)
	}
	return size, nil
}

func (hostSource) name(path string) string {
	return path
}
