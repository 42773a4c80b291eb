//go:build darwin

package disk

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	dkiocGetBlockSize  = 0x40046418 // _IOR('d', 24, uint32)
	dkiocGetBlockCount = 0x40086419 // _IOR('d', 25, uint64)
)

// hostSource probes the raw disk nodes /dev/rdisk1 onwards. disk0 is the boot drive.
type hostSource struct{}

func (hostSource) candidates() []string {
	paths := make([]string, 0, maxHostDevices)
	for i := 1; i <= maxHostDevices; i++ {
		paths = append(paths, fmt.Sprintf("/dev/rdisk%d", i))
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

func (hostSource) size(dev device) (uint64, error) {
	f, ok := dev.(*os.File)
	if !ok {
		return seekSize(dev)
	}
	var blockSize uint32
	var blockCount uint64
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), dkiocGetBlockSize, uintptr(unsafe.Pointer(&blockSize)))
	if errno != 0 {
		return 0, fmt.Errorf("cannot get block size: %w", errno)
	}
	_, _, errno = unix.Syscall(unix.SYS_IOCTL, f.Fd(), dkiocGetBlockCount, uintptr(unsafe.Pointer(&blockCount)))
	if errno != 0 {
		return 0, fmt.Errorf("cannot get block count: %w", errno)
	}
	return uint64(blockSize) * blockCount, nil
}

func (hostSource) name(path string) string {
	return path
}
