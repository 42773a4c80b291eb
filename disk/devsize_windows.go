//go:build windows

package disk

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	ioctlDiskGetLengthInfo = 0x0007405C
	fileFlagWriteThrough   = 0x80000000
)

// hostSource probes \\.\PhysicalDrive0 onwards.
type hostSource struct{}

func (hostSource) candidates() []string {
	paths := make([]string, 0, maxHostDevices)
	for i := 0; i < maxHostDevices; i++ {
		paths = append(paths, fmt.Sprintf(`\\.\PhysicalDrive%d`, i))
	}
	return paths
}

func (hostSource) open(path string, write bool) (device, error) {
	access := uint32(windows.GENERIC_READ)
	var flags uint32
	if write {
		access = windows.GENERIC_WRITE
		flags = fileFlagWriteThrough
	}
	h, err := windows.CreateFile(
		windows.StringToUTF16Ptr(path),
		access,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		flags,
		0,
	)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return os.NewFile(uintptr(h), path), nil
}

func (hostSource) size(dev device) (uint64, error) {
	f, ok := dev.(*os.File)
	if !ok {
		return seekSize(dev)
	}
	var length int64
	var returned uint32
	err := windows.DeviceIoControl(
		windows.Handle(f.Fd()),
		ioctlDiskGetLengthInfo,
		nil, 0,
		(*byte)(unsafe.Pointer(&length)), uint32(unsafe.Sizeof(length)),
		&returned,
		nil,
	)
	if err != nil {
		return 0, fmt.Errorf("cannot determine device size: %w", err)
	}
	return uint64(length), nil
}

func (hostSource) name(path string) string {
	return path[len(`\\.\`):]
}
