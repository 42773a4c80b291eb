package disk

import (
	"os"
	"path/filepath"
)

// imageSource exposes disk image files as disks.
type imageSource struct {
	paths []string
}

func (s imageSource) candidates() []string {
	return s.paths
}

func (s imageSource) open(path string, write bool) (device, error) {
	flag := os.O_RDONLY
	if write {
		flag = os.O_WRONLY
	}
	return os.OpenFile(path, flag, 0)
}

func (s imageSource) size(dev device) (uint64, error) {
	f, ok := dev.(*os.File)
	if !ok {
		return seekSize(dev)
	}
	st, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return uint64(st.Size()), nil
}

func (s imageSource) name(path string) string {
	return filepath.Base(path)
}
