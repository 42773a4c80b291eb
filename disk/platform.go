package disk

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	log "github.com/sirupsen/logrus"
)

// Platform discovers disks and writes staged tables back to them.
type Platform interface {
	// Enumerate returns at most max disks. It fails with ErrPermission when raw
	// device access is denied.
	Enumerate(max int) ([]*Disk, error)
	// WriteBack writes the staged table and new partition headers of d to the
	// device, then promotes the staged table.
	WriteBack(d *Disk) error
}

// device is an open block device or image file.
type device interface {
	io.ReadWriteSeeker
	io.Closer
}

// source lists and opens the devices of one backend.
type source interface {
	// candidates lists every path worth probing; Enumerate applies the limit.
	candidates() []string
	open(path string, write bool) (device, error)
	size(dev device) (uint64, error)
	name(path string) string
}

type rawPlatform struct {
	src source
}

// NewHostPlatform returns the platform backed by the machine's physical drives.
func NewHostPlatform() Platform {
	return &rawPlatform{src: hostSource{}}
}

// NewImagePlatform returns a platform whose disks are the given image files.
func NewImagePlatform(paths []string) Platform {
	return &rawPlatform{src: imageSource{paths: paths}}
}

func (rp *rawPlatform) Enumerate(max int) ([]*Disk, error) {
	var disks []*Disk
	for _, path := range rp.src.candidates() {
		if len(disks) >= max {
			break
		}
		d, err := rp.probe(path)
		switch {
		case errors.Is(err, ErrPermission):
			return nil, err
		case errors.Is(err, fs.ErrNotExist):
			continue
		case err != nil:
			log.WithError(err).WithField("disk", path).Warn("skipping disk")
			continue
		}
		disks = append(disks, d)
	}
	return disks, nil
}

func (rp *rawPlatform) probe(path string) (*Disk, error) {
	dev, err := rp.src.open(path, false)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s: %v", ErrPermission, path, err)
		}
		return nil, err
	}
	defer dev.Close()

	size, err := rp.src.size(dev)
	if err != nil {
		return nil, fmt.Errorf("get disk size: %w", err)
	}
	if size > MaxDiskSize {
		return nil, fmt.Errorf("%w: %d bytes > %d bytes", ErrTooLarge, size, uint64(MaxDiskSize))
	}

	var sec Sector
	hasMBR := false
	if n, err := io.ReadFull(dev, sec[:]); err == nil && n == SectorSize {
		hasMBR = HasSignature(&sec)
	}
	return NewDisk(rp.src.name(path), path, size, sec, hasMBR), nil
}

func (rp *rawPlatform) WriteBack(d *Disk) error {
	if !d.StagedHasMBR() {
		return ErrNoMBR
	}
	if !d.Dirty() {
		return ErrNoChanges
	}

	dev, err := rp.src.open(d.Path, true)
	if err != nil {
		return fmt.Errorf("could not open disk %s: %w", d.Name, err)
	}
	if err := writeStaged(dev, d); err != nil {
		_ = dev.Close()
		return err
	}
	if err := dev.Close(); err != nil {
		return fmt.Errorf("close disk %s: %w", d.Name, err)
	}
	return nil
}
