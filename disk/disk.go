// Package disk models the MBR partition table of small block devices and the
// staged edits made to it before they are written back.
package disk

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB

	// MaxDiskSize is the largest device accepted. LBA fields are 32-bit sector
	// counts and the target media are small.
	MaxDiskSize = 32 * GiB
)

// Partition is one of the four MBR slots.
type Partition struct {
	Active   bool
	Type     byte
	StartLBA uint32
	Sectors  uint32

	// payload holds the formatted leading bytes of a newly allocated partition
	// until they are written to the device.
	payload []byte
}

// Payload returns the bytes still waiting to be written at StartLBA.
func (p Partition) Payload() []byte {
	return p.payload
}

// EndLBA returns the first sector after the partition.
func (p Partition) EndLBA() uint64 {
	return uint64(p.StartLBA) + uint64(p.Sectors)
}

// SizeBytes returns the partition size in bytes.
func (p Partition) SizeBytes() uint64 {
	return uint64(p.Sectors) * SectorSize
}

type table struct {
	mbr   Sector
	parts [MaxParts]Partition
}

// mirror returns a copy of t without payloads, so that the two tables never share buffers.
func (t *table) mirror() table {
	c := *t
	for i := range c.parts {
		c.parts[i].payload = nil
	}
	return c
}

// Disk is one block device (or image file) and its committed and staged partition tables.
type Disk struct {
	Name      string
	Path      string
	SizeBytes uint64
	Valid     bool
	HasMBR    bool

	committed table
	staged    table
	freeSlot  int
	dirty     bool
}

// NewDisk builds a disk record from the boot sector read during enumeration and parses it.
func NewDisk(name, path string, size uint64, sec Sector, hasMBR bool) *Disk {
	d := &Disk{
		Name:      name,
		Path:      path,
		SizeBytes: size,
		Valid:     size <= MaxDiskSize,
		HasMBR:    hasMBR,
	}
	d.committed.mbr = sec
	d.Parse()
	return d
}

// Parse decodes the committed boot sector and resets the staged copy to it.
func (d *Disk) Parse() {
	for i := range d.committed.parts {
		if d.HasMBR {
			d.committed.parts[i] = DecodeEntry(&d.committed.mbr, i)
		} else {
			d.committed.parts[i] = Partition{}
		}
	}
	d.dirty = false
	d.staged = d.committed.mirror()
	d.freeSlot = d.findFreeSlot()
}

func (d *Disk) findFreeSlot() int {
	for i := range d.staged.parts {
		if !d.staged.parts[i].Active {
			return i
		}
	}
	return -1
}

// Label is the human readable name shown in disk lists, starred while changes are pending.
func (d *Disk) Label() string {
	mark := " "
	if d.dirty {
		mark = "*"
	}
	return fmt.Sprintf("%s%s (%s)", mark, d.Name, FormatSize(d.SizeBytes))
}

// SizeSectors returns the disk size in sectors.
func (d *Disk) SizeSectors() uint32 {
	return uint32(d.SizeBytes / SectorSize)
}

// Dirty reports whether the staged table differs from the committed one.
func (d *Disk) Dirty() bool {
	return d.dirty
}

// FreeSlot returns the first inactive staged slot, or -1 when all four are used.
func (d *Disk) FreeSlot() int {
	return d.freeSlot
}

// MBR returns a copy of the committed boot sector.
func (d *Disk) MBR() Sector {
	return d.committed.mbr
}

// StagedMBR returns a copy of the staged boot sector.
func (d *Disk) StagedMBR() Sector {
	return d.staged.mbr
}

// Partitions returns the committed slots.
func (d *Disk) Partitions() [MaxParts]Partition {
	return d.committed.mirror().parts
}

// StagedPartitions returns the staged slots. Payloads are shared with the disk
// and must not be modified.
func (d *Disk) StagedPartitions() [MaxParts]Partition {
	return d.staged.parts
}

// StagedHasMBR reports whether the staged boot sector carries a valid signature.
func (d *Disk) StagedHasMBR() bool {
	return HasSignature(&d.staged.mbr)
}

func (d *Disk) logger() *log.Entry {
	return log.WithField("disk", d.Name)
}
