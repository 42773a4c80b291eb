package disk

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/diskfs/go-diskfs/partition/mbr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zealdisk/zealfs"
)

func TestEnumerateImages(t *testing.T) {
	sec := sectorWith(zealPart(2048, 128))
	withMBR := writeImage(t, 8*MiB, &sec)
	blank := writeImage(t, 4*MiB, nil)
	missing := filepath.Join(t.TempDir(), "missing.img")

	disks, err := NewImagePlatform([]string{withMBR, missing, blank}).Enumerate(DefaultMaxDisks)
	require.NoError(t, err)
	require.Len(t, disks, 2)

	d := disks[0]
	assert.Equal(t, "disk.img", d.Name)
	assert.Equal(t, withMBR, d.Path)
	assert.Equal(t, uint64(8*MiB), d.SizeBytes)
	assert.True(t, d.Valid)
	assert.True(t, d.HasMBR)
	assert.Equal(t, zealPart(2048, 128), d.Partitions()[0])

	assert.False(t, disks[1].HasMBR)
	assert.Equal(t, 0, disks[1].FreeSlot())
}

func TestEnumerateRespectsMax(t *testing.T) {
	a := writeImage(t, MiB, nil)
	b := writeImage(t, MiB, nil)
	disks, err := NewImagePlatform([]string{a, b}).Enumerate(1)
	require.NoError(t, err)
	assert.Len(t, disks, 1)
}

func TestEnumerateMissingDoesNotCountTowardsMax(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.img")
	present := writeImage(t, MiB, nil)

	disks, err := NewImagePlatform([]string{missing, present}).Enumerate(1)
	require.NoError(t, err)
	require.Len(t, disks, 1)
	assert.Equal(t, present, disks[0].Path)
}

func TestEnumerateSkipsLargeDisks(t *testing.T) {
	sec := BlankMBR()
	big := writeImage(t, MaxDiskSize+MiB, &sec)
	edge := writeImage(t, MaxDiskSize, &sec)

	disks, err := NewImagePlatform([]string{big, edge}).Enumerate(DefaultMaxDisks)
	require.NoError(t, err)
	require.Len(t, disks, 1)
	assert.Equal(t, edge, disks[0].Path)

	_, err = (&rawPlatform{src: imageSource{}}).probe(big)
	require.ErrorIs(t, err, ErrTooLarge)
	assert.Contains(t, err.Error(), "34360786944 bytes > 34359738368 bytes")
}

func TestEnumerateShortRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.img")
	require.NoError(t, os.WriteFile(path, []byte{0x55, 0xAA}, 0o644))

	disks, err := NewImagePlatform([]string{path}).Enumerate(DefaultMaxDisks)
	require.NoError(t, err)
	require.Len(t, disks, 1)
	assert.False(t, disks[0].HasMBR)
}

func TestEnumerateSignatureRequired(t *testing.T) {
	sec := sectorWith(zealPart(2048, 128))
	sec[511] = 0x00
	path := writeImage(t, 8*MiB, &sec)

	disks, err := NewImagePlatform([]string{path}).Enumerate(DefaultMaxDisks)
	require.NoError(t, err)
	require.Len(t, disks, 1)
	assert.False(t, disks[0].HasMBR)
	assert.False(t, disks[0].Partitions()[0].Active)
}

type deniedSource struct{ imageSource }

func (deniedSource) open(path string, _ bool) (device, error) {
	return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrPermission}
}

func TestEnumeratePermissionDenied(t *testing.T) {
	p := &rawPlatform{src: deniedSource{imageSource{paths: []string{"/dev/sda"}}}}
	disks, err := p.Enumerate(DefaultMaxDisks)
	assert.ErrorIs(t, err, ErrPermission)
	assert.Nil(t, disks)
}

func TestWriteBackImage(t *testing.T) {
	sec := sectorWith(Partition{Active: true, Type: 0x83, StartLBA: 2048, Sectors: 2048})
	path := writeImage(t, 16*MiB, &sec)

	reg := NewRegistry(NewImagePlatform([]string{path}), 0)
	require.NoError(t, reg.Refresh())
	d := reg.Selected()
	require.NotNil(t, d)

	pl := d.Placement()
	require.Equal(t, uint32(4096), pl.Start)
	require.NoError(t, d.Allocate(pl.Start, 4))
	staged := d.StagedMBR()
	payload := append([]byte(nil), d.StagedPartitions()[1].Payload()...)

	require.NoError(t, reg.WriteChanges(d))
	assert.False(t, d.Dirty())
	assert.Equal(t, staged, d.MBR())
	for _, p := range d.StagedPartitions() {
		assert.Nil(t, p.Payload())
	}

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, staged[:], raw[:SectorSize])
	assert.Equal(t, payload, raw[4096*SectorSize:4096*SectorSize+len(payload)])
	h, err := zealfs.ParseHeader(raw[4096*SectorSize:])
	require.NoError(t, err)
	assert.Equal(t, uint16(1021), h.FreePages)

	// An independent reader sees the same table.
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	table, err := mbr.Read(f, SectorSize, SectorSize)
	require.NoError(t, err)
	require.Len(t, table.Partitions, 4)
	assert.Equal(t, mbr.Type(0x83), table.Partitions[0].Type)
	assert.Equal(t, mbr.Type(zealfs.PartitionType), table.Partitions[1].Type)
	assert.Equal(t, uint32(4096), table.Partitions[1].Start)
	assert.Equal(t, uint32(2048), table.Partitions[1].Size)

	// A fresh enumeration reads back what was committed.
	require.NoError(t, reg.Refresh())
	assert.Equal(t, staged, reg.Selected().MBR())
}

func TestWriteBackPreconditions(t *testing.T) {
	path := writeImage(t, 8*MiB, nil)
	p := NewImagePlatform([]string{path})
	disks, err := p.Enumerate(DefaultMaxDisks)
	require.NoError(t, err)
	d := disks[0]

	assert.ErrorIs(t, p.WriteBack(d), ErrNoMBR)

	require.NoError(t, d.InitMBR())
	require.NoError(t, p.WriteBack(d))
	assert.True(t, d.HasMBR)
	assert.ErrorIs(t, p.WriteBack(d), ErrNoChanges)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	blank := BlankMBR()
	assert.Equal(t, blank[:], raw[:SectorSize])
}

// flakyDevice is an in-memory device whose writes start failing after a number of calls.
type flakyDevice struct {
	data      []byte
	off       int64
	writes    int
	failAfter int
	shortSeek bool
}

var errInjected = errors.New("injected write failure")

func (f *flakyDevice) Seek(off int64, whence int) (int64, error) {
	if whence != io.SeekStart {
		return 0, errors.New("unsupported whence")
	}
	if f.shortSeek && off > 0 {
		off--
	}
	f.off = off
	return off, nil
}

func (f *flakyDevice) Write(p []byte) (int, error) {
	if f.writes >= f.failAfter {
		return 0, errInjected
	}
	f.writes++
	n := copy(f.data[f.off:], p)
	f.off += int64(n)
	return n, nil
}

func TestWriteStagedPartialFailure(t *testing.T) {
	d := newTestDisk(16 * MiB)
	require.NoError(t, d.Allocate(2048, 0))
	require.NoError(t, d.Allocate(4096, 0))
	staged := d.StagedMBR()

	dev := &flakyDevice{data: make([]byte, 16*MiB), failAfter: 2}
	err := writeStaged(dev, d)
	require.ErrorIs(t, err, errInjected)
	assert.Contains(t, err.Error(), "partition 1")

	// Sector 0 and the first partition already hit the device.
	assert.Equal(t, staged[:], dev.data[:SectorSize])
	assert.Equal(t, byte('Z'), dev.data[2048*SectorSize])
	assert.Zero(t, dev.data[4096*SectorSize])

	// In memory nothing was promoted, so the write can be retried.
	assert.True(t, d.Dirty())
	assert.NotEmpty(t, d.StagedPartitions()[1].Payload())
	assert.False(t, d.Partitions()[0].Active)

	dev.failAfter = 10
	require.NoError(t, writeStaged(dev, d))
	assert.False(t, d.Dirty())
	assert.Equal(t, byte('Z'), dev.data[4096*SectorSize])
}

func TestWriteStagedSeekMismatch(t *testing.T) {
	d := newTestDisk(16 * MiB)
	require.NoError(t, d.Allocate(2048, 0))

	dev := &flakyDevice{data: make([]byte, 16*MiB), failAfter: 10, shortSeek: true}
	err := writeStaged(dev, d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not seek")
	assert.True(t, d.Dirty())
}
