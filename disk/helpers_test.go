package disk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// sectorWith returns a signed boot sector holding the given partitions in slots 0..n.
func sectorWith(parts ...Partition) Sector {
	sec := BlankMBR()
	for i, p := range parts {
		EncodeEntry(&sec, i, p)
	}
	return sec
}

func zealPart(start, sectors uint32) Partition {
	return Partition{Active: true, Type: 0x5A, StartLBA: start, Sectors: sectors}
}

func newTestDisk(sizeBytes uint64, parts ...Partition) *Disk {
	return NewDisk("test", "test.img", sizeBytes, sectorWith(parts...), true)
}

// writeImage creates an image file of size bytes whose first sector is sec.
func writeImage(t *testing.T, size int64, sec *Sector) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "disk.img")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, f.Truncate(size))
	if sec != nil {
		_, err = f.WriteAt(sec[:], 0)
		require.NoError(t, err)
	}
	return path
}

func (p Partition) withPayload(b []byte) Partition {
	p.payload = b
	return p
}
