package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"zealdisk/disk"
)

// newImage creates an image file called name in a temp dir. With mbr set its
// first sector holds an empty signed partition table.
func newImage(t *testing.T, name string, size int64, mbr bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, f.Truncate(size))
	if mbr {
		sec := disk.BlankMBR()
		_, err = f.WriteAt(sec[:], 0)
		require.NoError(t, err)
	}
	return path
}

// readEntry returns the type, start LBA and sector count of an MBR slot in the image.
func readEntry(t *testing.T, path string, slot int) (byte, uint32, uint32) {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	e := raw[0x1BE+16*slot:]
	return e[4], binary.LittleEndian.Uint32(e[8:]), binary.LittleEndian.Uint32(e[12:])
}

// runCmd executes the CLI with args and returns what it printed.
func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	a := &app{in: strings.NewReader(stdin), newPlatform: newPlatform}
	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}
