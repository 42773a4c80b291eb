package disk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFSTypeName(t *testing.T) {
	assert.Equal(t, "ZealFS", FSTypeName(0x5A))
	assert.Equal(t, "FAT32", FSTypeName(0x0C))
	assert.Equal(t, "ext3", FSTypeName(0x83))
	assert.Equal(t, "Unknown", FSTypeName(0x42))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0.50 KiB", FormatSize(512))
	assert.Equal(t, "64.00 KiB", FormatSize(64*KiB))
	assert.Equal(t, "1023.00 KiB", FormatSize(1023*KiB))
	assert.Equal(t, "1.00 MiB", FormatSize(MiB))
	assert.Equal(t, "1.50 GiB", FormatSize(3*GiB/2))
	assert.Equal(t, "32.00 GiB", FormatSize(MaxDiskSize))
}
