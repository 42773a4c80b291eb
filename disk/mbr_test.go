package disk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeEntryLayout(t *testing.T) {
	var sec Sector
	EncodeEntry(&sec, 1, Partition{Active: true, Type: 0x5A, StartLBA: 0x00000800, Sectors: 0x01020304})

	want := []byte{
		0x00, 0xFF, 0xFF, 0xFF, 0x5A, 0xFF, 0xFF, 0xFF,
		0x00, 0x08, 0x00, 0x00,
		0x04, 0x03, 0x02, 0x01,
	}
	assert.Equal(t, want, sec[0x1CE:0x1DE])
	assert.Equal(t, make([]byte, 16), sec[0x1BE:0x1CE], "other slots untouched")
}

func TestEntryRoundTrip(t *testing.T) {
	cases := []Partition{
		{Active: true, Type: 0x5A, StartLBA: 2048, Sectors: 128},
		{Active: true, Type: 0x83, StartLBA: 1, Sectors: 0xFFFFFFFF},
		{Active: true, Type: 0x0c, StartLBA: 0xFFFFFFFE, Sectors: 1},
	}
	for slot := 0; slot < MaxParts; slot++ {
		for _, p := range cases {
			var sec Sector
			EncodeEntry(&sec, slot, p)
			raw := sec

			got := DecodeEntry(&sec, slot)
			assert.Equal(t, p, got)

			EncodeEntry(&sec, slot, got)
			assert.Equal(t, raw, sec)
		}
	}
}

func TestDecodeEntryActive(t *testing.T) {
	cases := []struct {
		name  string
		entry [16]byte
		want  bool
	}{
		{"empty", [16]byte{}, false},
		{"chs only", [16]byte{0, 0xFF, 0xFF, 0xFF, 0, 0xFF, 0xFF, 0xFF}, false},
		{"boot flag", [16]byte{0x80}, true},
		{"type", [16]byte{4: 0x83}, true},
		{"start", [16]byte{8: 1}, true},
		{"size", [16]byte{15: 1}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var sec Sector
			copy(sec[0x1EE:], c.entry[:])
			assert.Equal(t, c.want, DecodeEntry(&sec, 3).Active)
		})
	}
}

func TestHasSignature(t *testing.T) {
	var sec Sector
	assert.False(t, HasSignature(&sec))

	sec[510], sec[511] = 0xAA, 0x55
	assert.False(t, HasSignature(&sec))

	blank := BlankMBR()
	require.True(t, HasSignature(&blank))
	for i := 0; i < 510; i++ {
		require.Zero(t, blank[i])
	}
}
