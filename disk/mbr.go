package disk

import "encoding/binary"

const (
	SectorSize = 512
	MaxParts   = 4

	mbrEntryBegin = 0x1BE
	mbrEntrySize  = 16
	mbrSigOffset  = 0x1FE
)

// Sector is a raw 512-byte boot sector image.
type Sector [SectorSize]byte

func entryOffset(slot int) int {
	return mbrEntryBegin + slot*mbrEntrySize
}

// EncodeEntry writes p as the MBR entry of the given slot. The boot indicator is
// always cleared and the CHS fields are filled with 0xFF: only LBA addressing is used.
func EncodeEntry(sec *Sector, slot int, p Partition) {
	e := sec[entryOffset(slot) : entryOffset(slot)+mbrEntrySize]
	e[0] = 0x00
	e[1], e[2], e[3] = 0xFF, 0xFF, 0xFF
	e[4] = p.Type
	e[5], e[6], e[7] = 0xFF, 0xFF, 0xFF
	binary.LittleEndian.PutUint32(e[8:], p.StartLBA)
	binary.LittleEndian.PutUint32(e[12:], p.Sectors)
}

// DecodeEntry reads the MBR entry of the given slot. Any non-zero field marks the
// slot active so that a partition without a boot flag is never treated as free.
func DecodeEntry(sec *Sector, slot int) Partition {
	e := sec[entryOffset(slot) : entryOffset(slot)+mbrEntrySize]
	p := Partition{
		Type:     e[4],
		StartLBA: binary.LittleEndian.Uint32(e[8:]),
		Sectors:  binary.LittleEndian.Uint32(e[12:]),
	}
	p.Active = e[0]&0x80 != 0 || p.Type != 0 || p.StartLBA != 0 || p.Sectors != 0
	return p
}

// HasSignature reports whether the sector ends with the 55 AA boot signature.
func HasSignature(sec *Sector) bool {
	return sec[mbrSigOffset] == 0x55 && sec[mbrSigOffset+1] == 0xAA
}

// BlankMBR returns an empty, signed boot sector.
func BlankMBR() Sector {
	var sec Sector
	sec[mbrSigOffset], sec[mbrSigOffset+1] = 0x55, 0xAA
	return sec
}
