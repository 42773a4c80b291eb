// Package zealfs stamps a fresh ZealFS v2 header into a partition buffer.
// Only the leading pages are produced; the rest of the partition is left untouched
// on the device.
package zealfs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
)

// PartitionType is the MBR type byte used for ZealFS partitions.
const PartitionType = 0x5A

const (
	Magic   = 'Z'
	Version = 2

	// HeaderSize is the fixed part of the header, the bitmap follows it.
	HeaderSize = 7
	// FormatPages is the number of pages produced by Format: header plus up to two FAT pages.
	FormatPages = 3
)

const (
	kib = 1024
	mib = 1024 * kib
	gib = 1024 * mib
)

var (
	ErrBufferTooSmall = errors.New("zealfs: buffer smaller than formatted area")
	ErrBadMagic       = errors.New("zealfs: bad magic")
)

// Header is the decoded form of the on-disk ZealFS v2 header.
type Header struct {
	Magic      byte
	Version    byte
	BitmapSize uint16
	FreePages  uint16
	PageCode   byte
	// Bitmap0 is the first byte of the page bitmap.
	Bitmap0 byte
}

// PageBytes returns the page size described by PageCode.
func (h Header) PageBytes() int {
	return 256 << h.PageCode
}

// PageSize returns the page size used for a partition of the given size.
func PageSize(partSize uint64) int {
	switch {
	case partSize <= 64*kib:
		return 256
	case partSize <= 256*kib:
		return 512
	case partSize <= 1*mib:
		return 1 * kib
	case partSize <= 4*mib:
		return 2 * kib
	case partSize <= 16*mib:
		return 4 * kib
	case partSize <= 64*mib:
		return 8 * kib
	case partSize <= 256*mib:
		return 16 * kib
	case partSize <= 1*gib:
		return 32 * kib
	}
	return 64 * kib
}

// FormattedSize is the number of bytes Format writes for a partition of partSize bytes.
func FormattedSize(partSize uint64) int {
	return FormatPages * PageSize(partSize)
}

// Format writes a fresh header into buf for a partition of partSize bytes.
// buf is expected to be zero filled and at least FormattedSize(partSize) long.
func Format(buf []byte, partSize uint64) (Header, error) {
	page := PageSize(partSize)
	if len(buf) < FormatPages*page {
		return Header{}, fmt.Errorf("%w: have %d bytes, need %d", ErrBufferTooSmall, len(buf), FormatPages*page)
	}

	// 256 byte pages only need a single FAT page.
	fatPages := 1
	if page != 256 {
		fatPages = 2
	}
	pages := partSize / uint64(page)

	h := Header{
		Magic:      Magic,
		Version:    Version,
		BitmapSize: uint16(pages / 8),
		FreePages:  uint16(pages - 1 - uint64(fatPages)),
		PageCode:   byte(bits.Len(uint(page>>8)) - 1),
		Bitmap0:    0x03,
	}
	if fatPages > 1 {
		h.Bitmap0 |= 0x04
	}

	buf[0] = h.Magic
	buf[1] = h.Version
	binary.LittleEndian.PutUint16(buf[2:], h.BitmapSize)
	binary.LittleEndian.PutUint16(buf[4:], h.FreePages)
	buf[6] = h.PageCode
	buf[HeaderSize] = h.Bitmap0
	return h, nil
}

// ParseHeader decodes the header at the start of buf.
func ParseHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize+1 {
		return Header{}, ErrBufferTooSmall
	}
	if buf[0] != Magic {
		return Header{}, fmt.Errorf("%w: 0x%02x", ErrBadMagic, buf[0])
	}
	return Header{
		Magic:      buf[0],
		Version:    buf[1],
		BitmapSize: binary.LittleEndian.Uint16(buf[2:]),
		FreePages:  binary.LittleEndian.Uint16(buf[4:]),
		PageCode:   buf[6],
		Bitmap0:    buf[HeaderSize],
	}, nil
}
