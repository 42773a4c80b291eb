package disk

import "fmt"

var fsTypeNames = map[byte]string{
	0x01: "FAT12",
	0x04: "FAT16",
	0x06: "FAT16",
	0x07: "NTFS",
	0x0b: "FAT32",
	0x0c: "FAT32",
	0x17: "Mac OS HFS",
	0x5a: "ZealFS",
	0x5e: "UFS",
	0x82: "ext2",
	0x83: "ext3",
	0x8e: "ext4",
	0xa5: "exFAT",
	0xaf: "Mac OS Extended (HFS+)",
	0xc0: "Mac OS Extended (HFSX)",
	0xee: "GPT",
	0xef: "exFAT",
}

// FSTypeName returns a display name for an MBR partition type byte.
func FSTypeName(t byte) string {
	if name, ok := fsTypeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// FormatSize renders a byte count with two decimals in KiB, MiB or GiB.
func FormatSize(b uint64) string {
	switch {
	case b < MiB:
		return fmt.Sprintf("%.2f KiB", float64(b)/KiB)
	case b < GiB:
		return fmt.Sprintf("%.2f MiB", float64(b)/MiB)
	}
	return fmt.Sprintf("%.2f GiB", float64(b)/GiB)
}
