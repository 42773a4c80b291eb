package disk

import "errors"

var (
	// ErrPermission is returned by Enumerate when the OS refuses raw device access.
	ErrPermission = errors.New("raw device access denied")

	ErrTooLarge         = errors.New("device exceeds maximum supported size")
	ErrNoMBR            = errors.New("disk has no MBR")
	ErrHasMBR           = errors.New("disk already has an MBR")
	ErrNoFreeSlot       = errors.New("no free partition slot")
	ErrInvalidSlot      = errors.New("invalid partition slot")
	ErrInvalidSizeClass = errors.New("invalid partition size")
	ErrOverlap          = errors.New("partition overlaps an existing partition")
	ErrOutOfRange       = errors.New("partition runs past the end of the disk")
	ErrNoChanges        = errors.New("disk has no staged changes")
	ErrUnsavedChanges   = errors.New("disk has unsaved changes")
	ErrNoDisk           = errors.New("no such disk")
)
