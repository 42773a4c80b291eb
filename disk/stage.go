package disk

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"zealdisk/zealfs"
)

// Allocate stages a new ZealFS partition of size class sizeIdx at lba in the first
// free slot. The partition's leading pages are formatted in memory and written on
// the next write-back.
func (d *Disk) Allocate(lba uint32, sizeIdx int) error {
	if !d.StagedHasMBR() {
		return ErrNoMBR
	}
	if d.freeSlot < 0 {
		return ErrNoFreeSlot
	}
	if sizeIdx < 0 || sizeIdx >= SizeClassCount {
		return fmt.Errorf("%w: index %d", ErrInvalidSizeClass, sizeIdx)
	}

	sizeBytes := SizeClassBytes(sizeIdx)
	sectors := uint32(sizeBytes / SectorSize)
	end := uint64(lba) + uint64(sectors)
	if lba == 0 || end > uint64(d.SizeSectors()) {
		return fmt.Errorf("%w: [%d, %d) on %d sectors", ErrOutOfRange, lba, end, d.SizeSectors())
	}
	for i := range d.staged.parts {
		p := &d.staged.parts[i]
		if p.Active && uint64(lba) < p.EndLBA() && end > uint64(p.StartLBA) {
			return fmt.Errorf("%w: [%d, %d) and slot %d", ErrOverlap, lba, end, i)
		}
	}

	slot := d.freeSlot
	payload := make([]byte, zealfs.FormattedSize(sizeBytes))
	if _, err := zealfs.Format(payload, sizeBytes); err != nil {
		return fmt.Errorf("format partition %d: %w", slot, err)
	}

	p := &d.staged.parts[slot]
	*p = Partition{
		Active:   true,
		Type:     zealfs.PartitionType,
		StartLBA: lba,
		Sectors:  sectors,
		payload:  payload,
	}
	EncodeEntry(&d.staged.mbr, slot, *p)
	d.dirty = true
	d.freeSlot = d.findFreeSlot()

	d.logger().WithFields(log.Fields{
		"slot":    slot,
		"lba":     lba,
		"sectors": sectors,
		"payload": len(payload),
	}).Debug("allocated ZealFS partition")
	return nil
}

// Delete clears a staged slot and drops any payload it was carrying.
// Deleting an inactive slot does nothing.
func (d *Disk) Delete(slot int) error {
	if slot < 0 || slot >= MaxParts {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	if !d.StagedHasMBR() {
		return ErrNoMBR
	}
	if !d.staged.parts[slot].Active {
		return nil
	}

	d.staged.parts[slot] = Partition{}
	EncodeEntry(&d.staged.mbr, slot, d.staged.parts[slot])
	d.dirty = true
	d.freeSlot = d.findFreeSlot()

	d.logger().WithField("slot", slot).Debug("deleted partition")
	return nil
}

// InitMBR stages an empty partition table on a disk that has none.
func (d *Disk) InitMBR() error {
	if d.HasMBR {
		return ErrHasMBR
	}
	d.dropPayloads()
	d.staged = table{mbr: BlankMBR()}
	d.dirty = true
	d.freeSlot = d.findFreeSlot()

	d.logger().Debug("staged new MBR")
	return nil
}

// Revert discards every staged change.
func (d *Disk) Revert() {
	if !d.dirty {
		return
	}
	// Payloads go first, the staged table is overwritten right after.
	d.dropPayloads()
	d.dirty = false
	d.staged = d.committed.mirror()
	d.freeSlot = d.findFreeSlot()

	d.logger().Debug("reverted staged changes")
}

// Apply promotes the staged table to committed. It does no I/O and must only be
// called once the staged table has been written to the device.
func (d *Disk) Apply() {
	d.dirty = false
	d.dropPayloads()
	d.committed = d.staged.mirror()
	d.HasMBR = HasSignature(&d.committed.mbr)
	d.freeSlot = d.findFreeSlot()
}

func (d *Disk) dropPayloads() {
	for i := range d.staged.parts {
		d.staged.parts[i].payload = nil
	}
}
