package disk

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// writeStaged writes the staged boot sector to LBA 0, then the pending payload of
// every staged slot at its start LBA, and finally promotes the staged table.
//
// Nothing is rolled back: if a payload write fails, sector 0 already describes the
// new partitions. The staged table is left as is so the write can be retried.
func writeStaged(w io.WriteSeeker, d *Disk) error {
	logger := d.logger()

	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("could not seek disk %s: %w", d.Name, err)
	}
	n, err := w.Write(d.staged.mbr[:])
	if err == nil && n != SectorSize {
		err = io.ErrShortWrite
	}
	if err != nil {
		return fmt.Errorf("could not write MBR to disk %s: %w", d.Name, err)
	}

	for i := range d.staged.parts {
		p := &d.staged.parts[i]
		if len(p.payload) == 0 {
			logger.WithField("slot", i).Debug("partition has no changes")
			continue
		}

		want := int64(p.StartLBA) * SectorSize
		logger.WithFields(log.Fields{
			"slot":   i,
			"offset": fmt.Sprintf("0x%08x", want),
			"bytes":  len(p.payload),
		}).Debug("writing partition")

		off, err := w.Seek(want, io.SeekStart)
		if err == nil && off != want {
			err = fmt.Errorf("landed at offset %d instead of %d", off, want)
		}
		if err != nil {
			return fmt.Errorf("could not seek disk %s to partition %d: %w", d.Name, i, err)
		}
		n, err := w.Write(p.payload)
		if err == nil && n != len(p.payload) {
			err = io.ErrShortWrite
		}
		if err != nil {
			return fmt.Errorf("could not write partition %d to disk %s: %w", i, d.Name, err)
		}
	}

	if s, ok := w.(interface{ Sync() error }); ok {
		if err := s.Sync(); err != nil {
			return fmt.Errorf("sync disk %s: %w", d.Name, err)
		}
	}

	d.Apply()
	logger.Debug("changes written")
	return nil
}
