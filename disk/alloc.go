package disk

// FreeRun is a contiguous run of unallocated sectors.
type FreeRun struct {
	Start   uint32
	Sectors uint32
}

// Fit classifies how many size classes can be placed in the largest free run.
type Fit int

const (
	// FitNone means no size class fits, or there is no free space at all.
	FitNone Fit = iota
	// FitPartial means the first Classes size classes fit.
	FitPartial
	// FitAll means every size class fits.
	FitAll
)

func (f Fit) String() string {
	switch f {
	case FitNone:
		return "none"
	case FitPartial:
		return "partial"
	case FitAll:
		return "all"
	}
	return "unknown"
}

// Placement is where a new partition would go and which sizes it may take.
type Placement struct {
	Fit Fit
	// Start is the aligned start LBA to hand to Allocate.
	Start uint32
	// Sectors is the usable length after alignment.
	Sectors uint32
	// Classes is the number of leading entries of SizeClasses that fit.
	Classes int
}

var sizeClasses = [...]uint64{
	64 * KiB, 128 * KiB, 256 * KiB, 512 * KiB,
	1 * MiB, 2 * MiB, 4 * MiB, 8 * MiB,
	16 * MiB, 32 * MiB, 64 * MiB, 128 * MiB, 256 * MiB, 512 * MiB,
	1 * GiB, 2 * GiB, 4 * GiB,
}

var sizeClassLabels = [...]string{
	"64KiB", "128KiB", "256KiB", "512KiB",
	"1MiB", "2MiB", "4MiB", "8MiB",
	"16MiB", "32MiB", "64MiB", "128MiB", "256MiB", "512MiB",
	"1GiB", "2GiB", "4GiB",
}

// SizeClassCount is the number of partition sizes offered.
const SizeClassCount = len(sizeClasses)

// SizeClassLabels returns the labels of all partition sizes, smallest first.
func SizeClassLabels() []string {
	return append([]string(nil), sizeClassLabels[:]...)
}

// SizeClassBytes returns the size in bytes of class idx.
func SizeClassBytes(idx int) uint64 {
	return 64 * KiB << uint(idx)
}

// SizeClassIndex returns the class whose label matches s.
func SizeClassIndex(s string) (int, bool) {
	for i, l := range sizeClassLabels {
		if l == s {
			return i, true
		}
	}
	return -1, false
}

// LargestFreeRun returns the largest gap between the staged active partitions.
// Sector 0 always holds the MBR so the search starts at sector 1. On ties the
// lowest run wins.
func (d *Disk) LargestFreeRun() FreeRun {
	diskSectors := uint64(d.SizeSectors())

	// Insertion sort of the active slots by start LBA; stable and at most 4 entries.
	var sorted [MaxParts]int
	n := 0
	for i := range d.staged.parts {
		if !d.staged.parts[i].Active {
			continue
		}
		j := n
		for j > 0 && d.staged.parts[sorted[j-1]].StartLBA > d.staged.parts[i].StartLBA {
			sorted[j] = sorted[j-1]
			j--
		}
		sorted[j] = i
		n++
	}

	best := FreeRun{Start: 1}
	prevEnd := uint64(1)
	for _, idx := range sorted[:n] {
		p := &d.staged.parts[idx]
		start := uint64(p.StartLBA)
		if start > prevEnd && start-prevEnd > uint64(best.Sectors) {
			best = FreeRun{Start: uint32(prevEnd), Sectors: uint32(start - prevEnd)}
		}
		// A slot nested in an earlier one must not move the cursor back.
		prevEnd = max(prevEnd, p.EndLBA())
	}
	if diskSectors > prevEnd && diskSectors-prevEnd > uint64(best.Sectors) {
		best = FreeRun{Start: uint32(prevEnd), Sectors: uint32(diskSectors - prevEnd)}
	}
	return best
}

// alignRun rounds the start of r up to alignment bytes and shrinks it by the same amount.
func alignRun(r FreeRun, alignment uint32) FreeRun {
	mask := alignment/SectorSize - 1
	aligned := (uint64(r.Start) + uint64(mask)) &^ uint64(mask)
	delta := aligned - uint64(r.Start)
	if delta >= uint64(r.Sectors) {
		return FreeRun{Start: uint32(aligned)}
	}
	return FreeRun{Start: uint32(aligned), Sectors: r.Sectors - uint32(delta)}
}

// Placement finds where a new partition can be created. The start is aligned on
// 1 MiB, or on 4 KiB when 1 MiB alignment leaves no room.
func (d *Disk) Placement() Placement {
	run := d.LargestFreeRun()
	if run.Sectors == 0 {
		return Placement{Fit: FitNone, Start: run.Start}
	}

	aligned := alignRun(run, MiB)
	if aligned.Sectors == 0 {
		aligned = alignRun(run, 4*KiB)
		if aligned.Sectors == 0 {
			return Placement{Fit: FitNone, Start: run.Start}
		}
	}

	pl := Placement{Start: aligned.Start, Sectors: aligned.Sectors}
	free := uint64(aligned.Sectors) * SectorSize
	for i, size := range sizeClasses {
		// A class fits only when the free space is strictly larger than it.
		if size >= free {
			pl.Classes = i
			if i == 0 {
				pl.Fit = FitNone
			} else {
				pl.Fit = FitPartial
			}
			return pl
		}
	}
	pl.Fit = FitAll
	pl.Classes = SizeClassCount
	return pl
}
