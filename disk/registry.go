package disk

import "fmt"

// DefaultMaxDisks bounds how many disks a refresh will report.
const DefaultMaxDisks = 32

// Registry owns the disk list of one session and the current selection.
type Registry struct {
	platform Platform
	max      int
	disks    []*Disk
	selected int
}

// NewRegistry returns an empty registry; call Refresh to populate it.
func NewRegistry(p Platform, max int) *Registry {
	if max <= 0 {
		max = DefaultMaxDisks
	}
	return &Registry{platform: p, max: max}
}

// Refresh re-enumerates the disks. Every previous record and its staged changes are dropped.
func (r *Registry) Refresh() error {
	disks, err := r.platform.Enumerate(r.max)
	if err != nil {
		return err
	}
	r.disks = disks
	r.selected = 0
	return nil
}

// Disks returns the known disks in enumeration order.
func (r *Registry) Disks() []*Disk {
	return r.disks
}

// Selected returns the selected disk, or nil when there are none.
func (r *Registry) Selected() *Disk {
	if r.selected < 0 || r.selected >= len(r.disks) {
		return nil
	}
	return r.disks[r.selected]
}

// SelectedIndex returns the index of the selected disk.
func (r *Registry) SelectedIndex() int {
	return r.selected
}

// Select changes the selected disk. Switching away from a disk with staged
// changes is refused.
func (r *Registry) Select(i int) error {
	if i < 0 || i >= len(r.disks) {
		return fmt.Errorf("%w: index %d", ErrNoDisk, i)
	}
	if cur := r.Selected(); cur != nil && i != r.selected && cur.Dirty() {
		return fmt.Errorf("%s: %w", cur.Name, ErrUnsavedChanges)
	}
	r.selected = i
	return nil
}

// Find looks a disk up by name or path.
func (r *Registry) Find(id string) (*Disk, error) {
	for _, d := range r.disks {
		if d.Name == id || d.Path == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoDisk, id)
}

// WriteChanges commits the staged changes of d to its device.
func (r *Registry) WriteChanges(d *Disk) error {
	return r.platform.WriteBack(d)
}
