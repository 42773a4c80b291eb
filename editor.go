package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"zealdisk/disk"
	"zealdisk/diskui"
)

type editorMode int

const (
	modeBrowse editorMode = iota
	modeNewPartition
	modeConfirmApply
	modeConfirmCancel
	modeConfirmQuit
)

const (
	glyphMBR  = '■'
	glyphFree = '░'
)

var slotColors = [disk.MaxParts]tcell.Color{
	tcell.ColorRed, tcell.ColorGreen, tcell.ColorBlue, tcell.ColorYellow,
}

// editor drives a Registry from key presses and renders it on a diskui screen.
type editor struct {
	ui      *diskui.UI
	reg     *disk.Registry
	mode    editorMode
	slot    int
	sizeIdx int
	status  string
	quit    bool
}

func newEditor(ui *diskui.UI, reg *disk.Registry) *editor {
	e := &editor{ui: ui, reg: reg}
	for i, c := range slotColors {
		ui.SetMapStyle(rune('0'+i), tcell.StyleDefault.Foreground(c))
	}
	ui.SetMapStyle(glyphMBR, tcell.StyleDefault.Foreground(tcell.ColorGray))
	return e
}

func (e *editor) run() error {
	for !e.quit {
		e.render()
		ev, err := e.ui.NextKey()
		if err != nil {
			return err
		}
		e.handleKey(ev)
	}
	return nil
}

func (e *editor) handleKey(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyCtrlC {
		e.quit = true
		return
	}
	switch e.mode {
	case modeNewPartition:
		e.handleNewPartition(ev)
	case modeConfirmApply, modeConfirmCancel, modeConfirmQuit:
		e.handleConfirm(ev)
	default:
		e.handleBrowse(ev)
	}
}

func (e *editor) handleBrowse(ev *tcell.EventKey) {
	d := e.reg.Selected()
	switch ev.Key() {
	case tcell.KeyTab:
		e.switchDisk(1)
		return
	case tcell.KeyBacktab:
		e.switchDisk(-1)
		return
	case tcell.KeyUp:
		if e.slot > 0 {
			e.slot--
		}
		return
	case tcell.KeyDown:
		if e.slot < disk.MaxParts-1 {
			e.slot++
		}
		return
	case tcell.KeyEscape:
		e.requestQuit()
		return
	case tcell.KeyRune:
	default:
		return
	}

	if ev.Rune() == 'q' {
		e.requestQuit()
		return
	}
	if ev.Rune() == 'r' {
		e.refresh()
		return
	}
	if d == nil {
		e.status = "No disk found"
		return
	}

	switch ev.Rune() {
	case 'n':
		switch {
		case !d.StagedHasMBR():
			e.status = "No MBR on this disk, press m to create one"
		case d.FreeSlot() < 0:
			e.status = "No free partition found on this disk"
		default:
			pl := d.Placement()
			if pl.Fit == disk.FitNone {
				e.status = "No size available"
				return
			}
			e.sizeIdx = min(e.sizeIdx, pl.Classes-1)
			e.mode = modeNewPartition
			e.status = ""
		}
	case 'd':
		p := d.StagedPartitions()[e.slot]
		if err := d.Delete(e.slot); err != nil {
			e.status = err.Error()
			return
		}
		if p.Active {
			e.status = fmt.Sprintf("Partition %d deleted", e.slot)
		} else {
			e.status = fmt.Sprintf("Partition %d is empty", e.slot)
		}
	case 'm':
		if err := d.InitMBR(); err != nil {
			e.status = err.Error()
			return
		}
		e.status = "Empty MBR staged"
	case 'a':
		if !d.Dirty() {
			e.status = "No changes to apply"
			return
		}
		e.mode = modeConfirmApply
	case 'c':
		if !d.Dirty() {
			e.status = "No changes to cancel"
			return
		}
		e.mode = modeConfirmCancel
	}
}

func (e *editor) handleNewPartition(ev *tcell.EventKey) {
	d := e.reg.Selected()
	pl := d.Placement()
	switch ev.Key() {
	case tcell.KeyEscape:
		e.mode = modeBrowse
	case tcell.KeyEnter:
		slot := d.FreeSlot()
		if err := d.Allocate(pl.Start, e.sizeIdx); err != nil {
			e.status = err.Error()
		} else {
			e.status = fmt.Sprintf("Partition %d staged: %s at 0x%08x",
				slot, disk.SizeClassLabels()[e.sizeIdx], uint64(pl.Start)*disk.SectorSize)
			e.slot = slot
		}
		e.mode = modeBrowse
	case tcell.KeyRight, tcell.KeyUp:
		if e.sizeIdx < pl.Classes-1 {
			e.sizeIdx++
		}
	case tcell.KeyLeft, tcell.KeyDown:
		if e.sizeIdx > 0 {
			e.sizeIdx--
		}
	case tcell.KeyRune:
		switch ev.Rune() {
		case '+':
			if e.sizeIdx < pl.Classes-1 {
				e.sizeIdx++
			}
		case '-':
			if e.sizeIdx > 0 {
				e.sizeIdx--
			}
		}
	}
}

func (e *editor) handleConfirm(ev *tcell.EventKey) {
	yes := ev.Key() == tcell.KeyRune && (ev.Rune() == 'y' || ev.Rune() == 'Y')
	no := ev.Key() == tcell.KeyEscape || (ev.Key() == tcell.KeyRune && (ev.Rune() == 'n' || ev.Rune() == 'N'))
	if !yes {
		if no {
			e.mode = modeBrowse
		}
		return
	}

	mode := e.mode
	e.mode = modeBrowse
	d := e.reg.Selected()
	switch mode {
	case modeConfirmApply:
		if err := e.reg.WriteChanges(d); err != nil {
			e.status = err.Error()
			return
		}
		e.status = "Success!"
	case modeConfirmCancel:
		d.Revert()
		e.status = "Changes discarded"
	case modeConfirmQuit:
		e.quit = true
	}
}

func (e *editor) switchDisk(step int) {
	n := len(e.reg.Disks())
	if n == 0 {
		return
	}
	next := (e.reg.SelectedIndex() + step + n) % n
	if err := e.reg.Select(next); err != nil {
		if errors.Is(err, disk.ErrUnsavedChanges) {
			e.status = "Apply or cancel the pending changes first"
			return
		}
		e.status = err.Error()
		return
	}
	e.slot = 0
	e.status = ""
}

func (e *editor) requestQuit() {
	if d := e.reg.Selected(); d != nil && d.Dirty() {
		e.mode = modeConfirmQuit
		return
	}
	e.quit = true
}

func (e *editor) refresh() {
	if d := e.reg.Selected(); d != nil && d.Dirty() {
		e.status = "Apply or cancel the pending changes first"
		return
	}
	if err := e.reg.Refresh(); err != nil {
		e.status = err.Error()
		return
	}
	e.slot = 0
	e.status = fmt.Sprintf("%d disk(s) found", len(e.reg.Disks()))
}

// diskMap draws d as width columns. Column 0 holds the MBR; each active
// partition shows as its slot digit and keeps at least one column.
func diskMap(d *disk.Disk, width int) []rune {
	total := uint64(d.SizeSectors())
	if width <= 0 || total == 0 {
		return nil
	}
	runes := make([]rune, width)
	parts := d.StagedPartitions()
	for c := range runes {
		runes[c] = glyphFree
		lba := uint64(c) * total / uint64(width)
		for i := range parts {
			p := &parts[i]
			if p.Active && lba >= uint64(p.StartLBA) && lba < p.EndLBA() {
				runes[c] = rune('0' + i)
				break
			}
		}
	}
	for i := range parts {
		if !parts[i].Active || uint64(parts[i].StartLBA) >= total {
			continue
		}
		runes[uint64(parts[i].StartLBA)*uint64(width)/total] = rune('0' + i)
	}
	if d.StagedHasMBR() {
		runes[0] = glyphMBR
	}
	return runes
}

func (e *editor) render() {
	e.ui.SetTitle(" Zeal Disk Tool ")

	d := e.reg.Selected()
	if d == nil {
		e.ui.SetSummaryLines([]string{"No disk found. Press r to refresh or q to quit."})
		e.ui.SetMap(nil)
		e.ui.SetTable("", nil, -1)
		e.ui.SetPrompt("")
		e.ui.SetStatusLines([]string{e.status})
		e.ui.LayoutAndDraw()
		return
	}

	disks := "Disks:"
	for i, other := range e.reg.Disks() {
		if i == e.reg.SelectedIndex() {
			disks += " [" + other.Label() + "]"
		} else {
			disks += "  " + other.Label() + " "
		}
	}
	summary := []string{disks, fmt.Sprintf("Path: %s  MBR: %s", d.Path, yesNo(d.StagedHasMBR()))}
	e.ui.SetSummaryLines(summary)

	w, _ := e.ui.Size()
	e.ui.SetMap(diskMap(d, w))

	var rows []string
	header := ""
	if d.StagedHasMBR() {
		header = fmt.Sprintf("  %-4s  %-24s  %-10s  %12s", "Slot", "Type", "Start", "Size")
		for i, p := range d.StagedPartitions() {
			rows = append(rows, partitionRow(i, p))
		}
	}
	e.ui.SetTable(header, rows, e.slot)

	switch e.mode {
	case modeNewPartition:
		pl := d.Placement()
		e.ui.SetPrompt(fmt.Sprintf("New ZealFSv2 partition: < %s >  at 0x%08x  (+/- size, Enter create, Esc cancel)",
			disk.SizeClassLabels()[e.sizeIdx], uint64(pl.Start)*disk.SectorSize))
	case modeConfirmApply:
		e.ui.SetPrompt("Apply changes to disk? This action is permanent and cannot be undone. (y/n)")
	case modeConfirmCancel:
		e.ui.SetPrompt("Discard all changes? All unsaved changes will be lost. (y/n)")
	case modeConfirmQuit:
		e.ui.SetPrompt("Quit and discard the pending changes? (y/n)")
	default:
		e.ui.SetPrompt("")
	}

	e.ui.SetStatusLines([]string{
		e.status,
		"Tab disk  Up/Down slot  n new  d delete  m MBR  a apply  c cancel  r refresh  q quit",
	})
	e.ui.LayoutAndDraw()
}

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Full-screen partition editor",
		RunE: func(_ *cobra.Command, _ []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			ui, err := diskui.NewUI()
			if err != nil {
				return err
			}
			defer ui.Close()

			// Log lines would tear the screen.
			log.SetOutput(io.Discard)
			defer log.SetOutput(os.Stderr)
			return newEditor(ui, reg).run()
		},
	}
}
