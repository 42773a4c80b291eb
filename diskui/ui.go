// Package diskui provides the full-screen terminal view used by the partition editor.
// It only renders what the caller hands it and reports key presses; it knows nothing
// about disks.
package diskui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// ErrClosed is returned by NextKey once the screen has been closed.
var ErrClosed = errors.New("screen closed")

// UI is a terminal screen with a title, summary lines, a map row, a selectable
// table, a prompt and status lines, drawn top to bottom.
type UI struct {
	s tcell.Screen

	title        string
	summaryLines []string
	mapRunes     []rune
	palette      map[rune]tcell.Style
	tableHeader  string
	tableRows    []string
	selectedRow  int
	prompt       string
	statusLines  []string
}

// NewUI creates and initializes a UI on the terminal.
func NewUI() (*UI, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewUIWithScreen(s)
}

// NewUIWithScreen initializes a UI on an existing screen, such as a simulation screen.
func NewUIWithScreen(s tcell.Screen) (*UI, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.DisableMouse()
	return &UI{
		s:           s,
		palette:     make(map[rune]tcell.Style),
		selectedRow: -1,
	}, nil
}

// Close restores the terminal.
func (u *UI) Close() {
	if u.s == nil {
		return
	}
	u.s.Fini()
	u.s = nil
}

// Size returns the current screen width and height.
func (u *UI) Size() (width, height int) {
	if u.s == nil {
		return 0, 0
	}
	return u.s.Size()
}

// NextKey blocks until a key is pressed. Resizes are handled internally.
func (u *UI) NextKey() (*tcell.EventKey, error) {
	for {
		if u.s == nil {
			return nil, ErrClosed
		}
		switch ev := u.s.PollEvent().(type) {
		case *tcell.EventKey:
			return ev, nil
		case *tcell.EventResize:
			u.s.Sync()
			u.LayoutAndDraw()
		case nil:
			return nil, ErrClosed
		}
	}
}

func putStr(s tcell.Screen, x, y int, str string, style tcell.Style) {
	w, _ := s.Size()
	for i, r := range []rune(str) {
		pos := x + i
		if pos >= w {
			break
		}
		s.SetContent(pos, y, r, nil, style)
	}
}

// LayoutAndDraw redraws the whole screen from the current state.
func (u *UI) LayoutAndDraw() {
	u.s.Clear()
	w, h := u.s.Size()
	y := 0

	if u.title != "" {
		putStr(u.s, 0, y, strings.Repeat("═", w), tcell.StyleDefault)
		putStr(u.s, (w-len([]rune(u.title)))/2, y, u.title, tcell.StyleDefault.Bold(true))
		y++
	}

	for _, line := range u.summaryLines {
		if y >= h {
			break
		}
		putStr(u.s, 0, y, line, tcell.StyleDefault)
		y++
	}

	if len(u.mapRunes) > 0 && y < h {
		for x, r := range u.mapRunes {
			if x >= w {
				break
			}
			style, ok := u.palette[r]
			if !ok {
				style = tcell.StyleDefault
			}
			u.s.SetContent(x, y, r, nil, style)
		}
		y++
	}

	if u.tableHeader != "" && y < h {
		putStr(u.s, 0, y, strings.Repeat("─", w), tcell.StyleDefault)
		putStr(u.s, 2, y, " Partitions ", tcell.StyleDefault)
		y++
		putStr(u.s, 0, y, u.tableHeader, tcell.StyleDefault.Underline(true))
		y++
	}
	for i, row := range u.tableRows {
		if y >= h {
			break
		}
		style := tcell.StyleDefault
		if i == u.selectedRow {
			style = style.Reverse(true)
			row = fmt.Sprintf("%-*s", w, row)
		}
		putStr(u.s, 0, y, row, style)
		y++
	}

	if u.prompt != "" && y < h {
		putStr(u.s, 0, y, strings.Repeat("─", w), tcell.StyleDefault)
		y++
		putStr(u.s, 0, y, u.prompt, tcell.StyleDefault.Bold(true))
		y++
	}

	if len(u.statusLines) > 0 && y < h {
		putStr(u.s, 0, y, strings.Repeat("─", w), tcell.StyleDefault)
		putStr(u.s, 2, y, " Status ", tcell.StyleDefault)
		y++
		for _, line := range u.statusLines {
			if y >= h {
				break
			}
			putStr(u.s, 0, y, line, tcell.StyleDefault)
			y++
		}
	}

	u.s.Show()
}

// SetTitle sets the title displayed at the top of the UI.
func (u *UI) SetTitle(t string) {
	u.title = t
}

// SetSummaryLines sets the lines displayed below the title.
func (u *UI) SetSummaryLines(lines []string) {
	u.summaryLines = append([]string(nil), lines...)
}

// SetMap sets the single-row map drawn under the summary, one rune per column.
func (u *UI) SetMap(runes []rune) {
	u.mapRunes = append([]rune(nil), runes...)
}

// SetMapStyle sets the style used for r in the map row.
func (u *UI) SetMapStyle(r rune, style tcell.Style) {
	u.palette[r] = style
}

// SetTable sets the table header and rows. selected is highlighted, -1 for none.
func (u *UI) SetTable(header string, rows []string, selected int) {
	u.tableHeader = header
	u.tableRows = append([]string(nil), rows...)
	u.selectedRow = selected
}

// SetPrompt sets the question or input line shown under the table; empty hides it.
func (u *UI) SetPrompt(p string) {
	u.prompt = p
}

// SetStatusLines sets the status lines displayed at the bottom.
func (u *UI) SetStatusLines(lines []string) {
	u.statusLines = append([]string(nil), lines...)
}
