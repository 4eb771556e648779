package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// taskDelegate renders one task per line: "<check> <title>     #id".
type taskDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	done     lipgloss.Style
	check    lipgloss.Style
	id       lipgloss.Style
}

func newTaskDelegate() taskDelegate {
	return taskDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
		done:  faintIfDark(lipgloss.NewStyle().Foreground(colorDoneFg).Strikethrough(true)),
		check: lipgloss.NewStyle().Foreground(colorCheckFg),
		id:    styleMuted(),
	}
}

func (d taskDelegate) Height() int                             { return 1 }
func (d taskDelegate) Spacing() int                            { return 0 }
func (d taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	it, ok := item.(taskItem)
	if contentW < 8 || !ok {
		return
	}

	check := checkGlyph(it.task.Completed)
	id := it.Description()
	// "<check> " + title + " " + id
	titleW := contentW - xansi.StringWidth(check) - 1 - xansi.StringWidth(id) - 1
	if titleW < 1 {
		titleW = 1
	}
	title := it.task.Title
	if xansi.StringWidth(title) > titleW {
		title = xansi.Truncate(title, titleW, "…")
	}
	gap := titleW - xansi.StringWidth(title)

	if index == m.Index() {
		line := check + " " + title + strings.Repeat(" ", gap+1) + id
		fmt.Fprint(w, d.selected.Render(line))
		return
	}

	titleStyle := d.normal
	checkStyle := d.normal
	if it.task.Completed {
		titleStyle = d.done
		checkStyle = d.check
	}
	line := checkStyle.Render(check) + " " + titleStyle.Render(title) + strings.Repeat(" ", gap+1) + d.id.Render(id)
	fmt.Fprint(w, line)
}
