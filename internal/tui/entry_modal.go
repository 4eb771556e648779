package tui

import (
	"context"
	"strings"

	"tasklist-cli/internal/entry"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// entryDoneMsg reports the outcome of a queued entry submission. Success is
// not announced here: the form fires the entry-closed signal and the list
// reloads from that.
type entryDoneMsg struct{ err error }

type entryClosedMsg struct{}

// entryModal is the add-task dialog. It only validates and hands the title to
// the entry form; it knows nothing about the list.
type entryModal struct {
	open  bool
	input textinput.Model
	err   string
}

func newEntryModal() entryModal {
	in := textinput.New()
	in.Placeholder = "What needs doing?"
	in.Prompt = "> "
	in.CharLimit = 500
	return entryModal{input: in}
}

func (m *entryModal) show() tea.Cmd {
	m.open = true
	m.err = ""
	m.input.SetValue("")
	return m.input.Focus()
}

func (m *entryModal) hide() {
	m.open = false
	m.err = ""
	m.input.Blur()
	m.input.SetValue("")
}

// submitEntryJob queues form submission on the store worker.
func submitEntryJob(form *entry.Form, title string) storeJob {
	return func(ctx context.Context) tea.Msg {
		return entryDoneMsg{err: form.Submit(ctx, title)}
	}
}

func listenEntryClosed(sig *entry.Signal) tea.Cmd {
	return func() tea.Msg {
		<-sig.C()
		return entryClosedMsg{}
	}
}

// updateEntryModal handles keys while the dialog is open.
func (m appModel) updateEntryModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.form.Cancel()
		m.modal.hide()
		return m, nil
	case "enter":
		title, err := entry.Validate(m.modal.input.Value())
		if err != nil {
			// Invalid input stays at the form boundary.
			m.modal.err = err.Error()
			return m, nil
		}
		m.modal.hide()
		m.worker.submit(submitEntryJob(m.form, title))
		return m, nil
	}
	var cmd tea.Cmd
	m.modal.input, cmd = m.modal.input.Update(msg)
	m.modal.err = ""
	return m, cmd
}

func (m entryModal) view(width int) string {
	w := width - 8
	if w > 64 {
		w = 64
	}
	if w < 24 {
		w = 24
	}
	m.input.Width = w - 6

	help := styleMuted().Render("enter: add   esc: cancel")
	lines := []string{
		styleHeader().Render("New task"),
		"",
		m.input.View(),
	}
	if m.err != "" {
		lines = append(lines, styleError().Render(m.err))
	}
	lines = append(lines, "", help)

	return lipgloss.NewStyle().
		Width(w).
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Background(colorModalBg).
		Foreground(colorModalFg).
		Render(strings.Join(lines, "\n"))
}
