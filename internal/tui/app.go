package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"tasklist-cli/internal/docs"
	"tasklist-cli/internal/entry"
	"tasklist-cli/internal/model"
	"tasklist-cli/internal/tasklist"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// gestureDoneMsg carries a finished store call back to the update loop.
type gestureDoneMsg struct{ res tasklist.Result }

// storeChangedMsg is sent when the database changed on disk.
type storeChangedMsg struct{}

// dataVersioner is implemented by stores that can tell another connection's
// commits from their own.
type dataVersioner interface {
	DataVersion(ctx context.Context) (int64, error)
}

// seenVersion is the last data_version a reload was based on. Only worker jobs
// touch it.
type seenVersion struct {
	version int64
	known   bool
}

type appModel struct {
	log *slog.Logger

	ctrl    *tasklist.Controller
	surface *listSurface
	worker  *storeWorker

	form   *entry.Form
	signal *entry.Signal
	modal  entryModal

	changes <-chan struct{}
	seen    *seenVersion

	dir           string
	confirmDelete bool
	pending       *tasklist.Op
	showHelp      bool

	width  int
	height int
}

// taskStore is what the TUI needs from the store: the controller's calls plus
// inserts for the entry form.
type taskStore interface {
	tasklist.Store
	entry.Inserter
}

type appDeps struct {
	store         taskStore
	dir           string
	log           *slog.Logger
	changes       <-chan struct{}
	confirmDelete bool
}

func newAppModel(deps appDeps) appModel {
	log := deps.log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	surface := newListSurface()
	sig := entry.NewSignal()
	m := appModel{
		log:           log,
		ctrl:          tasklist.New(deps.store, surface, tasklist.WithLogger(log)),
		surface:       surface,
		worker:        newStoreWorker(),
		form:          entry.NewForm(deps.store, sig.Notify, log),
		signal:        sig,
		modal:         newEntryModal(),
		changes:       deps.changes,
		seen:          &seenVersion{},
		dir:           deps.dir,
		confirmDelete: deps.confirmDelete,
	}
	// Initial load.
	m.markVersion()
	m.submit(m.ctrl.BeginReload())
	return m
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{
		listenWorker(m.worker.out),
		listenEntryClosed(m.signal),
	}
	if m.changes != nil {
		cmds = append(cmds, listenChanges(m.changes))
	}
	return tea.Batch(cmds...)
}

func listenChanges(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

// submit queues op's store call on the worker.
func (m appModel) submit(op tasklist.Op) {
	store := m.ctrl.Store()
	m.worker.submit(func(ctx context.Context) tea.Msg {
		return gestureDoneMsg{res: op.Exec(ctx, store)}
	})
}

// markVersion records the store's current data_version as already seen.
func (m appModel) markVersion() {
	dv, ok := m.ctrl.Store().(dataVersioner)
	if !ok {
		return
	}
	seen := m.seen
	m.worker.submit(func(ctx context.Context) tea.Msg {
		if v, err := dv.DataVersion(ctx); err == nil {
			seen.version, seen.known = v, true
		}
		return nil
	})
}

// submitExternalReload reloads only if another connection committed since the
// last check. The watcher also fires for this process's own WAL writes, and
// reloading on those would throw away view-only moves.
func (m appModel) submitExternalReload() {
	dv, ok := m.ctrl.Store().(dataVersioner)
	if !ok {
		m.submit(m.ctrl.BeginReload())
		return
	}
	op := m.ctrl.BeginReload()
	store := m.ctrl.Store()
	seen := m.seen
	m.worker.submit(func(ctx context.Context) tea.Msg {
		v, err := dv.DataVersion(ctx)
		if err == nil {
			if seen.known && v == seen.version {
				return nil
			}
			seen.version, seen.known = v, true
		}
		return gestureDoneMsg{res: op.Exec(ctx, store)}
	})
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeList()
		return m, nil

	case workerMsg:
		m.handleWorkerResult(msg.msg)
		return m, listenWorker(m.worker.out)

	case entryClosedMsg:
		// The entry flow does not say what it created; re-read everything.
		m.submit(m.ctrl.BeginReload())
		return m, listenEntryClosed(m.signal)

	case storeChangedMsg:
		m.submitExternalReload()
		return m, listenChanges(m.changes)

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	var cmd tea.Cmd
	m.surface.list, cmd = m.surface.list.Update(msg)
	return m, cmd
}

func (m appModel) handleWorkerResult(msg tea.Msg) {
	switch msg := msg.(type) {
	case gestureDoneMsg:
		if err := m.ctrl.Apply(msg.res); err != nil {
			return
		}
		switch msg.res.Op.Kind {
		case tasklist.OpDelete:
			m.surface.showInfo(fmt.Sprintf("Deleted: %s", msg.res.Op.Task.Title))
		case tasklist.OpToggle:
			if msg.res.Op.Task.Completed {
				m.surface.showInfo(fmt.Sprintf("Done: %s", msg.res.Op.Task.Title))
			} else {
				m.surface.showInfo(fmt.Sprintf("Reopened: %s", msg.res.Op.Task.Title))
			}
		}
	case entryDoneMsg:
		if msg.err != nil {
			m.surface.ShowError(fmt.Errorf("add: %w", msg.err))
			return
		}
		m.surface.showInfo("Task added")
	}
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.modal.open {
		return m.updateEntryModal(msg)
	}
	if m.pending != nil {
		op := *m.pending
		m.pending = nil
		if s := msg.String(); s == "y" || s == "Y" || s == "enter" {
			m.submit(op)
			return m, nil
		}
		m.surface.showInfo("Delete canceled")
		return m, nil
	}
	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
		return m, nil
	case "r":
		m.surface.clearFlash()
		m.submit(m.ctrl.BeginReload())
		return m, nil
	case "a", "n":
		m.surface.clearFlash()
		return m, m.modal.show()
	case "d", "delete":
		op, ok := m.ctrl.BeginDelete(m.surface.selected())
		if !ok {
			return m, nil
		}
		if m.confirmDelete {
			m.pending = &op
			m.surface.showInfo(fmt.Sprintf("Delete %q? (y/n)", op.Task.Title))
			return m, nil
		}
		m.surface.clearFlash()
		m.submit(op)
		return m, nil
	case " ", "space", "x":
		op, ok := m.ctrl.BeginToggle(m.surface.selected())
		if !ok {
			return m, nil
		}
		m.surface.clearFlash()
		m.submit(op)
		return m, nil
	case "K", "shift+up":
		m.move(-1)
		return m, nil
	case "J", "shift+down":
		m.move(1)
		return m, nil
	}

	var cmd tea.Cmd
	m.surface.list, cmd = m.surface.list.Update(msg)
	return m, cmd
}

func (m appModel) move(delta int) {
	from := m.surface.selected()
	if from < 0 {
		return
	}
	if m.ctrl.Move(from, from+delta) {
		m.surface.list.Select(from + delta)
	}
}

func (m *appModel) resizeList() {
	// header, blank, flash, blank, footer
	h := m.height - 5
	if h < 1 {
		h = 1
	}
	m.surface.list.SetSize(m.width, h)
}

func (m appModel) View() string {
	header := styleHeader().Render("Tasks") + "  " + styleMuted().Render(m.summary())

	var body string
	switch {
	case m.showHelp:
		body = renderMarkdown(helpText(), m.width-4)
	case m.ctrl.Len() == 0:
		body = styleMuted().Render("No tasks yet. Press a to add one.")
	default:
		body = m.surface.list.View()
	}

	flash := ""
	if m.surface.flash != "" {
		if m.surface.flashErr {
			flash = styleError().Render(m.surface.flash)
		} else {
			flash = styleFlash().Render(m.surface.flash)
		}
	}

	footer := styleMuted().Render("a: add  space: toggle  d: delete  K/J: move  r: reload  ?: help  q: quit")
	out := strings.Join([]string{header, body, flash, footer}, "\n\n")

	if m.modal.open {
		box := m.modal.view(m.width)
		if m.width > 0 && m.height > 0 {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
		}
		return out + "\n\n" + box
	}
	return out
}

func (m appModel) summary() string {
	tasks := m.ctrl.Tasks()
	return fmt.Sprintf("%d open, %d done  %s", countOpen(tasks), len(tasks)-countOpen(tasks), m.dir)
}

func countOpen(ts []model.Task) int {
	n := 0
	for _, t := range ts {
		if !t.Completed {
			n++
		}
	}
	return n
}

func helpText() string {
	if body, ok := docs.Get("keys"); ok {
		return body
	}
	return "Press q to quit."
}
