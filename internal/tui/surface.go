package tui

import (
	"errors"
	"fmt"

	"tasklist-cli/internal/model"
	"tasklist-cli/internal/store"

	"github.com/charmbracelet/bubbles/list"
)

// listSurface is the rendering surface the controller signals. Its rows are
// index-for-index the controller's mirror; filtering is disabled so list
// indexes and mirror positions never disagree.
type listSurface struct {
	list list.Model

	flash    string
	flashErr bool
}

func newListSurface() *listSurface {
	l := list.New([]list.Item{}, newTaskDelegate(), 0, 0)
	l.Title = "Tasks"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("task", "tasks")
	l.DisableQuitKeybindings()
	return &listSurface{list: l}
}

func (s *listSurface) Refresh(tasks []model.Task) {
	idx := s.list.Index()
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, taskItem{task: t})
	}
	s.list.SetItems(items)
	s.clampSelection(idx)
}

func (s *listSurface) RowRemoved(pos int) {
	idx := s.list.Index()
	s.list.RemoveItem(pos)
	s.clampSelection(idx)
}

func (s *listSurface) RowChanged(pos int, t model.Task) {
	s.list.SetItem(pos, taskItem{task: t})
}

func (s *listSurface) ShowError(err error) {
	s.flash = userMessage(err)
	s.flashErr = true
}

func (s *listSurface) showInfo(msg string) {
	s.flash = msg
	s.flashErr = false
}

func (s *listSurface) clearFlash() {
	s.flash = ""
	s.flashErr = false
}

func (s *listSurface) clampSelection(idx int) {
	n := len(s.list.Items())
	if n == 0 {
		return
	}
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	s.list.Select(idx)
}

func (s *listSurface) selected() int {
	if len(s.list.Items()) == 0 {
		return -1
	}
	return s.list.Index()
}

// userMessage turns store errors into something short enough for the flash line.
func userMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, store.ErrNotFound):
		return fmt.Sprintf("Task no longer exists (press r to reload): %v", err)
	case errors.Is(err, store.ErrStorageFailure):
		return fmt.Sprintf("Could not save: %v", err)
	case errors.Is(err, store.ErrInvalidInput):
		return fmt.Sprintf("Invalid input: %v", err)
	default:
		return err.Error()
	}
}
