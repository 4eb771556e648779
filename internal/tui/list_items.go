package tui

import (
	"fmt"

	"tasklist-cli/internal/model"
)

type taskItem struct {
	task model.Task
}

func (i taskItem) FilterValue() string { return i.task.Title }
func (i taskItem) Title() string       { return i.task.Title }
func (i taskItem) Description() string { return fmt.Sprintf("#%d", i.task.ID) }

func checkGlyph(done bool) string {
	if asciiGlyphs() {
		if done {
			return "[x]"
		}
		return "[ ]"
	}
	if done {
		return "☑"
	}
	return "☐"
}
