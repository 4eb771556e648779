package tui

import (
	"bytes"
	"strings"
	"testing"

	"tasklist-cli/internal/model"

	"github.com/charmbracelet/bubbles/list"
	xansi "github.com/charmbracelet/x/ansi"
)

func TestTaskDelegate_NarrowListRendersNothing(t *testing.T) {
	item := taskItem{task: model.Task{ID: 1, Title: "too narrow"}}
	l := list.New([]list.Item{item}, newTaskDelegate(), 4, 10)

	var buf bytes.Buffer
	newTaskDelegate().Render(&buf, l, 0, item)
	if buf.Len() != 0 {
		t.Fatalf("expected no output below minimum width, got %q", buf.String())
	}
}

func TestTaskDelegate_LineFitsWidthAndShowsID(t *testing.T) {
	item := taskItem{task: model.Task{ID: 7, Title: strings.Repeat("long title ", 10)}}
	l := list.New([]list.Item{item}, newTaskDelegate(), 40, 10)

	var buf bytes.Buffer
	newTaskDelegate().Render(&buf, l, 0, item)
	out := xansi.Strip(buf.String())
	if !strings.HasSuffix(out, "#7") {
		t.Fatalf("expected id at line end, got %q", out)
	}
	if w := xansi.StringWidth(out); w > 40 {
		t.Fatalf("expected line within 40 cells, got %d: %q", w, out)
	}
}
