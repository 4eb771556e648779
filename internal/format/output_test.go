package format

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"tasklist-cli/internal/model"
)

func TestWriteEDN_TaskUsesKebabKeywordsAndExactIDs(t *testing.T) {
	var buf bytes.Buffer
	task := model.Task{ID: 9007199254740993, Title: "Buy milk", CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	if err := Write(&buf, map[string]any{"data": task}, "edn", false); err != nil {
		t.Fatalf("write edn: %v", err)
	}
	got := buf.String()
	for _, want := range []string{`:id 9007199254740993`, `:title "Buy milk"`, `:completed false`, `:created-at "2026-01-02T03:04:05Z"`} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %s", want, got)
		}
	}
	if !strings.HasPrefix(got, "{:data {") {
		t.Fatalf("unexpected shape: %s", got)
	}
}

func TestWriteEDN_PrettyAndEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEDN(&buf, map[string]any{"data": []any{}, "n": nil}, true); err != nil {
		t.Fatalf("write edn: %v", err)
	}
	want := "{\n  :data []\n  :n nil\n}\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]any{"data": []model.Task{{ID: 1, Title: "Walk dog", Completed: true}}}, "yaml", false); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	got := buf.String()
	for _, want := range []string{"data:", "id: 1", "title: Walk dog", "completed: true"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in:\n%s", want, got)
		}
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, 1, "xml", false); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
