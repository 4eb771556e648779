package tui

import (
	"os"
	"strings"
)

// asciiGlyphs reports whether to avoid non-ASCII glyphs (TASKLIST_TUI_GLYPHS=ascii).
func asciiGlyphs() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("TASKLIST_TUI_GLYPHS")), "ascii")
}
