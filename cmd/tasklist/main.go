package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"tasklist-cli/internal/cli"
)

func isTaskID(s string) bool {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	id, err := strconv.ParseInt(s, 10, 64)
	return err == nil && id > 0
}

// firstPositional returns the index of the first non-flag token in argv[1:],
// or -1. Value flags are skipped together with their value.
func firstPositional(argv []string) int {
	valueFlags := map[string]bool{
		"--dir":       true,
		"--config":    true,
		"--format":    true,
		"--log-level": true,
	}
	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		switch {
		case a == "":
			continue
		case a == "--":
			if i+1 < len(argv) {
				return i + 1
			}
			return -1
		case strings.HasPrefix(a, "-"):
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		return i
	}
	return -1
}

// rewriteDirectTaskLookupArgs turns `tasklist 3` into `tasklist show 3`.
// Cobra treats the first positional as a subcommand, so argv is rewritten
// before parsing.
func rewriteDirectTaskLookupArgs(argv []string) []string {
	i := firstPositional(argv)
	if i < 0 || !isTaskID(argv[i]) {
		return argv
	}
	out := make([]string, 0, len(argv)+1)
	out = append(out, argv[:i]...)
	out = append(out, "show")
	out = append(out, argv[i:]...)
	return out
}

func main() {
	os.Args = rewriteDirectTaskLookupArgs(os.Args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCmd()
	cmd.SetArgs(os.Args[1:])
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
