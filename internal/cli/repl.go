package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// Run performs the initial load and then reads commands from in until EOF,
// exit or cancellation of ctx.
func (a *App) Run(ctx context.Context, in io.Reader) {
	_ = a.Reload(ctx)
	runREPL(ctx, a, bufio.NewScanner(in))
}

// status is shown in the prompt.
func (a *App) status() string {
	state, _ := a.State()
	s := state.String()
	if state == StateReady {
		v := a.View()
		s = fmt.Sprintf("%d/%d", len(v.Transactions), v.Total)
	}
	if _, ok := a.Pending(); ok {
		s += ", confirm?"
	}
	return s
}

// runREPL reads a line, splits it into fields and dispatches the first one
// through the command table. Command errors are reported to the user as
// notifications by the commands themselves, so the loop only logs them.
func runREPL(ctx context.Context, a *App, scanner *bufio.Scanner) {
	table := dispatchTable()
	logger := clientLogger()

	for {
		flushNotifications(a)
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("fintrack [%s]> ", a.status()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		name := strings.ToLower(parts[0])

		switch name {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		cmd, ok := table[name]
		if !ok {
			printlnFn("Unknown command:", name, "(type help)")
			continue
		}
		if err := cmd.run(ctx, a, parts[1:]); err != nil {
			logger.DebugContext(ctx, "Command failed", "command", name, "error", err)
		}
	}
}

func flushNotifications(a *App) {
	for _, n := range a.notes.Unseen() {
		printlnFn(fmt.Sprintf("[%s] %s", n.Kind, n.Message))
	}
}
