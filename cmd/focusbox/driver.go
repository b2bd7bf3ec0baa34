package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/osa030/focusbox/internal/app/coordinator"
	"github.com/osa030/focusbox/internal/app/scenario"
)

// driver maps input lines to coordinator intents.
type driver struct {
	coord   *coordinator.Coordinator
	emitter scenario.Emitter
	out     io.Writer
}

func newDriver(coord *coordinator.Coordinator, emitter scenario.Emitter, out io.Writer) *driver {
	return &driver{coord: coord, emitter: emitter, out: out}
}

// loop reads commands until quit or end of input.
func (d *driver) loop(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if quit := d.handle(ctx, scanner.Text()); quit {
			return nil
		}
	}
	return scanner.Err()
}

// handle executes one command line. Returns true on quit.
func (d *driver) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	cmd, arg, _ := strings.Cut(line, " ")

	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		d.printHelp()
	case "state":
		fmt.Fprintln(d.out, d.coord.Snapshot())
	case "result":
		// Candidates are separated by '|', best first
		candidates := strings.Split(arg, "|")
		for i := range candidates {
			candidates[i] = strings.TrimSpace(candidates[i])
		}
		if !d.emitter.Emit(candidates...) {
			fmt.Fprintln(d.out, "Recognition is not listening")
			return false
		}
		if err := d.coord.Settle(ctx); err != nil {
			fmt.Fprintf(d.out, "Error: %v\n", err)
		}
	default:
		intent, err := parseIntent(cmd)
		if err != nil {
			fmt.Fprintf(d.out, "Error: %v (type 'help')\n", err)
			return false
		}
		d.coord.Dispatch(ctx, intent)
	}
	return false
}

// parseIntent accepts an intent name or its 1-based button number.
func parseIntent(s string) (coordinator.Intent, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > len(coordinator.AllIntents) {
			return 0, fmt.Errorf("no intent number %d", n)
		}
		return coordinator.AllIntents[n-1], nil
	}
	return coordinator.ParseIntent(s)
}

func (d *driver) printHelp() {
	fmt.Fprintln(d.out, "Commands:")
	for n, i := range coordinator.AllIntents {
		fmt.Fprintf(d.out, "  %d, %-22s - %s\n", n+1, i.String(), i.Description())
	}
	fmt.Fprintln(d.out, "  result <text>[|<alt>...]  - Emit a recognition result")
	fmt.Fprintln(d.out, "  state                     - Print the current state")
	fmt.Fprintln(d.out, "  quit                      - Exit")
}
