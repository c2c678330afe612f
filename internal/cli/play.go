package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var errQuit = errors.New("quit")

// play drives a live screen from the terminal: every distinct rendering of
// the state is printed once, and stdin lines go to handle. It returns when
// done reports true, handle returns errQuit, the user types q or ctx ends.
// A closed stdin only stops input.
func play[S any](ctx context.Context, cmd *cobra.Command, updates <-chan S, render func(S) string, done func(S) bool, handle func(string) error) error {
	lines := readLines(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	last := ""
	for {
		select {
		case <-ctx.Done():
			return nil
		case st, ok := <-updates:
			if !ok {
				return nil
			}
			if view := render(st); view != last {
				fmt.Fprintln(out, view)
				last = view
			}
			if done(st) {
				return nil
			}
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if line == "q" {
				return nil
			}
			err := handle(line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
		}
	}
}

// readLines never stops on its own: a blocked stdin read cannot be
// interrupted, and the process exits right after play returns.
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

// pick maps a 1-based menu number or a literal value onto choices.
func pick(input string, choices []string) (int, bool) {
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(choices) {
			return n - 1, true
		}
		return 0, false
	}
	for i, c := range choices {
		if strings.EqualFold(strings.TrimSpace(c), input) {
			return i, true
		}
	}
	return 0, false
}

func never[S any](S) bool { return false }
