package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var errInteractiveStdin = errors.New("expected piped stdin but stdin is interactive")

// isTerminal reports whether r is a terminal file descriptor.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// readStdinText reads all of piped stdin and trims surrounding whitespace.
func (a *App) readStdinText() (string, error) {
	if a.isTerminal(a.stdin) {
		return "", usageError(errInteractiveStdin)
	}

	data, err := io.ReadAll(a.stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// readSecret reads a secret value. On a terminal it prompts on stderr and
// reads without echo; otherwise it reads piped stdin.
func (a *App) readSecret(name string) (string, error) {
	f, ok := a.stdin.(*os.File)
	if !ok || !a.isTerminal(a.stdin) {
		return a.readStdinText()
	}

	fmt.Fprintf(a.stderr, "Enter %s: ", name)
	value, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(a.stderr) // Newline after hidden input
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return strings.TrimSpace(string(value)), nil
}
