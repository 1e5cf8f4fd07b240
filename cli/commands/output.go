package commands

import (
	"encoding/json"
	"fmt"
	"strings"
)

type outputMode int

const (
	outputHuman outputMode = iota
	outputJSON
	outputPlain
)

func (a *App) outputMode() outputMode {
	switch {
	case a.jsonOutput:
		return outputJSON
	case a.plain:
		return outputPlain
	default:
		return outputHuman
	}
}

// writeOutput renders value for the current output mode. JSON mode prints
// value as one indented object; plain mode prints plainLines, falling back
// to compact JSON; human mode prints strings as-is and anything else as
// indented JSON.
func (a *App) writeOutput(value any, plainLines []string) error {
	switch a.outputMode() {
	case outputJSON:
		return a.writeJSON(value)
	case outputPlain:
		if len(plainLines) > 0 {
			_, err := fmt.Fprintln(a.stdout, strings.Join(plainLines, "\n"))
			return err
		}
		if s, ok := value.(string); ok {
			_, err := fmt.Fprintln(a.stdout, s)
			return err
		}
		data, err := jsonCompact(value)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.stdout, data)
		return err
	default:
		if s, ok := value.(string); ok {
			_, err := fmt.Fprintln(a.stdout, s)
			return err
		}
		return a.writeJSON(value)
	}
}

func (a *App) writeJSON(value any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

// logInfo writes a faint progress line to stderr unless --quiet is set.
func (a *App) logInfo(format string, args ...any) {
	if a.quiet {
		return
	}
	fmt.Fprintln(a.stderr, a.faint.Render(fmt.Sprintf(format, args...)))
}

func jsonCompact(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
