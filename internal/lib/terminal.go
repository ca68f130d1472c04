package lib

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

func IsTerminal(stream any) bool {
	f, ok := stream.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// RequestLineInput prints prompt and reads one line from reader.
// An empty answer yields def. EOF with no input is reported as an error.
func RequestLineInput(reader *bufio.Reader, out io.Writer, prompt, def string) (string, error) {
	label := prompt
	if def != "" {
		label = fmt.Sprintf("%s [%s]", prompt, def)
	}
	if _, err := fmt.Fprintf(out, "%s: ", label); err != nil {
		return "", fmt.Errorf("writing prompt: %w", err)
	}

	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	slog.Debug("line input received", "prompt", prompt)

	answer := strings.TrimSpace(line)
	if answer == "" {
		return def, nil
	}
	return answer, nil
}
