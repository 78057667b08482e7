package runner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrConflict is returned when both --api-key and --list are given.
var ErrConflict = errors.New("--api-key and --list are mutually exclusive")

// promptKey asks for a single API key on in.
func promptKey(in *bufio.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Please enter the Google Maps API key you wanted to test: ")
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading API key: %w", err)
	}
	key := strings.TrimSpace(line)
	if key == "" {
		return "", errors.New("no API key provided")
	}
	return key, nil
}

// isTerminal reports whether w is an interactive terminal. Colour and the
// progress line are only drawn on terminals.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
