package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// ReadPassword prompts for a password on the terminal without echoing it.
// When stdin is not a terminal a single line is read instead, so scripts can pipe it in.
// Caller must zero the returned slice after use for security.
func ReadPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return readPasswordLine(pipedStdin())
	}

	raw, err := term.ReadPassword(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return checkPassword(raw)
}

// ReadNewPassword prompts twice and requires both entries to match.
func ReadNewPassword() ([]byte, error) {
	first, err := ReadPassword("New wallet password: ")
	if err != nil {
		return nil, err
	}
	second, err := ReadPassword("Repeat password: ")
	if err != nil {
		clear(first)
		return nil, err
	}
	defer clear(second)
	if string(first) != string(second) {
		clear(first)
		return nil, errors.New("passwords do not match")
	}
	return first, nil
}

// Piped stdin is read through one shared reader: a fresh bufio.Reader per
// prompt would swallow the lines meant for the following prompts.
var (
	stdinMu     sync.Mutex
	stdinFile   *os.File
	stdinReader *bufio.Reader
)

func pipedStdin() *bufio.Reader {
	stdinMu.Lock()
	defer stdinMu.Unlock()
	if stdinReader == nil || stdinFile != os.Stdin {
		stdinFile = os.Stdin
		stdinReader = bufio.NewReader(os.Stdin)
	}
	return stdinReader
}

func readPasswordLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return checkPassword([]byte(strings.TrimRight(line, "\r\n")))
}

func checkPassword(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	clear(raw)
	return out, nil
}
