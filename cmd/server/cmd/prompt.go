package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Terminal seams so tests can drive prompts from a plain reader.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// prompter asks for missing values on stderr and reads answers from the
// command's input.
type prompter struct {
	cmd    *cobra.Command
	reader *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	return &prompter{cmd: cmd, reader: bufio.NewReader(cmd.InOrStdin())}
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprintf(p.cmd.ErrOrStderr(), "%s: ", label)
	text, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && text != "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(text), nil
}

// password reads without echo when input is a terminal. Piped input is read
// as a line and kept verbatim apart from the line ending.
func (p *prompter) password(label string) (string, error) {
	errOut := p.cmd.ErrOrStderr()
	if f, ok := p.cmd.InOrStdin().(*os.File); ok && isTerminal(int(f.Fd())) {
		fmt.Fprintf(errOut, "%s: ", label)
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(errOut)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
		}
		return string(pw), nil
	}

	fmt.Fprintf(errOut, "%s: ", label)
	text, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && text != "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(text, "\r\n"), nil
}

// valueOrPrompt returns value if set, otherwise asks for it.
func (p *prompter) valueOrPrompt(value, label string, secret bool) (string, error) {
	if value != "" {
		return value, nil
	}
	if secret {
		return p.password(label)
	}
	return p.line(label)
}
