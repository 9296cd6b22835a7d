// Package cliprompt asks for confirmation of destructive table operations
// on the terminal.
package cliprompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/artpar/gridpatch/ports"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when confirmation is needed but stdin is not
// a terminal and answers were not pre-approved.
var ErrNotInteractive = errors.New("confirmation required: stdin is not a terminal (use --yes)")

// Prompter implements ports.Prompter with a y/N question.
type Prompter struct {
	reader      *bufio.Reader
	out         io.Writer
	interactive bool
	assumeYes   bool
}

// New creates a prompter reading answers from in. interactive reports
// whether in is a terminal a person can answer on.
func New(in io.Reader, out io.Writer, interactive, assumeYes bool) *Prompter {
	return &Prompter{
		reader:      bufio.NewReader(in),
		out:         out,
		interactive: interactive,
		assumeYes:   assumeYes,
	}
}

// NewTerminal creates a prompter on stdin and stderr.
func NewTerminal(assumeYes bool) *Prompter {
	return New(os.Stdin, os.Stderr, term.IsTerminal(int(os.Stdin.Fd())), assumeYes)
}

// Prompt resolves the prompt before returning: it commits when the answer
// is yes (or pre-approved) and cancels otherwise.
func (p *Prompter) Prompt(ctx context.Context, prompt ports.Prompt) error {
	if p.assumeYes {
		return prompt.Commit(ctx)
	}
	if !p.interactive {
		prompt.Cancel()
		return ErrNotInteractive
	}

	ok, err := p.Confirm(prompt.Message)
	if err != nil {
		prompt.Cancel()
		return err
	}
	if !ok {
		prompt.Cancel()
		return nil
	}
	return prompt.Commit(ctx)
}

// Confirm prompts for yes/no confirmation.
func (p *Prompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return false, err
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// Ensure interface compliance.
var _ ports.Prompter = (*Prompter)(nil)
