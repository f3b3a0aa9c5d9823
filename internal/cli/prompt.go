package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// prompter asks init questions on out and reads answers from in. End of
// input accepts the default answer.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// answer reads one trimmed line. eof reports that input ended.
func (p *prompter) answer() (text string, eof bool, err error) {
	line, err := p.in.ReadString('\n')
	switch {
	case errors.Is(err, io.EOF):
		return strings.TrimSpace(line), true, nil
	case err != nil:
		return "", false, err
	}
	return strings.TrimSpace(line), false, nil
}

// text asks for a value, re-asking on empty input when there is no default.
func (p *prompter) text(label, def string) (string, error) {
	for {
		if def == "" {
			fmt.Fprintf(p.out, "%s: ", label)
		} else {
			fmt.Fprintf(p.out, "%s [%s]: ", label, def)
		}
		value, eof, err := p.answer()
		if err != nil {
			return "", err
		}
		if value == "" {
			value = def
		}
		if value != "" {
			return value, nil
		}
		if eof {
			return "", fmt.Errorf("no answer for %s", label)
		}
	}
}

// confirm asks a yes/no question.
func (p *prompter) confirm(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(p.out, "%s [%s]: ", label, hint)
		value, eof, err := p.answer()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(value) {
		case "":
			return def, nil
		case "y", "yes", "是":
			return true, nil
		case "n", "no", "否":
			return false, nil
		}
		if eof {
			return false, fmt.Errorf("unrecognized answer %q", value)
		}
		fmt.Fprintln(p.out, "Answer y or n.")
	}
}
