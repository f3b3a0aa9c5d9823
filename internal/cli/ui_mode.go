package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// uiMode names how run progress is shown.
type uiMode string

const (
	uiAuto  uiMode = "auto"
	uiLive  uiMode = "live"
	uiPlain uiMode = "plain"
)

// uiModeDecision is the resolved console mode plus an optional notice.
type uiModeDecision struct {
	useLive bool
	warning string
}

// isTerminal reports whether stdout is a TTY. Tests replace it.
var isTerminal = writerIsTerminal

// resolveUIMode picks the live table or plain output. Verbose output is
// line based and always plain.
func resolveUIMode(mode string, verbose bool, stdout io.Writer) (uiModeDecision, error) {
	m := uiMode(strings.ToLower(strings.TrimSpace(mode)))
	if m == "" {
		m = uiAuto
	}
	switch m {
	case uiAuto, uiLive, uiPlain:
	default:
		return uiModeDecision{}, fmt.Errorf("invalid --ui %q (want auto, live or plain)", mode)
	}
	if verbose || m == uiPlain {
		return uiModeDecision{}, nil
	}
	tty := isTerminal(stdout)
	if m == uiLive && !tty {
		return uiModeDecision{warning: "stdout is not a terminal; using plain output instead of the live UI"}, nil
	}
	return uiModeDecision{useLive: tty}, nil
}

func writerIsTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}
