package runner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"

	"emoeval/internal/parse"
	"emoeval/internal/record"
)

const verbosePrefix = "[verbose]"

// sentencePreviewRunes caps how much of a sentence a progress line shows.
const sentencePreviewRunes = 40

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiDim    = "\x1b[2m"
	ansiGray   = "\x1b[90m"
	ansiGreen  = "\x1b[32m"
	ansiRed    = "\x1b[31m"
	ansiBlue   = "\x1b[34m"
	ansiYellow = "\x1b[33m"
)

type verboseStyle int

const (
	styleDefault verboseStyle = iota
	styleTask
	styleMetrics
	styleWarn
	styleError
)

func logVerbose(enabled bool, writer io.Writer, noColor bool, style verboseStyle, format string, args ...any) {
	if !enabled || writer == nil {
		return
	}
	palette := paletteFor(writer, noColor)
	line := fmt.Sprintf(format, args...)
	fmt.Fprintf(writer, "%s %s\n", palette.prefix(verbosePrefix), palette.apply(style, line))
}

// trialStyle colors a finished trial by its outcome.
func trialStyle(event TrialEventType) verboseStyle {
	switch event {
	case TrialCorrect:
		return styleMetrics
	case TrialIncorrect, TrialParseError:
		return styleWarn
	case TrialFailed:
		return styleError
	default:
		return styleDefault
	}
}

// formatProgress renders "3/40 (7.5%)".
func formatProgress(done, total int) string {
	if total <= 0 {
		return fmt.Sprintf("%d/?", done)
	}
	return fmt.Sprintf("%d/%d (%.1f%%)", done, total, float64(done)/float64(total)*100)
}

// formatFields renders parsed values as "name=value" pairs.
func formatFields(specs []parse.FieldSpec, r record.Result) string {
	parts := make([]string, 0, len(specs))
	for _, spec := range specs {
		value, ok := r.Field(spec.Name)
		if !ok {
			continue
		}
		parts = append(parts, spec.Name+"="+value.Display(spec.Precision))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

func previewSentence(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= sentencePreviewRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:sentencePreviewRunes]) + "..."
}

type verbosePalette struct {
	enabled bool
}

func paletteFor(writer io.Writer, noColor bool) verbosePalette {
	if noColor {
		return verbosePalette{enabled: false}
	}
	return verbosePalette{enabled: ShouldUseStyling(writer)}
}

// ShouldUseStyling reports whether ANSI styling suits writer: a terminal,
// with NO_COLOR, TERM=dumb and CLICOLOR=0 all unset.
func ShouldUseStyling(writer io.Writer) bool {
	if writer == nil {
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	if strings.EqualFold(os.Getenv("CLICOLOR"), "0") {
		return false
	}
	if file, ok := writer.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	if fder, ok := writer.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(fder.Fd()))
	}
	return false
}

func (p verbosePalette) prefix(text string) string {
	if !p.enabled {
		return text
	}
	return ansiDim + ansiGray + text + ansiReset
}

func (p verbosePalette) apply(style verboseStyle, text string) string {
	if !p.enabled {
		return text
	}
	switch style {
	case styleTask:
		return ansiBold + ansiBlue + text + ansiReset
	case styleMetrics:
		return ansiBold + ansiGreen + text + ansiReset
	case styleWarn:
		return ansiYellow + text + ansiReset
	case styleError:
		return ansiBold + ansiRed + text + ansiReset
	default:
		return text
	}
}
