package parse

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// fold maps full-width Latin letters, digits and punctuation to their
// narrow forms so "Ｔｅｎｓｉｏｎ：０.４" parses like "Tension:0.4".
func fold(text string) string {
	return width.Fold.String(text)
}

// normalizeLevel maps a captured ordinal token to its canonical level name.
func normalizeLevel(raw string, levels []Level) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return "", false
	}
	for _, level := range levels {
		if strings.ToLower(level.Name) == key {
			return level.Name, true
		}
		for _, alias := range level.Aliases {
			if strings.ToLower(alias) == key {
				return level.Name, true
			}
		}
	}
	return "", false
}

// scanLevel finds the positionally first level literal in free text.
// Single-rune aliases such as "中" are only honoured after a label because
// they occur inside ordinary words far too often.
func scanLevel(text string, levels []Level) (string, bool) {
	best := -1
	bestLen := 0
	name := ""
	consider := func(literal, levelName string) {
		if utf8.RuneCountInString(literal) < 2 {
			return
		}
		idx := strings.Index(text, literal)
		if idx < 0 {
			return
		}
		if best < 0 || idx < best || (idx == best && len(literal) > bestLen) {
			best, bestLen, name = idx, len(literal), levelName
		}
	}
	for _, level := range levels {
		consider(level.Name, level.Name)
		for _, alias := range level.Aliases {
			if alias == strings.ToLower(alias) && alias != strings.ToUpper(alias) {
				// lower-case English aliases duplicate the level name
				continue
			}
			consider(alias, level.Name)
		}
	}
	return name, best >= 0
}

// scanVocabulary returns the vocabulary entry occurring earliest in text.
func scanVocabulary(text string, vocabulary []string) (string, bool) {
	best := -1
	found := ""
	for _, word := range vocabulary {
		if word == "" {
			continue
		}
		idx := strings.Index(text, word)
		if idx < 0 {
			continue
		}
		if best < 0 || idx < best || (idx == best && len(word) > len(found)) {
			best, found = idx, word
		}
	}
	return found, best >= 0
}
