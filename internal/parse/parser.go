package parse

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Error sentinel texts produced by failed inference calls.
const (
	SentinelTimeout = "TIMEOUT_ERROR"
	HTTPErrorPrefix = "HTTP_ERROR_"
	ErrorPrefix     = "ERROR: "
)

var httpSentinelPattern = regexp.MustCompile(`^HTTP_ERROR_\d{3}$`)

// ErrorSentinel reports whether the whole text is a failure marker left by a
// failed call, and returns the trimmed marker.
func ErrorSentinel(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	switch {
	case trimmed == SentinelTimeout, trimmed == SentinelError:
		return trimmed, true
	case httpSentinelPattern.MatchString(trimmed):
		return trimmed, true
	case strings.HasPrefix(trimmed, ErrorPrefix):
		return trimmed, true
	default:
		return "", false
	}
}

type compiledField struct {
	spec    FieldSpec
	labeled *regexp.Regexp
	stop    *regexp.Regexp
}

// Parser extracts a fixed set of fields from response text. It holds no
// mutable state and is safe for concurrent use.
type Parser struct {
	fields []compiledField
}

// New compiles a parser for the given field declarations.
func New(specs []FieldSpec) (*Parser, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("at least one field is required")
	}
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return nil, fmt.Errorf("field name is required")
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("duplicate field %q", name)
		}
		seen[name] = struct{}{}
		if !spec.Kind.Valid() {
			return nil, fmt.Errorf("field %q: unsupported kind %q", name, spec.Kind)
		}
		if len(nonEmpty(spec.Labels)) == 0 {
			return nil, fmt.Errorf("field %q: at least one label is required", name)
		}
		if spec.Kind == KindOrdinal && len(spec.Levels) == 0 {
			return nil, fmt.Errorf("field %q: ordinal fields need levels", name)
		}
	}

	parser := &Parser{fields: make([]compiledField, 0, len(specs))}
	for i, spec := range specs {
		spec.Name = strings.TrimSpace(spec.Name)
		labels := labelAlternation(spec.Labels)
		var capture string
		if spec.Kind.Numeric() {
			capture = `\s*([0-9.]*)`
		} else {
			capture = `\s*([^\n\r]*)`
		}
		labeled, err := regexp.Compile(`(?i)(?:` + labels + `)[ \t\x{3000}]*[：:]` + capture)
		if err != nil {
			return nil, fmt.Errorf("field %q: compile pattern: %w", spec.Name, err)
		}
		var others []string
		for j, other := range specs {
			if j != i {
				others = append(others, nonEmpty(other.Labels)...)
			}
		}
		stopPattern := `[：:]`
		if len(others) > 0 {
			stopPattern = `(?i)(?:` + labelAlternation(others) + `|[：:])`
		}
		stop, err := regexp.Compile(stopPattern)
		if err != nil {
			return nil, fmt.Errorf("field %q: compile stop pattern: %w", spec.Name, err)
		}
		parser.fields = append(parser.fields, compiledField{spec: spec, labeled: labeled, stop: stop})
	}
	return parser, nil
}

// MustNew is New for static field sets; it panics on invalid declarations.
func MustNew(specs ...FieldSpec) *Parser {
	parser, err := New(specs)
	if err != nil {
		panic(err)
	}
	return parser
}

// Specs returns the declared fields in order.
func (p *Parser) Specs() []FieldSpec {
	specs := make([]FieldSpec, 0, len(p.fields))
	for _, field := range p.fields {
		specs = append(specs, field.spec)
	}
	return specs
}

// Parse extracts every declared field from text. Text that is entirely an
// error sentinel marks every field as an error without pattern matching.
func (p *Parser) Parse(text string) Fields {
	if sentinel, ok := ErrorSentinel(text); ok {
		return p.Fail(sentinel)
	}
	folded := fold(text)
	out := make(Fields, 0, len(p.fields))
	for _, field := range p.fields {
		out = append(out, field.extract(folded))
	}
	return out
}

// Fail marks every declared field as an error carrying reason.
func (p *Parser) Fail(reason string) Fields {
	out := make(Fields, 0, len(p.fields))
	for _, field := range p.fields {
		out = append(out, Value{
			Field:  field.spec.Name,
			Kind:   field.spec.Kind,
			Status: StatusError,
			Reason: reason,
		})
	}
	return out
}

func (f compiledField) extract(text string) (value Value) {
	value = Value{Field: f.spec.Name, Kind: f.spec.Kind}
	defer func() {
		if recovered := recover(); recovered != nil {
			value = f.parseError(ReasonInternal, "")
		}
	}()

	switch f.spec.Kind {
	case KindInt, KindFloat:
		return f.extractNumber(text)
	case KindOrdinal:
		return f.extractLevel(text)
	default:
		return f.extractCategory(text)
	}
}

func (f compiledField) extractCategory(text string) Value {
	if captured, ok := f.labeledValue(text); ok {
		return f.ok(captured, captured)
	}
	if word, ok := scanVocabulary(text, f.spec.Vocabulary); ok {
		return f.ok(word, "")
	}
	return f.parseError(ReasonNoMatch, "")
}

func (f compiledField) extractLevel(text string) Value {
	if captured, ok := f.labeledValue(text); ok {
		if level, ok := normalizeLevel(captured, f.spec.Levels); ok {
			return f.ok(level, captured)
		}
		return f.parseError(ReasonUnknownLevel, captured)
	}
	if level, ok := scanLevel(text, f.spec.Levels); ok {
		return f.ok(level, "")
	}
	return f.parseError(ReasonNoMatch, "")
}

func (f compiledField) extractNumber(text string) Value {
	match := f.labeled.FindStringSubmatch(text)
	if match == nil {
		return f.parseError(ReasonNoMatch, "")
	}
	raw := match[1]
	number, ok := convertNumber(raw, f.spec.Kind)
	if !ok {
		return f.parseError(ReasonInvalidNumber, raw)
	}
	value := Value{Field: f.spec.Name, Kind: f.spec.Kind, Status: StatusOK, Number: number, Raw: raw}
	return value
}

// labeledValue returns the trimmed text after the field label, cut at the
// next field label, colon or line break.
func (f compiledField) labeledValue(text string) (string, bool) {
	match := f.labeled.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	captured := match[1]
	if loc := f.stop.FindStringIndex(captured); loc != nil {
		captured = captured[:loc[0]]
	}
	captured = strings.TrimSpace(captured)
	return captured, captured != ""
}

func (f compiledField) ok(text, raw string) Value {
	return Value{Field: f.spec.Name, Kind: f.spec.Kind, Status: StatusOK, Text: text, Raw: raw}
}

func (f compiledField) parseError(reason, raw string) Value {
	return Value{Field: f.spec.Name, Kind: f.spec.Kind, Status: StatusParseError, Reason: reason, Raw: raw}
}

func convertNumber(raw string, kind Kind) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	if kind == KindInt {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return float64(n), true
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false
		}
		return f, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func labelAlternation(labels []string) string {
	quoted := make([]string, 0, len(labels))
	for _, label := range nonEmpty(labels) {
		quoted = append(quoted, regexp.QuoteMeta(label))
	}
	return strings.Join(quoted, "|")
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
