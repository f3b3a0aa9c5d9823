package parse

import (
	"strconv"
	"strings"
)

// Kind describes how a field's value is extracted and typed.
type Kind string

const (
	KindCategorical Kind = "categorical"
	KindOrdinal     Kind = "ordinal"
	KindInt         Kind = "int"
	KindFloat       Kind = "float"
)

// Numeric reports whether the kind carries a number.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindCategorical, KindOrdinal, KindInt, KindFloat:
		return true
	default:
		return false
	}
}

// Status tags a parsed value as usable data or as a failure.
type Status string

const (
	StatusOK         Status = "ok"
	StatusError      Status = "error"
	StatusParseError Status = "parse_error"
)

// Sentinel strings used when a failed value has to be rendered as text.
const (
	SentinelError      = "ERROR"
	SentinelParseError = "PARSE_ERROR"
)

// Parse failure reasons.
const (
	ReasonNoMatch       = "no match"
	ReasonInvalidNumber = "invalid number"
	ReasonUnknownLevel  = "unrecognized level"
	ReasonInternal      = "internal failure"
)

// Level is one canonical value of an ordinal field and the spellings that map to it.
type Level struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
}

// FieldSpec declares one field to extract from a response.
type FieldSpec struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
	// Labels are the tokens that introduce the value, e.g. "情緒" in "情緒：喜悅".
	Labels []string `json:"labels"`
	// Vocabulary is the closed value set scanned when no labeled value is found.
	Vocabulary []string `json:"vocabulary,omitempty"`
	Levels     []Level  `json:"levels,omitempty"`
	// Precision is the number of decimals used when displaying numeric values.
	Precision int `json:"precision,omitempty"`
	// BinWidth is the histogram bucket width for numeric values.
	BinWidth float64 `json:"bin_width,omitempty"`
}

// Value is the tagged result of extracting one field.
type Value struct {
	Field  string  `json:"field"`
	Kind   Kind    `json:"kind"`
	Status Status  `json:"status"`
	Text   string  `json:"text,omitempty"`
	Number float64 `json:"number,omitempty"`
	// Raw is the captured token, kept for diagnostics when conversion fails.
	Raw    string `json:"raw,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// OK reports whether the value holds usable data.
func (v Value) OK() bool {
	return v.Status == StatusOK
}

// Float returns the numeric value and whether it is usable.
func (v Value) Float() (float64, bool) {
	if !v.OK() || !v.Kind.Numeric() {
		return 0, false
	}
	return v.Number, true
}

// Label returns the categorical or ordinal value and whether it is usable.
func (v Value) Label() (string, bool) {
	if !v.OK() || v.Kind.Numeric() {
		return "", false
	}
	return v.Text, true
}

// Sentinel returns the marker text for failed values, or "" for usable ones.
func (v Value) Sentinel() string {
	switch v.Status {
	case StatusError:
		return SentinelError
	case StatusParseError:
		return SentinelParseError
	default:
		return ""
	}
}

// FailureKey groups failures for error breakdowns.
func (v Value) FailureKey() string {
	switch v.Status {
	case StatusError:
		if v.Reason != "" {
			return v.Reason
		}
		return SentinelError
	case StatusParseError:
		if v.Reason == "" || v.Reason == ReasonNoMatch {
			return SentinelParseError
		}
		return SentinelParseError + ": " + v.Reason
	default:
		return ""
	}
}

// Display renders the value for tables, using sentinels for failures.
func (v Value) Display(precision int) string {
	if !v.OK() {
		return v.Sentinel()
	}
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(int64(v.Number), 10)
	case KindFloat:
		if precision <= 0 {
			return strconv.FormatFloat(v.Number, 'f', -1, 64)
		}
		return strconv.FormatFloat(v.Number, 'f', precision, 64)
	default:
		return v.Text
	}
}

// Fields is the ordered set of values extracted from one or more responses.
type Fields []Value

// Get returns the value for the named field.
func (f Fields) Get(name string) (Value, bool) {
	for _, value := range f {
		if strings.EqualFold(value.Field, name) {
			return value, true
		}
	}
	return Value{}, false
}

// Names lists field names in order.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for _, value := range f {
		names = append(names, value.Field)
	}
	return names
}
