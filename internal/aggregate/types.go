package aggregate

import "emoeval/internal/parse"

// Options select what Summarize reports.
type Options struct {
	// AccuracyField is the categorical field compared with the true label.
	AccuracyField string
	TopK          int
	Fields        []parse.FieldSpec
	CallIDs       []string
}

// Summary is a read-only reduction of a result log.
type Summary struct {
	Total    int              `json:"total"`
	Accuracy *Accuracy        `json:"accuracy,omitempty"`
	Latency  []Latency        `json:"latency"`
	Outcomes []Count          `json:"outcomes"`
	Errors   []FieldErrors    `json:"errors"`
	Numeric  []NumericSummary `json:"numeric,omitempty"`
	Ordinal  []OrdinalSummary `json:"ordinal,omitempty"`
}

// Accuracy reports agreement with the ground truth. Valid is measured
// against Total; Percent is measured against Valid only.
type Accuracy struct {
	Field     string          `json:"field"`
	Total     int             `json:"total"`
	Valid     int             `json:"valid"`
	Correct   int             `json:"correct"`
	ValidRate float64         `json:"valid_rate"`
	Percent   float64         `json:"percent"`
	PerLabel  []LabelAccuracy `json:"per_label"`
	Confusion []ConfusionPair `json:"confusion"`
}

type LabelAccuracy struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Correct int     `json:"correct"`
	Percent float64 `json:"percent"`
}

type ConfusionPair struct {
	True      string `json:"true"`
	Predicted string `json:"predicted"`
	Count     int    `json:"count"`
}

// Latency describes elapsed seconds for one call id, or "total" per trial.
type Latency struct {
	Name   string  `json:"name"`
	Count  int     `json:"count"`
	Total  float64 `json:"total"`
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
}

// Count is one bucket of a categorical breakdown.
type Count struct {
	Key     string  `json:"key"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// FieldErrors is the failure breakdown of one field.
type FieldErrors struct {
	Field     string  `json:"field"`
	Total     int     `json:"total"`
	Failed    int     `json:"failed"`
	Rate      float64 `json:"rate"`
	Breakdown []Count `json:"breakdown"`
}

// NumericSummary describes the usable values of a numeric field. Std is the
// sample standard deviation and is nil for fewer than two values.
type NumericSummary struct {
	Field     string      `json:"field"`
	Precision int         `json:"precision"`
	Count     int         `json:"count"`
	Failed    int         `json:"failed"`
	Mean      float64     `json:"mean"`
	Min       float64     `json:"min"`
	Max       float64     `json:"max"`
	Median    float64     `json:"median"`
	Std       *float64    `json:"std"`
	ByLabel   []LabelMean `json:"by_label,omitempty"`
	Histogram []Bin       `json:"histogram,omitempty"`
}

type LabelMean struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
}

// Bin counts values in [Lower, Upper); the last bin also includes Upper.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// OrdinalSummary describes the level distribution of an ordinal field.
type OrdinalSummary struct {
	Field        string              `json:"field"`
	Valid        int                 `json:"valid"`
	Distribution []Count             `json:"distribution"`
	ByLabel      []LabelDistribution `json:"by_label,omitempty"`
}

type LabelDistribution struct {
	Label      string  `json:"label"`
	Counts     []Count `json:"counts"`
	MostCommon string  `json:"most_common"`
}
