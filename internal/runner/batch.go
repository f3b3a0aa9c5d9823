package runner

import (
	"slices"
	"sync"

	"emoeval/internal/record"
)

// Batch is the append-only result log of one task. It is safe for
// concurrent use by pool workers.
type Batch struct {
	mu      sync.Mutex
	records []record.Result
}

// NewBatch returns an empty batch sized for n records.
func NewBatch(n int) *Batch {
	return &Batch{records: make([]record.Result, 0, n)}
}

// Append adds a finished record.
func (b *Batch) Append(r record.Result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, r)
}

// Len returns the number of records appended so far.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}

// Records returns a copy of the log ordered by trial index.
func (b *Batch) Records() []record.Result {
	b.mu.Lock()
	out := slices.Clone(b.records)
	b.mu.Unlock()
	slices.SortStableFunc(out, func(x, y record.Result) int {
		return x.Index - y.Index
	})
	return out
}
