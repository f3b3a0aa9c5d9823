package runner

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

const runIDSuffixBytes = 6

// NewRunID returns a sortable run id: a UTC timestamp plus a random suffix.
func NewRunID() (string, error) {
	return NewRunIDWithRand(time.Now().UTC(), rand.Reader)
}

// NewRunIDWithRand draws the suffix from r, which must yield 16 bytes.
func NewRunIDWithRand(now time.Time, r io.Reader) (string, error) {
	if r == nil {
		return "", fmt.Errorf("random reader is nil")
	}
	id, err := uuid.NewRandomFromReader(r)
	if err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return FormatRunID(now, hex.EncodeToString(id[:runIDSuffixBytes])), nil
}

func FormatRunID(now time.Time, suffix string) string {
	return now.UTC().Format("20060102T150405Z") + "-" + suffix
}

func ensureRunID(provider func() (string, error)) (string, error) {
	if provider == nil {
		provider = NewRunID
	}
	runID, err := provider()
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	if runID == "" {
		return "", fmt.Errorf("run id is empty")
	}
	return runID, nil
}
