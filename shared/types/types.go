// Package types holds the JSON bodies exchanged between the server and
// its clients.
package types

import (
	"time"

	"movesight/internal/moved"
)

// DetectRequest carries pre-classified lines.
type DetectRequest struct {
	Removed       []moved.Record `json:"removed"`
	Added         []moved.Record `json:"added"`
	MinLinesCount *int           `json:"min_lines_count,omitempty"`
}

// DiffRequest carries a raw unified diff, e.g. the output of git diff.
type DiffRequest struct {
	Diff          string `json:"diff" validate:"required"`
	Source        string `json:"source,omitempty" validate:"max=512"`
	MinLinesCount *int   `json:"min_lines_count,omitempty"`
}

// SessionSummary is the list view of a session.
type SessionSummary struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Source        string    `json:"source,omitempty"`
	Files         []string  `json:"files"`
	LineCount     int       `json:"line_count"`
	MinLinesCount int       `json:"min_lines_count"`
	BlockCount    int       `json:"block_count"`
	Skipped       bool      `json:"skipped,omitempty"`
}

type Health struct {
	Status string `json:"status"`
}
