// internal/session/session.go
package session

import (
	"time"

	"movesight/internal/highlight"
	"movesight/internal/moved"
)

// Session is one detection run and everything needed to show it again.
type Session struct {
	ID            string            `json:"id"`
	CreatedAt     time.Time         `json:"created_at"`
	Source        string            `json:"source,omitempty"`
	DiffHash      string            `json:"diff_hash,omitempty"`
	InputHash     string            `json:"input_hash"`
	Files         []string          `json:"files"`
	LineCount     int               `json:"line_count"`
	MinLinesCount int               `json:"min_lines_count"`
	Result        moved.Result      `json:"result"`
	Highlights    []highlight.Block `json:"highlights"`
	Anchors       map[string]string `json:"anchors,omitempty"`
}

func (s *Session) GetID() string {
	return s.ID
}

// Request is the input of Service.Detect. When Diff is set the records are
// ignored and the diff is parsed instead.
type Request struct {
	Source  string
	Diff    []byte
	Removed []moved.Record
	Added   []moved.Record
	// MinLinesCount overrides the service default when set.
	MinLinesCount *int
}
