package diff

import (
	"fmt"

	"movesight/internal/moved"
)

// ChangeSet is the removed/added classification of a change, one record per
// line, in per-file order.
type ChangeSet struct {
	Files   []string       `json:"files"`
	Removed []moved.Record `json:"removed"`
	Added   []moved.Record `json:"added"`
}

// FromResult collects the removed and added lines of a single-file diff.
func FromResult(path string, r *DiffResult) *ChangeSet {
	cs := &ChangeSet{Files: []string{path}}
	for _, line := range r.Removed() {
		cs.Removed = append(cs.Removed, moved.Record{File: path, LineNumber: moved.LineNumber(line.OldNum), Text: line.Content})
	}
	for _, line := range r.Added() {
		cs.Added = append(cs.Added, moved.Record{File: path, LineNumber: moved.LineNumber(line.NewNum), Text: line.Content})
	}
	return cs
}

// Merge appends other's files and lines after cs's.
func (cs *ChangeSet) Merge(other *ChangeSet) {
	if other == nil {
		return
	}
	cs.Files = append(cs.Files, other.Files...)
	cs.Removed = append(cs.Removed, other.Removed...)
	cs.Added = append(cs.Added, other.Added...)
}

// Size is the total number of removed and added lines.
func (cs *ChangeSet) Size() int {
	return len(cs.Removed) + len(cs.Added)
}

// Lines validates the records and returns them as detector input.
func (cs *ChangeSet) Lines() (removed, added []moved.Line, err error) {
	removed, err = moved.Lines(cs.Removed)
	if err != nil {
		return nil, nil, fmt.Errorf("removed lines: %w", err)
	}
	added, err = moved.Lines(cs.Added)
	if err != nil {
		return nil, nil, fmt.Errorf("added lines: %w", err)
	}
	return removed, added, nil
}
