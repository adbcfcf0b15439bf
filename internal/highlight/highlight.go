// internal/highlight/highlight.go
package highlight

import (
	"fmt"

	"movesight/internal/moved"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Palette holds the block colours; block i uses Palette[i%len(Palette)].
var Palette = []string{
	"#058DC7", "#50B432", "#ED561B", "#DDDF00", "#24CBE5", "#64E572", "#FF9655", "#FFF263", "#6AF9C4",
	"#FF0000", "#FFA500", "#008000", "#0000FF", "#800080", "#A52A2A",
}

// Segment is a piece of line text, Changed when it differs from the other side.
type Segment struct {
	Text    string `json:"text"`
	Changed bool   `json:"changed,omitempty"`
}

// Line is one highlighted pairing of a block.
type Line struct {
	Removed          moved.LineRef `json:"removed"`
	Added            moved.LineRef `json:"added"`
	RemovedSegments  []Segment     `json:"removed_segments"`
	AddedSegments    []Segment     `json:"added_segments"`
	MatchProbability float64       `json:"match_probability"`
	First            bool          `json:"first,omitempty"`
	Last             bool          `json:"last,omitempty"`
	Title            string        `json:"title"`
}

// Block is a detected block ready to paint.
type Block struct {
	Index  int     `json:"index"`
	Color  string  `json:"color"`
	Weight float64 `json:"weight"`
	Lines  []Line  `json:"lines"`
}

// Builder turns detection results into highlight blocks.
type Builder struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

func NewBuilder() *Builder {
	return &Builder{dmp: diffmatchpatch.New()}
}

// Build assigns each block its presentation index and colour, in result order.
func (b *Builder) Build(blocks []moved.DetectedBlock) []Block {
	out := make([]Block, 0, len(blocks))
	for i, db := range blocks {
		out = append(out, b.block(i, db))
	}
	return out
}

func (b *Builder) block(index int, db moved.DetectedBlock) Block {
	weight := db.Weight()
	hb := Block{
		Index:  index,
		Color:  ColorFor(index),
		Weight: weight,
		Lines:  make([]Line, 0, len(db.Pairings)),
	}

	for i, p := range db.Pairings {
		removedSegs, addedSegs := b.segments(p.Removed.Text, p.Added.Text)
		hb.Lines = append(hb.Lines, Line{
			Removed:          p.Removed,
			Added:            p.Added,
			RemovedSegments:  removedSegs,
			AddedSegments:    addedSegs,
			MatchProbability: p.MatchProbability,
			First:            i == 0,
			Last:             i == len(db.Pairings)-1,
			Title:            fmt.Sprintf("Block index: %d Block match: %.2f Line match: %.2f", index, weight, p.MatchProbability),
		})
	}
	return hb
}

// segments diffs the two texts and splits the result per side. Paired lines
// only differ in leading whitespace, so changed segments mark indentation.
func (b *Builder) segments(removed, added string) ([]Segment, []Segment) {
	diffs := b.dmp.DiffMain(removed, added, false)
	diffs = b.dmp.DiffCleanupSemantic(diffs)

	var removedSegs, addedSegs []Segment
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			removedSegs = append(removedSegs, Segment{Text: d.Text})
			addedSegs = append(addedSegs, Segment{Text: d.Text})
		case diffmatchpatch.DiffDelete:
			removedSegs = append(removedSegs, Segment{Text: d.Text, Changed: true})
		case diffmatchpatch.DiffInsert:
			addedSegs = append(addedSegs, Segment{Text: d.Text, Changed: true})
		}
	}
	return removedSegs, addedSegs
}

func ColorFor(index int) string {
	return Palette[index%len(Palette)]
}
