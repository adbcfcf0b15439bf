package highlight

import (
	"bytes"
	"testing"

	"movesight/internal/moved"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detect(t *testing.T, removed, added []moved.Record) moved.Result {
	t.Helper()
	r, err := moved.Lines(removed)
	require.NoError(t, err)
	a, err := moved.Lines(added)
	require.NoError(t, err)
	return moved.Detect(r, a, moved.Options{})
}

func TestBuilder_Build(t *testing.T) {
	res := detect(t,
		[]moved.Record{
			{File: "a.go", LineNumber: 10, Text: "if err != nil {"},
			{File: "a.go", LineNumber: 11, Text: "\treturn err"},
			{File: "a.go", LineNumber: 12, Text: "}"},
		},
		[]moved.Record{
			{File: "b.go", LineNumber: 3, Text: "\tif err != nil {"},
			{File: "b.go", LineNumber: 4, Text: "\t\treturn err"},
			{File: "b.go", LineNumber: 5, Text: "\t}"},
		},
	)
	require.Len(t, res.Blocks, 1)

	blocks := NewBuilder().Build(res.Blocks)
	require.Len(t, blocks, 1)

	b := blocks[0]
	assert.Equal(t, 0, b.Index)
	assert.Equal(t, Palette[0], b.Color)
	assert.InDelta(t, 3.0, b.Weight, 1e-9)
	require.Len(t, b.Lines, 3)

	assert.True(t, b.Lines[0].First)
	assert.False(t, b.Lines[0].Last)
	assert.True(t, b.Lines[2].Last)
	assert.Equal(t, "Block index: 0 Block match: 3.00 Line match: 1.00", b.Lines[0].Title)

	// the only difference is the extra tab on the added side
	assert.Equal(t, []Segment{{Text: "if err != nil {"}}, b.Lines[0].RemovedSegments)
	assert.Equal(t, []Segment{{Text: "\t", Changed: true}, {Text: "if err != nil {"}}, b.Lines[0].AddedSegments)
}

func TestColorFor_Wraps(t *testing.T) {
	assert.Equal(t, Palette[0], ColorFor(0))
	assert.Equal(t, Palette[1], ColorFor(len(Palette)+1))
}

func TestRender(t *testing.T) {
	res := detect(t,
		[]moved.Record{{File: "a.go", LineNumber: 1, Text: "const greeting = \"hello, moved world\""}},
		[]moved.Record{{File: "b.go", LineNumber: 9, Text: "const greeting = \"hello, moved world\""}},
	)
	blocks := NewBuilder().Build(res.Blocks)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, res, blocks, RenderOptions{NoColor: true, Lines: true}))

	out := buf.String()
	assert.Contains(t, out, "Detected 1 moved block\n")
	assert.Contains(t, out, "[0] a.go:1-1 -> b.go:9-9  (1 lines, 37 chars, match 1.00)")
	assert.Contains(t, out, "[0] -1 │ const greeting")
	assert.Contains(t, out, "[0] +9 │ const greeting")
}

func TestRender_EmptyAndSkipped(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, moved.Result{}, nil, RenderOptions{NoColor: true}))
	assert.Equal(t, "No moved blocks detected\n", buf.String())

	buf.Reset()
	require.NoError(t, Render(&buf, moved.Result{Skipped: true}, nil, RenderOptions{NoColor: true}))
	assert.Contains(t, buf.String(), "Detection disabled")
}
