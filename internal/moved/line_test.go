package moved

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLine(t *testing.T, file string, number int, text string) Line {
	t.Helper()
	line, err := NewLine(file, number, text)
	require.NoError(t, err)
	return line
}

func TestLine_Normalization(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantTrim    string
		wantLeading string
	}{
		{name: "leading and trailing", text: "    some_text   ", wantTrim: "some_text", wantLeading: "    "},
		{name: "tabs", text: "\t\tfoo()", wantTrim: "foo()", wantLeading: "\t\t"},
		{name: "no whitespace", text: "bar", wantTrim: "bar", wantLeading: ""},
		{name: "empty", text: "", wantTrim: "", wantLeading: ""},
		{name: "whitespace only", text: "   \t ", wantTrim: "", wantLeading: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := mustLine(t, "file", 1, tt.text)
			assert.Equal(t, tt.wantTrim, line.TrimText())
			assert.Equal(t, tt.wantLeading, line.LeadingWhitespace())
		})
	}
}

func TestLine_HashIgnoresWhitespace(t *testing.T) {
	a := mustLine(t, "a", 1, "  return nil")
	b := mustLine(t, "b", 7, "return nil\t")
	c := mustLine(t, "b", 8, "return err")

	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())
}

func TestLine_InvalidNumber(t *testing.T) {
	_, err := NewLine("file", 0, "x")
	assert.ErrorIs(t, err, ErrInvalidLineNumber)

	_, err = ParseLine("file", "twelve", "x")
	assert.ErrorIs(t, err, ErrInvalidLineNumber)

	line, err := ParseLine("file", " 12 ", "x")
	require.NoError(t, err)
	assert.Equal(t, 12, line.Number())
}

func TestLine_IsAdjacentTo(t *testing.T) {
	l12 := mustLine(t, "some_file", 12, "some_text")
	l13 := mustLine(t, "some_file", 13, "some_text2")
	other := mustLine(t, "other_file", 13, "some_text2")

	assert.True(t, l12.IsAdjacentTo(l13))
	assert.False(t, l13.IsAdjacentTo(l12))
	assert.False(t, l12.IsAdjacentTo(other))
}

func TestLine_IndentationDelta(t *testing.T) {
	removed := mustLine(t, "file", 12, "    some_text   ")
	added := mustLine(t, "file2", 100, "         some_text   ")

	ind := removed.IndentationDelta(added)
	assert.Equal(t, Added, ind.Direction)
	assert.Equal(t, "     ", ind.Whitespace)

	ind = added.IndentationDelta(removed)
	assert.Equal(t, Removed, ind.Direction)
	assert.Equal(t, "     ", ind.Whitespace)

	same := mustLine(t, "file2", 3, "    some_text")
	ind = removed.IndentationDelta(same)
	assert.Equal(t, Added, ind.Direction)
	assert.True(t, ind.IsZero())
}

func TestMatchesUnder(t *testing.T) {
	tests := []struct {
		name    string
		removed string
		added   string
		want    Direction
		ws      string
	}{
		{name: "indent added", removed: "    some_text", added: "         some_text   ", want: Added, ws: "     "},
		{name: "indent removed", removed: "    some_text", added: " some_text", want: Removed, ws: "   "},
		{name: "unchanged", removed: "    some_text", added: "    some_text", want: Added, ws: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			removed := mustLine(t, "file", 12, tt.removed)
			added := mustLine(t, "file2", 100, tt.added)

			ind := removed.IndentationDelta(added)
			assert.Equal(t, tt.want, ind.Direction)
			assert.Equal(t, tt.ws, ind.Whitespace)
			assert.True(t, MatchesUnder(removed, added, ind))
		})
	}

	removed := mustLine(t, "file", 1, "  x := 1")
	added := mustLine(t, "file", 2, "      x := 1")
	assert.False(t, MatchesUnder(removed, added, Indentation{Direction: Added, Whitespace: "  "}))

	otherText := mustLine(t, "file", 2, "  x := 2")
	assert.False(t, MatchesUnder(removed, otherText, Indentation{Direction: Added}))
}

func TestMatchesUnder_InvalidDirectionPanics(t *testing.T) {
	removed := mustLine(t, "file", 1, "x")
	added := mustLine(t, "file", 2, "x")

	assert.Panics(t, func() {
		MatchesUnder(removed, added, Indentation{Direction: Direction(42)})
	})
}

func TestRecord_LineNumberDecoding(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "number", input: `{"file":"a","line_number":7,"text":"x"}`, want: 7},
		{name: "numeric string", input: `{"file":"a","line_number":"8","text":"x"}`, want: 8},
		{name: "word", input: `{"file":"a","line_number":"eight","text":"x"}`, wantErr: true},
		{name: "fraction", input: `{"file":"a","line_number":1.5,"text":"x"}`, wantErr: true},
		{name: "bool", input: `{"file":"a","line_number":true,"text":"x"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Record
			err := json.Unmarshal([]byte(tt.input), &r)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, LineNumber(tt.want), r.LineNumber)
		})
	}
}

func TestLines_RejectsNonPositive(t *testing.T) {
	_, err := Lines([]Record{
		{File: "a", LineNumber: 1, Text: "ok"},
		{File: "a", LineNumber: -3, Text: "bad"},
	})
	assert.ErrorIs(t, err, ErrInvalidLineNumber)
	assert.Contains(t, err.Error(), "record 1")
}

func TestIndentation_JSON(t *testing.T) {
	for _, ind := range []Indentation{
		{},
		{Direction: Added, Whitespace: "\t"},
		{Direction: Removed, Whitespace: "    "},
	} {
		data, err := json.Marshal(ind)
		require.NoError(t, err)

		var got Indentation
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, ind, got)
	}

	var d Direction
	assert.Error(t, json.Unmarshal([]byte(`"sideways"`), &d))
}
