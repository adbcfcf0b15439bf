// internal/moved/line.go
package moved

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

var ErrInvalidLineNumber = errors.New("invalid line number")

// Line is one removed or added line of a change set.
// All derived fields are computed once in NewLine and never change.
type Line struct {
	file      string
	number    int
	trimText  string
	leadingWS string
	hash      uint64
}

// NewLine normalizes a (file, line number, text) triple.
func NewLine(file string, number int, text string) (Line, error) {
	if number < 1 {
		return Line{}, fmt.Errorf("%w: %d", ErrInvalidLineNumber, number)
	}

	trimmed := strings.TrimSpace(text)
	var leading string
	if trimmed != "" {
		start := len(text) - len(strings.TrimLeftFunc(text, unicode.IsSpace))
		leading = text[:start]
	}

	return Line{
		file:      file,
		number:    number,
		trimText:  trimmed,
		leadingWS: leading,
		hash:      hashText(trimmed),
	}, nil
}

// ParseLine is NewLine for line numbers that arrive as text.
func ParseLine(file, number, text string) (Line, error) {
	n, err := strconv.Atoi(strings.TrimSpace(number))
	if err != nil {
		return Line{}, fmt.Errorf("%w: %q", ErrInvalidLineNumber, number)
	}
	return NewLine(file, n, text)
}

func (l Line) File() string              { return l.file }
func (l Line) Number() int               { return l.number }
func (l Line) TrimText() string          { return l.trimText }
func (l Line) LeadingWhitespace() string { return l.leadingWS }
func (l Line) Hash() uint64              { return l.hash }

// Text rebuilds the line as it appeared, minus trailing whitespace.
func (l Line) Text() string {
	return l.leadingWS + l.trimText
}

// IsAdjacentTo reports whether other directly follows l in the same file.
func (l Line) IsAdjacentTo(other Line) bool {
	return l.file == other.file && l.number+1 == other.number
}

// IndentationDelta returns the whitespace difference between l (the removed
// line) and other (its added counterpart).
func (l Line) IndentationDelta(other Line) Indentation {
	diff := len(l.leadingWS) - len(other.leadingWS)
	if diff > 0 {
		return Indentation{Direction: Removed, Whitespace: l.leadingWS[:diff]}
	}
	return Indentation{Direction: Added, Whitespace: other.leadingWS[:-diff]}
}

// MatchesUnder reports whether removed and added carry the same trimmed text
// and differ in leading whitespace exactly by indentation.
// An unknown direction is a programming error and panics.
func MatchesUnder(removed, added Line, indentation Indentation) bool {
	if removed.trimText != added.trimText {
		return false
	}

	switch indentation.Direction {
	case Removed:
		return removed.leadingWS == indentation.Whitespace+added.leadingWS
	case Added:
		return indentation.Whitespace+removed.leadingWS == added.leadingWS
	default:
		panic(fmt.Sprintf("moved: invalid indentation direction %d", indentation.Direction))
	}
}

func hashText(s string) uint64 {
	return xxhash.Sum64String(s)
}
