package highlight

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"movesight/internal/moved"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

// RenderOptions controls terminal output.
type RenderOptions struct {
	NoColor bool
	// Lines prints every pairing, not only the block headers.
	Lines bool
}

// Render writes a human readable report of the highlighted blocks to w.
func Render(w io.Writer, res moved.Result, blocks []Block, opts RenderOptions) error {
	p := newPrinter(w, opts)

	if res.Skipped {
		p.dim.Fprintln(w, "Detection disabled (min lines count < 0)")
		return p.err
	}
	if len(blocks) == 0 {
		p.dim.Fprintln(w, "No moved blocks detected")
		return p.err
	}

	p.title.Fprintf(w, "Detected %d moved %s\n", len(blocks), plural(len(blocks), "block", "blocks"))
	for i, b := range blocks {
		p.block(res.Blocks[i], b, opts.Lines)
	}
	return p.err
}

type printer struct {
	w       io.Writer
	noColor bool
	title   *color.Color
	header  *color.Color
	removed *color.Color
	added   *color.Color
	dim     *color.Color
	changed *color.Color
	err     error
}

func newPrinter(w io.Writer, opts RenderOptions) *printer {
	p := &printer{
		w:       w,
		noColor: opts.NoColor,
		title:   color.New(color.Bold),
		header:  color.New(color.FgCyan),
		removed: color.New(color.FgRed),
		added:   color.New(color.FgGreen),
		dim:     color.New(color.Faint),
		changed: color.New(color.Underline),
	}
	if opts.NoColor {
		for _, c := range []*color.Color{p.title, p.header, p.removed, p.added, p.dim, p.changed} {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) block(db moved.DetectedBlock, b Block, withLines bool) {
	marker := p.marker(b)
	p.header.Fprintf(p.w, "%s %s:%d-%d -> %s:%d-%d  (%d lines, %d chars, match %.2f)%s\n",
		marker,
		db.Removed.File, db.Removed.Start, db.Removed.End,
		db.Added.File, db.Added.Start, db.Added.End,
		db.LineCount, db.CharCount, b.Weight,
		indentationNote(db.Indentation),
	)
	if !withLines {
		return
	}

	width := numberWidth(db)
	for _, l := range b.Lines {
		p.removed.Fprintf(p.w, "  %s -%*d │ ", marker, width, l.Removed.LineNumber)
		p.segments(l.RemovedSegments, p.removed)
		p.added.Fprintf(p.w, "  %s +%*d │ ", marker, width, l.Added.LineNumber)
		p.segments(l.AddedSegments, p.added)
	}
}

func (p *printer) segments(segs []Segment, base *color.Color) {
	var sb strings.Builder
	for _, s := range segs {
		text := visibleWhitespace(s.Text, s.Changed)
		if s.Changed {
			sb.WriteString(p.changed.Sprint(text))
			continue
		}
		sb.WriteString(base.Sprint(text))
	}
	sb.WriteString("\n")
	if _, err := io.WriteString(p.w, sb.String()); err != nil && p.err == nil {
		p.err = err
	}
}

// marker is the block's colour swatch.
func (p *printer) marker(b Block) string {
	label := "[" + strconv.Itoa(b.Index) + "]"
	if p.noColor {
		return label
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#000000")).
		Background(lipgloss.Color(b.Color)).
		Render(label)
}

func indentationNote(ind moved.Indentation) string {
	if ind.IsZero() {
		return ""
	}
	return fmt.Sprintf("  indentation %s %q", ind.Direction, ind.Whitespace)
}

func visibleWhitespace(s string, changed bool) string {
	if !changed {
		return s
	}
	return strings.NewReplacer(" ", "·", "\t", "→").Replace(s)
}

func numberWidth(db moved.DetectedBlock) int {
	return len(strconv.Itoa(max(db.Removed.End, db.Added.End)))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
