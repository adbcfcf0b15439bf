package moved

// LineRef identifies one side of a pairing in a Result.
type LineRef struct {
	File       string `json:"file"`
	LineNumber int    `json:"line_number"`
	Text       string `json:"text"`
}

type PairingView struct {
	Removed          LineRef `json:"removed"`
	Added            LineRef `json:"added"`
	MatchProbability float64 `json:"match_probability"`
}

// DetectedBlock is the output form of a MatchingBlock kept by the filter.
type DetectedBlock struct {
	Removed     Block         `json:"removed"`
	Added       Block         `json:"added"`
	Indentation Indentation   `json:"indentation"`
	LineCount   int           `json:"line_count"`
	CharCount   int           `json:"char_count"`
	Pairings    []PairingView `json:"pairings"`
}

// Result is everything a rendering layer needs from one detection run.
type Result struct {
	Blocks  []DetectedBlock `json:"blocks"`
	Skipped bool            `json:"skipped,omitempty"`
}

func NewResult(blocks []*MatchingBlock) Result {
	out := make([]DetectedBlock, 0, len(blocks))
	for _, mb := range blocks {
		out = append(out, viewOf(mb))
	}
	return Result{Blocks: out}
}

func viewOf(mb *MatchingBlock) DetectedBlock {
	pairings := make([]PairingView, 0, len(mb.Pairings))
	for _, p := range mb.Pairings {
		pairings = append(pairings, PairingView{
			Removed:          refOf(p.Removed),
			Added:            refOf(p.Added),
			MatchProbability: p.MatchProbability,
		})
	}
	return DetectedBlock{
		Removed:     mb.Removed,
		Added:       mb.Added,
		Indentation: mb.Indentation,
		LineCount:   mb.LineCount(),
		CharCount:   mb.CharCount(),
		Pairings:    pairings,
	}
}

func refOf(l Line) LineRef {
	return LineRef{File: l.file, LineNumber: l.number, Text: l.Text()}
}

// Weight is the sum of the pairing probabilities.
func (b DetectedBlock) Weight() float64 {
	var w float64
	for _, p := range b.Pairings {
		w += p.MatchProbability
	}
	return w
}
