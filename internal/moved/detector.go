// internal/moved/detector.go
package moved

const (
	// MinBlockLines and MinBlockChars are the fixed size filter: a block is
	// kept when it reaches either threshold.
	MinBlockLines = 3
	MinBlockChars = 30
)

// Detector finds blocks of removed lines that reappear among the added lines.
// A Detector holds no state between calls to Detect beyond its read-only
// inputs, so one value may be used from several goroutines.
type Detector struct {
	removed []Line
	index   *Index
}

// NewDetector builds the candidate index over added. removed is scanned in
// the given order when Detect runs.
func NewDetector(removed, added []Line) *Detector {
	return &Detector{
		removed: removed,
		index:   NewIndex(added),
	}
}

// Detect scans the removed lines, grows matching blocks and returns the ones
// passing the size filter in the order they were closed.
func (d *Detector) Detect() []*MatchingBlock {
	var closed []*MatchingBlock
	var open []*MatchingBlock

	for _, removed := range d.removed {
		candidates := d.candidates(removed)
		next := make([]*MatchingBlock, 0, len(open)+len(candidates))

		probability := 0.0
		if len(candidates) > 0 {
			probability = 1 / float64(len(candidates))
		}

		for _, added := range candidates {
			extendedAny := false
			// Each open block takes at most one pair per removed line.
			remaining := make([]*MatchingBlock, 0, len(open))
			for _, mb := range open {
				if mb.TryExtend(removed, added, probability) {
					next = append(next, mb)
					extendedAny = true
					continue
				}
				remaining = append(remaining, mb)
			}
			open = remaining

			if !extendedAny {
				next = append(next, NewMatchingBlock(removed, added, probability))
			}
		}

		closed = append(closed, open...)
		open = next
	}
	closed = append(closed, open...)

	return Filter(closed)
}

// candidates returns the indexed added lines whose trimmed text equals
// removed's; lines that only share the hash are dropped.
func (d *Detector) candidates(removed Line) []Line {
	bucket := d.index.Candidates(removed)
	for i, line := range bucket {
		if line.trimText != removed.trimText {
			out := make([]Line, 0, len(bucket)-1)
			out = append(out, bucket[:i]...)
			for _, rest := range bucket[i+1:] {
				if rest.trimText == removed.trimText {
					out = append(out, rest)
				}
			}
			return out
		}
	}
	return bucket
}

// Filter keeps blocks with at least MinBlockLines lines or MinBlockChars
// characters, preserving order.
func Filter(blocks []*MatchingBlock) []*MatchingBlock {
	filtered := make([]*MatchingBlock, 0, len(blocks))
	for _, mb := range blocks {
		if mb.LineCount() >= MinBlockLines || mb.CharCount() >= MinBlockChars {
			filtered = append(filtered, mb)
		}
	}
	return filtered
}

// Options carries the caller's settings for one detection run.
type Options struct {
	// MinLinesCount < 0 disables detection. Other values do not change the
	// fixed size filter.
	MinLinesCount int `json:"min_lines_count"`
}

func (o Options) Disabled() bool {
	return o.MinLinesCount < 0
}

// Detect runs a full detection over removed and added lines.
func Detect(removed, added []Line, opts Options) Result {
	if opts.Disabled() {
		return Result{Skipped: true, Blocks: []DetectedBlock{}}
	}
	return NewResult(NewDetector(removed, added).Detect())
}
