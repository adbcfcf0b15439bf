package moved

// Pairing links one removed line to the added line it moved to.
type Pairing struct {
	Removed          Line
	Added            Line
	MatchProbability float64
}

// MatchingBlock pairs a removed Block with an added Block under one fixed
// Indentation. Both sides grow by exactly one line per extension, so
// Removed.LineCount() == Added.LineCount() == len(Pairings).
type MatchingBlock struct {
	Removed     Block
	Added       Block
	Indentation Indentation
	Pairings    []Pairing
}

// NewMatchingBlock seeds a block from its first pairing; the indentation is
// fixed here for the block's lifetime.
func NewMatchingBlock(removed, added Line, probability float64) *MatchingBlock {
	return &MatchingBlock{
		Removed:     newBlock(removed),
		Added:       newBlock(added),
		Indentation: removed.IndentationDelta(added),
		Pairings:    []Pairing{{Removed: removed, Added: added, MatchProbability: probability}},
	}
}

// TryExtend appends the pair if it matches under the block's indentation and
// continues both sides. It reports whether the block grew.
func (mb *MatchingBlock) TryExtend(removed, added Line, probability float64) bool {
	if !MatchesUnder(removed, added, mb.Indentation) {
		return false
	}
	if !mb.Removed.CanExtendWith(removed) || !mb.Added.CanExtendWith(added) {
		return false
	}

	mb.Removed.extend(removed)
	mb.Added.extend(added)
	mb.Pairings = append(mb.Pairings, Pairing{Removed: removed, Added: added, MatchProbability: probability})
	return true
}

func (mb *MatchingBlock) LastRemoved() Line {
	return mb.Pairings[len(mb.Pairings)-1].Removed
}

func (mb *MatchingBlock) LastAdded() Line {
	return mb.Pairings[len(mb.Pairings)-1].Added
}

func (mb *MatchingBlock) LineCount() int {
	return len(mb.Pairings)
}

func (mb *MatchingBlock) CharCount() int {
	return max(mb.Removed.CharCount, mb.Added.CharCount)
}

// Weight is the sum of the pairing probabilities.
func (mb *MatchingBlock) Weight() float64 {
	var w float64
	for _, p := range mb.Pairings {
		w += p.MatchProbability
	}
	return w
}
