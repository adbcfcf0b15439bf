package moved

// Index maps a content hash to the added lines sharing it, in input order.
// It is built once and only read afterwards.
type Index struct {
	buckets map[uint64][]Line
}

func NewIndex(added []Line) *Index {
	idx := &Index{buckets: make(map[uint64][]Line)}
	for _, line := range added {
		idx.buckets[line.hash] = append(idx.getOrCreate(line.hash), line)
	}
	return idx
}

func (idx *Index) getOrCreate(hash uint64) []Line {
	lines, ok := idx.buckets[hash]
	if !ok {
		lines = make([]Line, 0, 1)
		idx.buckets[hash] = lines
	}
	return lines
}

// Candidates returns the added lines whose trimmed text hashes like line's.
// The returned slice must not be modified.
func (idx *Index) Candidates(line Line) []Line {
	return idx.buckets[line.hash]
}

// Len is the number of distinct hashes.
func (idx *Index) Len() int {
	return len(idx.buckets)
}
