package diff

import "bytes"

// buildLCSMatrix returns m where m[i][j] is the LCS length of
// oldLines[i:] and newLines[j:].
func buildLCSMatrix(oldLines, newLines [][]byte) [][]int {
	matrix := make([][]int, len(oldLines)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(newLines)+1)
	}

	for i := len(oldLines) - 1; i >= 0; i-- {
		for j := len(newLines) - 1; j >= 0; j-- {
			if bytes.Equal(oldLines[i], newLines[j]) {
				matrix[i][j] = matrix[i+1][j+1] + 1
			} else {
				matrix[i][j] = max(matrix[i+1][j], matrix[i][j+1])
			}
		}
	}

	return matrix
}

// walkLCS turns the matrix into a forward sequence of numbered lines.
// Deletions are emitted before additions within a change.
func walkLCS(oldLines, newLines [][]byte, lcs [][]int) []Line {
	ops := make([]Line, 0, len(oldLines)+len(newLines))

	i, j := 0, 0
	for i < len(oldLines) || j < len(newLines) {
		switch {
		case i < len(oldLines) && j < len(newLines) && bytes.Equal(oldLines[i], newLines[j]):
			ops = append(ops, Line{Type: Context, Content: string(oldLines[i]), OldNum: i + 1, NewNum: j + 1})
			i++
			j++
		case i < len(oldLines) && (j == len(newLines) || lcs[i+1][j] >= lcs[i][j+1]):
			ops = append(ops, Line{Type: Deletion, Content: string(oldLines[i]), OldNum: i + 1})
			i++
		default:
			ops = append(ops, Line{Type: Addition, Content: string(newLines[j]), NewNum: j + 1})
			j++
		}
	}

	return ops
}

// groupHunks cuts ops into hunks, keeping contextLines of context around
// each change and merging hunks whose context overlaps.
func (e *Engine) groupHunks(ops []Line) []Hunk {
	var hunks []Hunk

	start, end := -1, -1
	flush := func() {
		if start < 0 {
			return
		}
		hunks = append(hunks, newHunk(ops, start, end))
		start, end = -1, -1
	}

	for k, op := range ops {
		if op.Type == Context {
			continue
		}
		from := max(0, k-e.contextLines)
		to := min(len(ops)-1, k+e.contextLines)
		if start >= 0 && from > end+1 {
			flush()
		}
		if start < 0 {
			start = from
		}
		end = max(end, to)
	}
	flush()

	return hunks
}

func newHunk(ops []Line, start, end int) Hunk {
	// line counts consumed before the hunk
	oldBefore, newBefore := 0, 0
	for _, op := range ops[:start] {
		if op.Type != Addition {
			oldBefore++
		}
		if op.Type != Deletion {
			newBefore++
		}
	}

	hunk := Hunk{Lines: append([]Line(nil), ops[start:end+1]...)}
	for _, op := range hunk.Lines {
		if op.Type != Addition {
			hunk.OldLines++
		}
		if op.Type != Deletion {
			hunk.NewLines++
		}
	}

	hunk.OldStart = oldBefore
	if hunk.OldLines > 0 {
		hunk.OldStart++
	}
	hunk.NewStart = newBefore
	if hunk.NewLines > 0 {
		hunk.NewStart++
	}
	return hunk
}
