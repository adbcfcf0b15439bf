package diff

import (
	"fmt"
	"strings"

	"movesight/internal/moved"

	sgdiff "github.com/sourcegraph/go-diff/diff"
)

const devNull = "/dev/null"

// ParseUnified reads a multi-file unified diff (as produced by git diff) and
// returns its removed and added lines. Removed lines carry the original path,
// added lines the new one.
func ParseUnified(raw []byte) (*ChangeSet, error) {
	fileDiffs, err := sgdiff.ParseMultiFileDiff(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing unified diff: %w", err)
	}

	cs := &ChangeSet{}
	for _, fd := range fileDiffs {
		oldPath, newPath := filePaths(fd)
		if oldPath != newPath {
			cs.Files = append(cs.Files, oldPath)
		}
		cs.Files = append(cs.Files, newPath)

		for _, h := range fd.Hunks {
			if err := collectHunk(cs, oldPath, newPath, h); err != nil {
				return nil, fmt.Errorf("%s: %w", newPath, err)
			}
		}
	}
	return cs, nil
}

// collectHunk appends the hunk's lines to cs. The parser ends a hunk body at
// the first line it does not recognise, so a body shorter than its header
// announces means the diff is malformed.
func collectHunk(cs *ChangeSet, oldPath, newPath string, h *sgdiff.Hunk) error {
	oldLn := int(h.OrigStartLine)
	newLn := int(h.NewStartLine)
	var origSeen, newSeen int32

	for _, line := range splitHunkBody(h.Body) {
		if line == "" {
			// context line whose single space was stripped
			oldLn++
			newLn++
			origSeen++
			newSeen++
			continue
		}
		switch line[0] {
		case ' ':
			oldLn++
			newLn++
			origSeen++
			newSeen++
		case '-':
			cs.Removed = append(cs.Removed, moved.Record{File: oldPath, LineNumber: moved.LineNumber(oldLn), Text: line[1:]})
			oldLn++
			origSeen++
		case '+':
			cs.Added = append(cs.Added, moved.Record{File: newPath, LineNumber: moved.LineNumber(newLn), Text: line[1:]})
			newLn++
			newSeen++
		case '\\':
			// "\ No newline at end of file"
		default:
			return fmt.Errorf("unexpected hunk line prefix %q", line)
		}
	}

	if origSeen != h.OrigLines || newSeen != h.NewLines {
		return fmt.Errorf("hunk @@ -%d,%d +%d,%d @@ has %d old and %d new lines",
			h.OrigStartLine, h.OrigLines, h.NewStartLine, h.NewLines, origSeen, newSeen)
	}
	return nil
}

func filePaths(fd *sgdiff.FileDiff) (oldPath, newPath string) {
	oldPath = cleanPath(fd.OrigName)
	newPath = cleanPath(fd.NewName)
	if oldPath == "" || oldPath == devNull {
		oldPath = newPath
	}
	if newPath == "" || newPath == devNull {
		newPath = oldPath
	}
	return oldPath, newPath
}

func cleanPath(path string) string {
	path = strings.TrimSpace(path)
	if path == devNull {
		return path
	}
	path = strings.TrimPrefix(path, "a/")
	path = strings.TrimPrefix(path, "b/")
	return path
}

func splitHunkBody(body []byte) []string {
	lines := strings.Split(strings.ReplaceAll(string(body), "\r\n", "\n"), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
