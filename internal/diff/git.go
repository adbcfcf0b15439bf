package diff

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// GitDiff runs `git diff` in dir with the given extra arguments and returns
// its unified output.
func GitDiff(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmdArgs := append([]string{"diff", "--no-color", "--no-ext-diff", "-U3"}, args...)
	cmd := exec.CommandContext(ctx, "git", cmdArgs...)
	if dir != "" {
		cmd.Dir = dir
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s: %w: %s", strings.Join(cmdArgs, " "), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}
