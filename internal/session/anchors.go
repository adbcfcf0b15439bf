package session

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"

	"movesight/internal/moved"
)

// AnchorCache maps file paths to review page anchors ("diff-" followed by
// the hex sha256 of the path). One lives as long as its session.
type AnchorCache struct {
	mu      sync.Mutex
	anchors map[string]string
}

func NewAnchorCache() *AnchorCache {
	return &AnchorCache{anchors: make(map[string]string)}
}

func (c *AnchorCache) Anchor(path string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if a, ok := c.anchors[path]; ok {
		return a
	}
	sum := sha256.Sum256([]byte(path))
	a := "diff-" + hex.EncodeToString(sum[:])
	c.anchors[path] = a
	return a
}

// LineAnchor addresses a single line: L for the removed side, R for the added.
func (c *AnchorCache) LineAnchor(ref moved.LineRef, removed bool) string {
	side := "R"
	if removed {
		side = "L"
	}
	return c.Anchor(ref.File) + side + strconv.Itoa(ref.LineNumber)
}

func (c *AnchorCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.anchors)
}
