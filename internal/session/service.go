// internal/session/service.go
package session

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"movesight/internal/diff"
	"movesight/internal/errors"
	"movesight/internal/highlight"
	"movesight/internal/logging"
	"movesight/internal/moved"
	"movesight/internal/safe"
	"movesight/internal/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const sessionPrefix = "session"

type Options struct {
	// Default knob for requests that do not set one.
	MinLinesCount int
	// Upper bound on removed plus added lines per request.
	MaxLines int
	// Number of detection results memoised by input.
	MemoSize int
}

type memoKey struct {
	input string
	knob  int
}

// Service runs detections and keeps them as sessions.
type Service struct {
	sessions *storage.BadgerStore[*Session]
	payloads *safe.Safe
	memo     *lru.Cache[memoKey, moved.Result]
	builder  *highlight.Builder
	logger   *logging.Logger
	opts     Options

	mu      sync.Mutex
	anchors map[string]*AnchorCache
}

func NewService(db *badger.DB, payloads *safe.Safe, logger *logging.Logger, opts Options) (*Service, error) {
	if opts.MemoSize <= 0 {
		opts.MemoSize = 64
	}
	memo, err := lru.New[memoKey, moved.Result](opts.MemoSize)
	if err != nil {
		return nil, fmt.Errorf("creating result memo: %w", err)
	}
	if logger == nil {
		logger = logging.Nop()
	}

	return &Service{
		sessions: storage.NewBadgerStore[*Session](db, sessionPrefix),
		payloads: payloads,
		memo:     memo,
		builder:  highlight.NewBuilder(),
		logger:   logger,
		opts:     opts,
		anchors:  make(map[string]*AnchorCache),
	}, nil
}

// Detect classifies the request's lines, runs detection and stores the
// outcome as a new session.
func (s *Service) Detect(ctx context.Context, req Request) (*Session, error) {
	log := s.logger.WithRequestID(ctx)

	cs, input, err := changeSetOf(req)
	if err != nil {
		return nil, err
	}
	if s.opts.MaxLines > 0 && cs.Size() > s.opts.MaxLines {
		return nil, errors.TooLarge("too many changed lines", map[string]int{
			"lines":     cs.Size(),
			"max_lines": s.opts.MaxLines,
		})
	}

	removed, added, err := cs.Lines()
	if err != nil {
		return nil, errors.ValidationError("invalid lines", err.Error())
	}

	knob := s.opts.MinLinesCount
	if req.MinLinesCount != nil {
		knob = *req.MinLinesCount
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := memoKey{input: input, knob: knob}
	result, cached := s.memo.Get(key)
	if !cached {
		result = moved.Detect(removed, added, moved.Options{MinLinesCount: knob})
		s.memo.Add(key, result)
	}

	sess := &Session{
		ID:            uuid.New().String(),
		CreatedAt:     time.Now().UTC(),
		Source:        req.Source,
		InputHash:     input,
		Files:         cs.Files,
		LineCount:     cs.Size(),
		MinLinesCount: knob,
		Result:        result,
		Highlights:    s.builder.Build(result.Blocks),
	}

	if len(req.Diff) > 0 {
		sess.DiffHash, err = s.payloads.Store(req.Diff)
		if err != nil {
			return nil, fmt.Errorf("storing diff: %w", err)
		}
	}

	ac := NewAnchorCache()
	if len(sess.Files) > 0 {
		sess.Anchors = make(map[string]string, len(sess.Files))
		for _, f := range sess.Files {
			sess.Anchors[f] = ac.Anchor(f)
		}
	}

	if err := s.sessions.Create(sess); err != nil {
		s.releaseDiff(log, sess)
		return nil, fmt.Errorf("creating session: %w", err)
	}

	s.mu.Lock()
	s.anchors[sess.ID] = ac
	s.mu.Unlock()

	log.Info("detection finished",
		zap.String("session_id", sess.ID),
		zap.Int("lines", sess.LineCount),
		zap.Int("blocks", len(result.Blocks)),
		zap.Bool("skipped", result.Skipped),
		zap.Bool("memoised", cached),
	)
	return sess, nil
}

func (s *Service) Get(id string) (*Session, error) {
	sess, err := s.sessions.Get(id)
	if stderrors.Is(err, storage.ErrNotFound) {
		return nil, errors.NotFound("session not found: " + id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	return sess, nil
}

// List returns all sessions, oldest first.
func (s *Service) List() ([]*Session, error) {
	sessions, err := s.sessions.List()
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []*Session{}
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// Diff returns the raw unified diff a session was created from.
func (s *Service) Diff(id string) ([]byte, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if sess.DiffHash == "" {
		return nil, errors.NotFound("session has no diff: " + id)
	}
	raw, err := s.payloads.Get(sess.DiffHash)
	if stderrors.Is(err, safe.ErrContentNotFound) {
		return nil, errors.NotFound("diff payload missing for session: " + id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading diff for session %s: %w", id, err)
	}
	return raw, nil
}

// Anchors returns the session's anchor cache, rebuilding it for sessions
// loaded from an earlier process.
func (s *Service) Anchors(id string) (*AnchorCache, error) {
	s.mu.Lock()
	ac, ok := s.anchors[id]
	s.mu.Unlock()
	if ok {
		return ac, nil
	}

	if _, err := s.Get(id); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ac, ok = s.anchors[id]; !ok {
		ac = NewAnchorCache()
		s.anchors[id] = ac
	}
	return ac, nil
}

// Close tears a session down: the record, its diff reference, its anchor
// cache and its memoised result.
func (s *Service) Close(ctx context.Context, id string) error {
	log := s.logger.WithRequestID(ctx)

	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(id); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}

	s.releaseDiff(log, sess)

	s.mu.Lock()
	delete(s.anchors, id)
	s.mu.Unlock()

	s.memo.Remove(memoKey{input: sess.InputHash, knob: sess.MinLinesCount})

	log.Info("session closed", zap.String("session_id", id))
	return nil
}

func (s *Service) releaseDiff(log *zap.Logger, sess *Session) {
	if sess.DiffHash == "" {
		return
	}
	if err := s.payloads.Release(sess.DiffHash); err != nil {
		log.Warn("releasing diff", zap.String("session_id", sess.ID), zap.Error(err))
	}
}

// changeSetOf turns a request into a change set plus the hash identifying
// its input.
func changeSetOf(req Request) (*diff.ChangeSet, string, error) {
	if len(req.Diff) > 0 {
		cs, err := diff.ParseUnified(req.Diff)
		if err != nil {
			return nil, "", errors.ValidationError("invalid diff", err.Error())
		}
		return cs, safe.HashContent(req.Diff), nil
	}

	cs := &diff.ChangeSet{
		Files:   filesOf(req.Removed, req.Added),
		Removed: req.Removed,
		Added:   req.Added,
	}
	data, err := json.Marshal(cs)
	if err != nil {
		return nil, "", fmt.Errorf("encoding records: %w", err)
	}
	return cs, safe.HashContent(data), nil
}

func filesOf(groups ...[]moved.Record) []string {
	seen := make(map[string]bool)
	var files []string
	for _, records := range groups {
		for _, r := range records {
			if !seen[r.File] {
				seen[r.File] = true
				files = append(files, r.File)
			}
		}
	}
	return files
}
