// internal/safe/safe.go
package safe

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Attempts made at a reference count update before a conflict is returned.
const maxConflictRetries = 16

var (
	ErrContentNotFound = errors.New("content not found")
	ErrInvalidHash     = errors.New("invalid content hash")
)

// ContentMeta stores metadata about stored content
type ContentMeta struct {
	Hash       string    `json:"hash"`
	Size       int64     `json:"size"`
	StoredSize int64     `json:"stored_size"`
	RefCount   uint32    `json:"ref_count"`
	Compressed bool      `json:"compressed"`
	CreatedAt  time.Time `json:"created_at"`
}

// Safe keeps raw diff payloads deduplicated by content hash. Payloads are
// reference counted, zstd-compressed above a size threshold and cached.
type Safe struct {
	db    *badger.DB
	cache *lru.Cache[string, []byte]
	comp  *compressionManager

	// Reference count updates on one hash are serialized through the
	// stripe picked by its first byte.
	locks [256]sync.Mutex
}

// Options configures Safe behavior
type Options struct {
	CacheSize   int // Number of payloads to cache
	Compression CompressionOptions
}

// New creates a new Safe instance
func New(db *badger.DB, opts Options) (*Safe, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 128
	}
	if opts.Compression == (CompressionOptions{}) {
		opts.Compression = DefaultCompressionOptions()
	}

	cache, err := lru.New[string, []byte](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	comp, err := newCompressionManager(opts.Compression)
	if err != nil {
		return nil, fmt.Errorf("creating compressor: %w", err)
	}

	return &Safe{
		db:    db,
		cache: cache,
		comp:  comp,
	}, nil
}

// Store saves content and returns its hash. Storing content that is already
// present only bumps its reference count.
func (s *Safe) Store(content []byte) (string, error) {
	hash := HashContent(content)

	err := s.update(hash, func(txn *badger.Txn) error {
		meta, err := getMeta(txn, hash)
		if err == nil {
			meta.RefCount++
			return setMeta(txn, meta)
		}
		if !errors.Is(err, ErrContentNotFound) {
			return err
		}

		stored, compressed := s.comp.compress(content)
		meta = ContentMeta{
			Hash:       hash,
			Size:       int64(len(content)),
			StoredSize: int64(len(stored)),
			RefCount:   1,
			Compressed: compressed,
			CreatedAt:  time.Now(),
		}
		if err := txn.Set(dataKey(hash), stored); err != nil {
			return fmt.Errorf("writing content: %w", err)
		}
		return setMeta(txn, meta)
	})
	if err != nil {
		return "", fmt.Errorf("storing content: %w", err)
	}

	s.cache.Add(hash, content)
	return hash, nil
}

// Get retrieves content by hash
func (s *Safe) Get(hash string) ([]byte, error) {
	if !isValidHash(hash) {
		return nil, ErrInvalidHash
	}

	if content, ok := s.cache.Get(hash); ok {
		return content, nil
	}

	var content []byte
	err := s.db.View(func(txn *badger.Txn) error {
		meta, err := getMeta(txn, hash)
		if err != nil {
			return err
		}

		item, err := txn.Get(dataKey(hash))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrContentNotFound
		} else if err != nil {
			return err
		}
		stored, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		if meta.Compressed {
			stored, err = s.comp.decompress(stored)
			if err != nil {
				return err
			}
		}
		content = stored
		return nil
	})
	if err != nil {
		return nil, err
	}

	if HashContent(content) != hash {
		return nil, fmt.Errorf("content hash mismatch")
	}

	s.cache.Add(hash, content)
	return content, nil
}

// Release drops one reference; the payload is removed with the last one.
func (s *Safe) Release(hash string) error {
	if !isValidHash(hash) {
		return ErrInvalidHash
	}

	removed := false
	err := s.update(hash, func(txn *badger.Txn) error {
		removed = false
		meta, err := getMeta(txn, hash)
		if err != nil {
			return err
		}

		meta.RefCount--
		if meta.RefCount > 0 {
			return setMeta(txn, meta)
		}

		removed = true
		if err := txn.Delete(dataKey(hash)); err != nil {
			return err
		}
		return txn.Delete(metaKey(hash))
	})
	if err != nil {
		return fmt.Errorf("releasing content: %w", err)
	}

	if removed {
		s.cache.Remove(hash)
	}
	return nil
}

// Meta returns the stored metadata for hash.
func (s *Safe) Meta(hash string) (ContentMeta, error) {
	if !isValidHash(hash) {
		return ContentMeta{}, ErrInvalidHash
	}

	var meta ContentMeta
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		meta, err = getMeta(txn, hash)
		return err
	})
	return meta, err
}

// Exists checks if content exists
func (s *Safe) Exists(hash string) (bool, error) {
	_, err := s.Meta(hash)
	if errors.Is(err, ErrContentNotFound) {
		return false, nil
	}
	return err == nil, err
}

// update runs fn in a read-write transaction holding the lock for hash. A
// conflict with another writer of the database is retried.
func (s *Safe) update(hash string, fn func(txn *badger.Txn) error) error {
	mu := &s.locks[stripe(hash)]
	mu.Lock()
	defer mu.Unlock()

	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * time.Millisecond)
	}
	return err
}

// HashContent is the key under which content is stored.
func HashContent(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func stripe(hash string) byte {
	b, err := hex.DecodeString(hash[:2])
	if err != nil {
		return 0
	}
	return b[0]
}

func isValidHash(hash string) bool {
	if len(hash) != 64 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}

func metaKey(hash string) []byte {
	return []byte("payload:meta:" + hash)
}

func dataKey(hash string) []byte {
	return []byte("payload:data:" + hash)
}

func getMeta(txn *badger.Txn, hash string) (ContentMeta, error) {
	var meta ContentMeta

	item, err := txn.Get(metaKey(hash))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return meta, ErrContentNotFound
	}
	if err != nil {
		return meta, err
	}

	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &meta)
	})
	return meta, err
}

func setMeta(txn *badger.Txn, meta ContentMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return txn.Set(metaKey(meta.Hash), data)
}
