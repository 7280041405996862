// Package querycache persists raw (term, tier) query results on disk so
// repeat runs never re-issue a query the service has already answered.
package querycache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/verdant-bio/taxon-cli/internal/model"
)

// schemaVersion guards against records written by older layouts that
// predate annotation/assembly parsing. A mismatch is treated as a miss.
const schemaVersion = 2

// Entry is one cached query result: either the raw successful response
// (Stdout/Stderr) or a structured failure (Error/Status). Term and Tier are
// stored redundantly so cache files stay inspectable by hand.
type Entry struct {
	Schema   int       `json:"schema"`
	Term     string    `json:"term"`
	Tier     string    `json:"tier"`
	CachedAt time.Time `json:"cached_at"`

	Stdout string `json:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty"`

	Error  string `json:"error,omitempty"`
	Status string `json:"status,omitempty"`
}

// Failed reports whether the cached query ended in an error.
func (e Entry) Failed() bool {
	return e.Error != ""
}

// Cache is a content-addressed store with one JSON file per (term, tier)
// key. Entries never expire and are never invalidated automatically.
// Concurrent access is safe: writes go through a rename and racing
// duplicate writes for the same key are idempotent.
type Cache struct {
	dir string
}

// New creates the cache directory if needed and returns the cache.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "querycache: create dir %s", dir)
	}
	return &Cache{dir: dir}, nil
}

// Key derives the stable hash for a (term, tier) pair. Identical terms
// always map to the same entry.
func Key(term string, tier model.SearchTier) string {
	sum := md5.Sum([]byte(term + "\x00" + tier.Slug))
	return hex.EncodeToString(sum[:])
}

// Path returns the on-disk location for a (term, tier) entry.
func (c *Cache) Path(term string, tier model.SearchTier) string {
	return filepath.Join(c.dir, Key(term, tier)+".json")
}

// Get looks up a cached entry. Missing, unreadable, or outdated records all
// degrade to a miss; the caller re-queries as if uncached.
func (c *Cache) Get(term string, tier model.SearchTier) (Entry, bool) {
	path := c.Path(term, tier)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			zap.L().Warn("cache read failed, treating as miss",
				zap.String("path", path),
				zap.Error(err),
			)
		}
		return Entry{}, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		zap.L().Warn("cache entry corrupt, treating as miss",
			zap.String("path", path),
			zap.Error(err),
		)
		return Entry{}, false
	}

	if entry.Schema != schemaVersion {
		return Entry{}, false
	}

	return entry, true
}

// PutSuccess caches a successful raw response.
func (c *Cache) PutSuccess(term string, tier model.SearchTier, stdout, stderr string) {
	c.put(term, tier, Entry{Stdout: stdout, Stderr: stderr})
}

// PutFailure caches a failed query with its classified status.
func (c *Cache) PutFailure(term string, tier model.SearchTier, errText, status string) {
	c.put(term, tier, Entry{Error: errText, Status: status})
}

// put writes the entry via a temp file and rename. Caching is an
// optimization, never a correctness requirement: write failures are logged
// and swallowed.
func (c *Cache) put(term string, tier model.SearchTier, entry Entry) {
	entry.Schema = schemaVersion
	entry.Term = term
	entry.Tier = tier.Slug
	entry.CachedAt = time.Now().UTC()

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		zap.L().Warn("cache marshal failed", zap.String("term", term), zap.Error(err))
		return
	}

	path := c.Path(term, tier)
	tmp, err := os.CreateTemp(c.dir, "entry-*.tmp")
	if err != nil {
		zap.L().Warn("cache write failed", zap.String("path", path), zap.Error(err))
		return
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		zap.L().Warn("cache write failed", zap.String("path", path), zap.Error(err))
		return
	}
	tmp.Close()
	if err := os.Rename(tmp.Name(), path); err != nil {
		zap.L().Warn("cache rename failed", zap.String("path", path), zap.Error(err))
		os.Remove(tmp.Name())
	}
}
