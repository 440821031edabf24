package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/labelcheck/backend/internal/domain"
	"github.com/labelcheck/backend/internal/metrics"
)

// envelope wraps a stored payload with its write timestamp
type envelope struct {
	Data     json.RawMessage `json:"data"`
	CachedAt time.Time       `json:"cached_at"`
}

// FileStore is a namespaced, TTL-bound cache persisting one JSON file per
// key in a single directory. The directory is shared across processes on the
// same host; writes are last-writer-wins, expiry is lazy (checked on read).
type FileStore struct {
	dir        string
	ttls       map[string]time.Duration
	defaultTTL time.Duration
	degraded   bool
}

// NewFileStore creates a file-backed cache rooted at dir. If the directory
// cannot be created or written the store degrades to cache-always-miss mode
// instead of failing: the application keeps working, just without the cache.
func NewFileStore(dir string, ttls map[string]time.Duration, defaultTTL time.Duration) *FileStore {
	store := &FileStore{
		dir:        dir,
		ttls:       ttls,
		defaultTTL: defaultTTL,
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[CACHE] WARNING: cache dir %s unavailable (%v) - running without cache", dir, err)
		store.degraded = true
		return store
	}

	// Probe writability; some deployments mount read-only volumes
	probe := filepath.Join(dir, ".write_probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		log.Printf("[CACHE] WARNING: cache dir %s not writable (%v) - running without cache", dir, err)
		store.degraded = true
		return store
	}
	os.Remove(probe)

	return store
}

// Degraded reports whether the store is running in cache-always-miss mode
func (s *FileStore) Degraded() bool {
	return s.degraded
}

// path derives the storage location for a logical key: a stable sha256 of
// "namespace:key" so arbitrary barcodes, queries, and product names all
// become safe fixed-length filenames.
func (s *FileStore) path(namespace, key string) string {
	sum := sha256.Sum256([]byte(namespace + ":" + key))
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", namespace, hex.EncodeToString(sum[:])))
}

// ttl returns the TTL configured for a namespace
func (s *FileStore) ttl(namespace string) time.Duration {
	if d, ok := s.ttls[namespace]; ok {
		return d
	}
	return s.defaultTTL
}

// Get reads a fresh entry into dest. Every failure mode - missing file,
// unreadable JSON, expired entry, degraded store - is reported as
// domain.ErrCacheMiss; the cache never propagates I/O errors to callers.
func (s *FileStore) Get(ctx context.Context, namespace, key string, dest any) error {
	if s.degraded {
		metrics.CacheMisses.WithLabelValues(namespace).Inc()
		return domain.ErrCacheMiss
	}

	raw, err := os.ReadFile(s.path(namespace, key))
	if err != nil {
		metrics.CacheMisses.WithLabelValues(namespace).Inc()
		return domain.ErrCacheMiss
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		metrics.CacheMisses.WithLabelValues(namespace).Inc()
		return domain.ErrCacheMiss
	}

	if time.Since(env.CachedAt) > s.ttl(namespace) {
		metrics.CacheMisses.WithLabelValues(namespace).Inc()
		return domain.ErrCacheMiss
	}

	if err := json.Unmarshal(env.Data, dest); err != nil {
		metrics.CacheMisses.WithLabelValues(namespace).Inc()
		return domain.ErrCacheMiss
	}

	metrics.CacheHits.WithLabelValues(namespace).Inc()
	return nil
}

// Set overwrites the entry for key, stamping the write time. Failures are
// logged and returned, but callers treat them as non-fatal: a failed cache
// write must never fail the operation that produced the payload.
func (s *FileStore) Set(ctx context.Context, namespace, key string, value any) error {
	if s.degraded {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("[CACHE] marshal failed for %s:%s: %v", namespace, key, err)
		return err
	}

	raw, err := json.Marshal(envelope{Data: data, CachedAt: time.Now()})
	if err != nil {
		log.Printf("[CACHE] envelope marshal failed for %s:%s: %v", namespace, key, err)
		return err
	}

	if err := os.WriteFile(s.path(namespace, key), raw, 0o644); err != nil {
		log.Printf("[CACHE] write failed for %s:%s: %v", namespace, key, err)
		return err
	}

	return nil
}

// Delete removes the entry for key, if any
func (s *FileStore) Delete(ctx context.Context, namespace, key string) error {
	if s.degraded {
		return nil
	}
	err := os.Remove(s.path(namespace, key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
