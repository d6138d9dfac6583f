// Package cache adds an optional two-tier memoization layer in front of
// secsgml.Parse: an in-process TinyLFU cache (L1) backed by an optional
// on-disk Pebble store (L2), both keyed by a content hash of the raw
// input combined with the parse options used.
//
// Neither tier is consulted by secsgml.Parse itself — the core stays a
// pure function per its concurrency model. Cache.Parse has the exact
// signature and return contract of secsgml.Parse, so it's a drop-in
// accelerator for callers who re-parse the same filings repeatedly
// (e.g. a CLI re-run over the same corpus, or a service re-serving
// recently fetched filings).
package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log/slog"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/pebble/v2"
	"github.com/dgryski/go-tinylfu"

	"github.com/edgarlake/secsgml"
	"github.com/edgarlake/secsgml/internal/model"
)

func init() {
	gob.Register(model.StringValue(""))
	gob.Register(model.ListValue{})
	gob.Register(model.ObjectValue{})
}

// defaultL1Size is the number of parsed submissions the in-process cache
// keeps hot when the caller doesn't specify one.
const defaultL1Size = 64

// Cache memoizes secsgml.Parse results. The zero value is not usable;
// construct one with New.
type Cache struct {
	l1     *tinylfu.T[uint64, *secsgml.ParsedSubmission]
	l2     *pebble.DB
	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*config)

type config struct {
	l1Size   int
	diskPath string
	logger   *slog.Logger
}

// WithL1Size overrides the number of entries kept in the in-process
// TinyLFU cache. The default is 64.
func WithL1Size(n int) Option {
	return func(c *config) { c.l1Size = n }
}

// WithDiskPath backs the cache with an on-disk Pebble store at dir, so
// parses survive process restarts. Without this option, Cache is
// in-process-only.
func WithDiskPath(dir string) Option {
	return func(c *config) { c.diskPath = dir }
}

// WithLogger overrides the logger used for cache hit/miss/evict
// messages. The default discards them.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// New builds a Cache. If WithDiskPath is given, it opens (creating if
// needed) a Pebble store at that path for the L2 tier.
func New(opts ...Option) (*Cache, error) {
	cfg := config{l1Size: defaultL1Size, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Cache{logger: cfg.logger}
	c.l1 = tinylfu.New[uint64, *secsgml.ParsedSubmission](cfg.l1Size, cfg.l1Size*10, hashKey, tinylfu.OnEvict(c.evictL1))

	if cfg.diskPath != "" {
		db, err := pebble.Open(cfg.diskPath, &pebble.Options{})
		if err != nil {
			return nil, fmt.Errorf("cache: open pebble store at %q: %w", cfg.diskPath, err)
		}
		c.l2 = db
	}

	return c, nil
}

// Close releases the on-disk L2 store, if one was configured.
func (c *Cache) Close() error {
	if c.l2 == nil {
		return nil
	}
	return c.l2.Close()
}

// Parse returns the cached ParsedSubmission for (data, opts) if one
// exists, else parses with secsgml.Parse and populates both cache
// tiers before returning.
func (c *Cache) Parse(data []byte, opts secsgml.ParseOptions) (*secsgml.ParsedSubmission, error) {
	key := cacheKey(data, opts)

	if sub, ok := c.l1.Get(key); ok {
		c.logger.Debug("cache hit", "tier", "l1", "key", key)
		return sub, nil
	}

	if c.l2 != nil {
		if sub, err := c.getL2(key); err == nil {
			c.logger.Debug("cache hit", "tier", "l2", "key", key)
			c.l1.Add(key, sub)
			return sub, nil
		}
	}

	c.logger.Debug("cache miss", "key", key)
	sub, err := secsgml.Parse(data, opts)
	if err != nil {
		return nil, err
	}

	c.l1.Add(key, sub)
	if c.l2 != nil {
		if err := c.setL2(key, sub); err != nil {
			c.logger.Debug("cache write failed", "tier", "l2", "key", key, "error", err)
		}
	}
	return sub, nil
}

func (c *Cache) evictL1(key uint64, _ *secsgml.ParsedSubmission) {
	c.logger.Debug("cache evict", "tier", "l1", "key", key)
}

// l2Entry is the on-disk gob shape for an L2 cache value. ParsedSubmission's
// ContentHash is backed by an unexported field that gob silently drops,
// so it's carried alongside the submission explicitly and restored on
// decode via model.RestoreParsedSubmission instead of being lost.
type l2Entry struct {
	Metadata  model.SubmissionMetadata
	Documents [][]byte
	Format    model.SubmissionFormat
	Hash      uint64
}

func (c *Cache) getL2(key uint64) (*secsgml.ParsedSubmission, error) {
	value, closer, err := c.l2.Get(pebbleKey(key))
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var entry l2Entry
	if err := gob.NewDecoder(bytes.NewReader(value)).Decode(&entry); err != nil {
		return nil, fmt.Errorf("cache: decode l2 entry: %w", err)
	}
	return model.RestoreParsedSubmission(entry.Metadata, entry.Documents, entry.Format, entry.Hash), nil
}

func (c *Cache) setL2(key uint64, sub *secsgml.ParsedSubmission) error {
	entry := l2Entry{
		Metadata:  sub.Metadata,
		Documents: sub.Documents,
		Format:    sub.Format,
		Hash:      sub.ContentHash(),
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
		return fmt.Errorf("cache: encode l2 entry: %w", err)
	}
	return c.l2.Set(pebbleKey(key), buf.Bytes(), pebble.Sync)
}

func pebbleKey(key uint64) []byte {
	var b [8]byte
	for i := range b {
		b[i] = byte(key >> (8 * i))
	}
	return b[:]
}

// cacheKey combines the content hash of data with a digest of the
// options that affect parse output, so that two different ParseOptions
// over the same bytes never collide in the cache.
func cacheKey(data []byte, opts secsgml.ParseOptions) uint64 {
	digest := xxhash.New()
	digest.Write(data)
	fmt.Fprintf(digest, "|%v|%v|%v|%v", opts.FilterDocumentTypes, opts.KeepFilteredMetadata, opts.StandardizeMetadata, opts.Parallel)
	return digest.Sum64()
}

func hashKey(k uint64) uint64 { return k }
