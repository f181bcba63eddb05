package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/valpere/smarttranslate/internal/cache"
)

// GlossCache exposes the gloss_cache table as a cache.GlossCache.
type GlossCache struct {
	s *Store
}

func (s *Store) GlossCache() *GlossCache {
	return &GlossCache{s: s}
}

// Get treats lookup errors as misses.
func (c *GlossCache) Get(ctx context.Context, key string) (string, bool) {
	var gloss string
	err := c.s.db.QueryRowContext(ctx, `SELECT gloss FROM gloss_cache WHERE cache_key = ?`, normalizeText(key)).Scan(&gloss)
	if err != nil {
		return "", false
	}

	_, _ = c.s.db.ExecContext(ctx,
		`UPDATE gloss_cache SET usage_count = usage_count + 1, last_used = ? WHERE cache_key = ?`,
		time.Now().UTC(), normalizeText(key))
	return gloss, true
}

func (c *GlossCache) Set(ctx context.Context, key, value string) error {
	_, err := c.s.db.ExecContext(ctx,
		`INSERT INTO gloss_cache (cache_key, gloss) VALUES (?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET gloss = excluded.gloss, last_used = CURRENT_TIMESTAMP`,
		normalizeText(key), value)
	return err
}

// Len reports the number of cached glosses.
func (c *GlossCache) Len(ctx context.Context) (int, error) {
	var n int
	err := c.s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM gloss_cache`).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return n, err
}

// Clear drops every cached gloss and returns how many were removed.
func (c *GlossCache) Clear(ctx context.Context) (int64, error) {
	res, err := c.s.db.ExecContext(ctx, `DELETE FROM gloss_cache`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ cache.GlossCache = (*GlossCache)(nil)
