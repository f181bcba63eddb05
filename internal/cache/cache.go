// Package cache stores token glosses keyed by source language, target
// language and token.
package cache

import (
	"context"
	"strings"
)

// GlossCache is implemented by every gloss cache backend. Implementations
// are safe for concurrent use.
type GlossCache interface {
	// Get returns the cached gloss and true, or "" and false on a miss.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores a gloss.
	Set(ctx context.Context, key, value string) error
}

// Key builds the cache key for a token translated from sourceLang into
// targetLang.
func Key(sourceLang, targetLang, token string) string {
	return strings.ToLower(sourceLang) + ":" + strings.ToLower(targetLang) + ":" + token
}
