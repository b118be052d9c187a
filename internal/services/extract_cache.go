package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/justsurfingit/brand-theme-generator/internal/extractor"
	"github.com/justsurfingit/brand-theme-generator/internal/logger"
)

// CachedExtractor remembers recent bundles per URL and collapses concurrent renders of
// the same URL into one, so retries and repeat generations do not take another page.
type CachedExtractor struct {
	next   StyleExtractor
	cache  *expirable.LRU[string, *extractor.StyleBundle]
	flight singleflight.Group
	log    zerolog.Logger
}

// NewCachedExtractor wraps next. Bundles expire after ttl.
func NewCachedExtractor(next StyleExtractor, size int, ttl time.Duration, log zerolog.Logger) *CachedExtractor {
	return &CachedExtractor{
		next:  next,
		cache: expirable.NewLRU[string, *extractor.StyleBundle](size, nil, ttl),
		log:   logger.Component(log, "extract_cache"),
	}
}

// Extract returns a cached bundle or renders one. Failures are never cached.
func (c *CachedExtractor) Extract(ctx context.Context, rawURL string) (*extractor.StyleBundle, error) {
	key := cacheKey(rawURL)
	if b, ok := c.cache.Get(key); ok {
		c.log.Debug().Str("url", key).Msg("style bundle cache hit")
		return b, nil
	}

	v, err, shared := c.flight.Do(key, func() (any, error) {
		b, err := c.next.Extract(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, b)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.log.Debug().Str("url", key).Msg("joined in-flight extraction")
	}
	return v.(*extractor.StyleBundle), nil
}

// Len reports how many bundles are cached.
func (c *CachedExtractor) Len() int { return c.cache.Len() }

// cacheKey drops the fragment and lowercases scheme and host.
func cacheKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return u.String()
}
