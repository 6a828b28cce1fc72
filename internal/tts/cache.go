package tts

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedProvider wraps a Provider with a redis-backed audio cache. Identical
// synthesis requests are served from cache; cache failures fall through to
// the underlying backend.
type CachedProvider struct {
	inner  Provider
	client *redis.Client
	ttl    time.Duration
}

func NewCachedProvider(inner Provider, client *redis.Client, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedProvider{inner: inner, client: client, ttl: ttl}
}

func (c *CachedProvider) Name() string { return c.inner.Name() }

type cachedAudio struct {
	Audio       []byte `json:"audio"`
	ContentType string `json:"content_type"`
}

func (c *CachedProvider) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	key := c.cacheKey(req)

	if val, err := c.client.Get(ctx, key).Result(); err == nil {
		var cached cachedAudio
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			return &SynthesisResult{Audio: cached.Audio, ContentType: cached.ContentType}, nil
		}
	}

	result, err := c.inner.Synthesize(ctx, req)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(cachedAudio{Audio: result.Audio, ContentType: result.ContentType})
	if err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			slog.Warn("tts cache store failed", "error", err)
		}
	}

	return result, nil
}

func (c *CachedProvider) cacheKey(req SynthesisRequest) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%.2f|%s", c.inner.Name(), req.Voice, req.Speed, req.Input))
	return fmt.Sprintf("tts:audio:%x", sum)
}
