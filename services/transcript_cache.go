package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// TranscriptCache stores finished transcripts by video id. Implementations
// must never fail the pipeline; errors are logged and treated as misses.
type TranscriptCache interface {
	Get(ctx context.Context, videoID string) (string, bool)
	Set(ctx context.Context, videoID, transcript string)
}

type noopTranscriptCache struct{}

func (noopTranscriptCache) Get(context.Context, string) (string, bool) { return "", false }
func (noopTranscriptCache) Set(context.Context, string, string)        {}

// RedisTranscriptCache keeps transcripts in Redis, keyed by video id and
// speech model so switching models does not serve stale text.
type RedisTranscriptCache struct {
	rdb   *redis.Client
	model string
	ttl   time.Duration
}

// NewTranscriptCache returns a Redis-backed cache, or a no-op one when rdb is nil.
func NewTranscriptCache(rdb *redis.Client, model string, ttl time.Duration) TranscriptCache {
	if rdb == nil {
		return noopTranscriptCache{}
	}
	return &RedisTranscriptCache{rdb: rdb, model: model, ttl: ttl}
}

func (c *RedisTranscriptCache) key(videoID string) string {
	return "ytquiz:transcript:" + c.model + ":" + videoID
}

func (c *RedisTranscriptCache) Get(ctx context.Context, videoID string) (string, bool) {
	text, err := c.rdb.Get(ctx, c.key(videoID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("transcript cache: get failed", slog.String("video_id", videoID), slog.Any("error", err))
		}
		return "", false
	}
	return text, true
}

func (c *RedisTranscriptCache) Set(ctx context.Context, videoID, transcript string) {
	if err := c.rdb.Set(ctx, c.key(videoID), transcript, c.ttl).Err(); err != nil {
		slog.Warn("transcript cache: set failed", slog.String("video_id", videoID), slog.Any("error", err))
	}
}
