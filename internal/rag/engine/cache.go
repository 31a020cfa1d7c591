package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"

	"scholarag/internal/config"
	"scholarag/internal/rag/schema"
	"scholarag/pkg/logger"
)

// AnswerCache memoizes generated answers in Redis, keyed by a digest of the
// question, the top-k and the filters. The corpus changes only through
// explicit ingestion, so a TTL is enough to bound staleness.
type AnswerCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewAnswerCache connects to Redis and verifies the connection. A config
// with an empty address disables caching and returns (nil, nil).
func NewAnswerCache(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*AnswerCache, error) {
	if cfg.Address == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Address, err)
	}

	return &AnswerCache{
		client: client,
		ttl:    time.Duration(cfg.TTLSeconds) * time.Second,
		log:    log.WithComponent("answer_cache"),
	}, nil
}

// Close releases the Redis connection.
func (c *AnswerCache) Close() error {
	return c.client.Close()
}

// Get looks up a cached answer. Cache misses and Redis failures both report
// not-found; a degraded cache never blocks answering.
func (c *AnswerCache) Get(ctx context.Context, question string, k int, filters schema.Filters) (schema.Answer, bool) {
	data, err := c.client.Get(ctx, cacheKey(question, k, filters)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn(fmt.Sprintf("cache read failed: %v", err))
		}
		return schema.Answer{}, false
	}

	var answer schema.Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		c.log.Warn(fmt.Sprintf("cache entry corrupt, ignoring: %v", err))
		return schema.Answer{}, false
	}
	return answer, true
}

// Set stores the answer with the configured TTL. Failures are logged and
// swallowed.
func (c *AnswerCache) Set(ctx context.Context, question string, k int, filters schema.Filters, answer schema.Answer) {
	data, err := json.Marshal(answer)
	if err != nil {
		c.log.Warn(fmt.Sprintf("cache marshal failed: %v", err))
		return
	}
	if err := c.client.Set(ctx, cacheKey(question, k, filters), data, c.ttl).Err(); err != nil {
		c.log.Warn(fmt.Sprintf("cache write failed: %v", err))
	}
}

// cacheKey digests the question, k and the filters in sorted key order so
// that equal queries always hash the same.
func cacheKey(question string, k int, filters schema.Filters) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d", question, k)

	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(h, "|%s=%s", key, filters[key])
	}

	return "answer:" + hex.EncodeToString(h.Sum(nil))
}
