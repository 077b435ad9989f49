// Package cache keeps list results of the issue API in Redis.
//
// Every project has a generation counter. List entries are keyed by the
// project, its current generation and a fingerprint of the filter, so a
// write only has to bump the generation to make every cached list of that
// project unreachable. Stale entries expire through their TTL.
//
// Redis is an accelerator only: every error is logged and treated as a miss.
package cache

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/deppfellow/issue-tracker/internal/metrics"
	"github.com/deppfellow/issue-tracker/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// IssueCache caches filtered issue lists per project.
type IssueCache interface {
	// Lookup returns the cached list for filter. key is where a freshly
	// computed list should be stored; it is empty when caching is not
	// possible right now.
	Lookup(ctx context.Context, filter model.Filter) (issues []model.Issue, key string, hit bool)
	Store(ctx context.Context, key string, issues []model.Issue)
	Invalidate(ctx context.Context, project string)
}

// InvalidationRetrier schedules another attempt at an invalidation that
// failed inline.
type InvalidationRetrier interface {
	RetryInvalidation(ctx context.Context, project string) error
}

type RedisIssueCache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
	retrier InvalidationRetrier
}

func NewRedisIssueCache(client *redis.Client, ttl time.Duration, m *metrics.Metrics) *RedisIssueCache {
	return &RedisIssueCache{
		client:  client,
		ttl:     ttl,
		metrics: m,
	}
}

// RetryWith hands failed invalidations to r.
func (c *RedisIssueCache) RetryWith(r InvalidationRetrier) {
	c.retrier = r
}

func generationKey(project string) string {
	return "issues:gen:" + project
}

func listKey(project string, generation int64, fingerprint uint64) string {
	return fmt.Sprintf("issues:list:%s:%d:%016x", project, generation, fingerprint)
}

func (c *RedisIssueCache) Lookup(ctx context.Context, filter model.Filter) ([]model.Issue, string, bool) {
	generation, err := c.client.Get(ctx, generationKey(filter.Project)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.fail(ctx, "read generation", err)
		return nil, "", false
	}

	key := listKey(filter.Project, generation, Fingerprint(filter))

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.metrics.ObserveCacheLookup(metrics.CacheMiss)
		return nil, key, false
	}
	if err != nil {
		c.fail(ctx, "read list", err)
		return nil, key, false
	}

	var issues []model.Issue
	if err := json.Unmarshal(data, &issues); err != nil {
		c.fail(ctx, "decode list", err)
		return nil, key, false
	}

	c.metrics.ObserveCacheLookup(metrics.CacheHit)
	return issues, key, true
}

func (c *RedisIssueCache) Store(ctx context.Context, key string, issues []model.Issue) {
	if key == "" {
		return
	}
	data, err := json.Marshal(issues)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("issue cache: encode list")
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("issue cache: store list")
	}
}

// Invalidate makes every cached list of project unreachable. A failure is
// handed to the retrier when one is set; otherwise the stale lists live
// until their TTL.
func (c *RedisIssueCache) Invalidate(ctx context.Context, project string) {
	err := c.BumpGeneration(ctx, project)
	if err == nil {
		return
	}

	logger := zerolog.Ctx(ctx)
	logger.Warn().Err(err).Str("project", project).Msg("issue cache: bump generation")

	if c.retrier == nil {
		return
	}
	if err := c.retrier.RetryInvalidation(ctx, project); err != nil {
		logger.Error().Err(err).Str("project", project).Msg("issue cache: schedule invalidation retry")
	}
}

// BumpGeneration increments the generation counter of project.
func (c *RedisIssueCache) BumpGeneration(ctx context.Context, project string) error {
	return c.client.Incr(ctx, generationKey(project)).Err()
}

func (c *RedisIssueCache) fail(ctx context.Context, op string, err error) {
	c.metrics.ObserveCacheLookup(metrics.CacheError)
	zerolog.Ctx(ctx).Warn().Err(err).Msg("issue cache: " + op)
}

// Fingerprint hashes the conditions of filter. Equal filters, as produced by
// model.ParseFilter, have equal fingerprints. Every part is length-prefixed,
// so no value can pass for a boundary between values.
func Fingerprint(filter model.Filter) uint64 {
	d := xxhash.New()
	for _, cond := range filter.Conditions {
		writePart(d, cond.Field.String())
		writePart(d, strconv.Itoa(len(cond.Values)))
		for _, v := range cond.Values {
			writePart(d, encodeValue(v))
		}
	}
	return d.Sum64()
}

func writePart(d *xxhash.Digest, part string) {
	var n [binary.MaxVarintLen64]byte
	_, _ = d.Write(n[:binary.PutUvarint(n[:], uint64(len(part)))])
	_, _ = d.WriteString(part)
}

func encodeValue(v any) string {
	switch t := v.(type) {
	case string:
		return "s" + t
	case bool:
		return "b" + strconv.FormatBool(t)
	case time.Time:
		return "t" + t.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("?%v", v)
}
