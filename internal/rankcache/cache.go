// Package rankcache memoizes ranked shortlists in Redis. Ranking is a pure
// function of its inputs, so entries are keyed by a content hash and never
// need explicit invalidation.
package rankcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pawmatch-workers/internal/common/logger"
	"pawmatch-workers/internal/common/metrics"
	"pawmatch-workers/internal/matching"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "matches:rank:"

// Ranker is satisfied by *matching.Engine.
type Ranker interface {
	Rank(profile matching.AdopterProfile, candidates []matching.CandidateRecord, topK int, minScore float64) []matching.Match
	ModelVersion() string
}

type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
	log    logger.Logger
}

func New(client redis.Cmdable, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		log:    log.WithFields(map[string]interface{}{"component": "rankcache"}),
	}
}

type keyMaterial struct {
	ModelVersion string                     `json:"modelVersion"`
	Profile      matching.AdopterProfile    `json:"profile"`
	Candidates   []matching.CandidateRecord `json:"candidates"`
	TopK         int                        `json:"topK"`
	MinScore     float64                    `json:"minScore"`
}

// Key hashes every input that affects the ranked output, including the model
// version so a scoring change never serves stale results.
func Key(modelVersion string, profile matching.AdopterProfile, candidates []matching.CandidateRecord, topK int, minScore float64) (string, error) {
	raw, err := json.Marshal(keyMaterial{
		ModelVersion: modelVersion,
		Profile:      profile,
		Candidates:   candidates,
		TopK:         topK,
		MinScore:     minScore,
	})
	if err != nil {
		return "", fmt.Errorf("encode cache key: %w", err)
	}
	sum := sha256.Sum256(raw)
	return keyPrefix + hex.EncodeToString(sum[:]), nil
}

// Get returns the cached shortlist. A miss is reported with ok=false and a nil error.
func (c *Cache) Get(ctx context.Context, key string) ([]matching.Match, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var matches []matching.Match
	if err := json.Unmarshal(val, &matches); err != nil {
		return nil, false, fmt.Errorf("decode cached matches: %w", err)
	}
	return matches, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, matches []matching.Match) error {
	data, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("encode matches: %w", err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Rank serves the shortlist from cache when possible and falls back to the
// ranker otherwise. Cache failures are logged and never surface to the caller.
func (c *Cache) Rank(ctx context.Context, ranker Ranker, profile matching.AdopterProfile, candidates []matching.CandidateRecord, topK int, minScore float64) ([]matching.Match, bool) {
	key, err := Key(ranker.ModelVersion(), profile, candidates, topK, minScore)
	if err != nil {
		c.log.Warn("cache key unavailable", map[string]interface{}{"error": err})
		return ranker.Rank(profile, candidates, topK, minScore), false
	}

	matches, ok, err := c.Get(ctx, key)
	switch {
	case err != nil:
		metrics.RankCacheLookups.WithLabelValues("error").Inc()
		c.log.Warn("rank cache read failed", map[string]interface{}{"error": err, "key": key})
	case ok:
		metrics.RankCacheLookups.WithLabelValues("hit").Inc()
		return matches, true
	default:
		metrics.RankCacheLookups.WithLabelValues("miss").Inc()
	}

	matches = ranker.Rank(profile, candidates, topK, minScore)
	if err := c.Set(ctx, key, matches); err != nil {
		c.log.Warn("rank cache write failed", map[string]interface{}{"error": err, "key": key})
	}
	return matches, false
}
