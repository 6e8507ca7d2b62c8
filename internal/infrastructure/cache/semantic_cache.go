// Package cache implements the semantic response cache. Requests are
// reduced to a canonical fingerprint of their normalized fields; the
// downstream generation result is stored under that fingerprint with a
// TTL. Entries derive purely from input, so TTL expiry is the only
// invalidation path.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	goredis "github.com/redis/go-redis/v9"

	"github.com/printstarter/printstarter/internal/config"
	"github.com/printstarter/printstarter/pkg/constants"
	"github.com/printstarter/printstarter/pkg/errors"
	"github.com/printstarter/printstarter/pkg/logger"
)

// promptKeyFields is the canonical representation hashed for the
// prompt-suggestion fingerprint. Struct order fixes the key order, which
// must stay stable: changing it silently invalidates every cached entry.
type promptKeyFields struct {
	Printer   string `json:"printer"`
	Filament  string `json:"filament"`
	TimeLimit string `json:"timeLimit"`
	Skill     string `json:"skill"`
}

// ideaKeyFields extends the canonical form with the free-text prompt.
type ideaKeyFields struct {
	Printer   string `json:"printer"`
	Filament  string `json:"filament"`
	TimeLimit string `json:"timeLimit"`
	Skill     string `json:"skill"`
	Prompt    string `json:"prompt"`
}

// PromptFingerprint derives the cache key for a prompt-suggestion request.
// Identical normalized fields always yield identical fingerprints.
func PromptFingerprint(printer, filament, timeLimit, skill string) string {
	canonical, _ := json.Marshal(promptKeyFields{
		Printer:   NormalizeText(printer),
		Filament:  NormalizeText(filament),
		TimeLimit: NormalizeText(timeLimit),
		Skill:     NormalizeText(skill),
	})
	return constants.KeyPromptCachePrefix + hexSHA256(canonical)
}

// IdeaFingerprint derives the cache key for an idea-generation request.
func IdeaFingerprint(printer, filament, timeLimit, skill, prompt string) string {
	canonical, _ := json.Marshal(ideaKeyFields{
		Printer:   NormalizeText(printer),
		Filament:  NormalizeText(filament),
		TimeLimit: NormalizeText(timeLimit),
		Skill:     NormalizeText(skill),
		Prompt:    NormalizeText(prompt),
	})
	return constants.KeyIdeaCachePrefix + hexSHA256(canonical)
}

func hexSHA256(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// SemanticCache is a read-through cache on Redis with a small in-process
// hot tier in front. Redis is the source of truth; the hot tier only
// shaves repeated lookups within a short horizon on a single instance.
type SemanticCache struct {
	client  goredis.UniversalClient
	hot     *gocache.Cache
	hotTTL  time.Duration
	log     logger.Logger
}

// NewSemanticCache creates the cache. The hot tier is disabled when
// cfg.HotTierDisabled is set or its TTL is zero.
func NewSemanticCache(client goredis.UniversalClient, cfg *config.CacheConfig, log logger.Logger) *SemanticCache {
	c := &SemanticCache{
		client: client,
		log:    log.WithComponent("cache"),
	}
	if !cfg.HotTierDisabled && cfg.HotTierTTL() > 0 {
		c.hotTTL = cfg.HotTierTTL()
		c.hot = gocache.New(c.hotTTL, 2*c.hotTTL)
	}
	return c
}

// Lookup returns the cached payload bytes for a fingerprint, reporting
// whether it was present. Store errors propagate so the caller surfaces
// them instead of silently regenerating.
func (c *SemanticCache) Lookup(ctx context.Context, fingerprint string) ([]byte, bool, error) {
	if c.hot != nil {
		if v, found := c.hot.Get(fingerprint); found {
			return v.([]byte), true, nil
		}
	}

	val, err := c.client.Get(ctx, fingerprint).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.ErrStoreUnavailable(err)
	}

	c.fillHotTier(fingerprint, val)
	return val, true, nil
}

// Store serializes payload and writes it under the fingerprint with ttl.
func (c *SemanticCache) Store(ctx context.Context, fingerprint string, payload interface{}, ttl time.Duration) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.ErrServer(fmt.Sprintf("marshal cache payload: %v", err))
	}

	if err := c.client.Set(ctx, fingerprint, data, ttl).Err(); err != nil {
		return errors.ErrStoreUnavailable(err)
	}

	c.fillHotTier(fingerprint, data)
	c.log.Debug(ctx, "cache entry stored",
		logger.String("fingerprint", fingerprint),
		logger.Int64("ttl_seconds", int64(ttl.Seconds())),
	)
	return nil
}

func (c *SemanticCache) fillHotTier(fingerprint string, data []byte) {
	if c.hot == nil {
		return
	}
	c.hot.Set(fingerprint, data, c.hotTTL)
}
