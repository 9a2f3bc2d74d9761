package walker

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/repometrics/core/history"
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
	"github.com/rs/zerolog/log"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// maxCacheAge is how long a cached history stays valid.
const maxCacheAge = 7 * 24 * time.Hour

// cachedExtract returns the history for one root, served from the cache store
// when possible. Unresolved since expressions are never cached since their
// meaning moves with the clock.
func cachedExtract(ctx context.Context, cfg *contract.Config, client contract.GitClient, store contract.CacheStore, rootPath string) map[string]*schema.FileRecord {
	if store == nil || cfg.SinceTime.IsZero() {
		return history.Extract(ctx, client, rootPath, cfg.Since)
	}

	repoHash, err := client.GetRepoHash(ctx, rootPath)
	if err != nil {
		// Empty repositories and non-repositories have no HEAD
		return history.Extract(ctx, client, rootPath, cfg.Since)
	}
	key := generateCacheKey(rootPath, repoHash, cfg.SinceTime)

	if result := checkCacheHit(store, key); result != nil {
		return result
	}
	return computeAndStore(ctx, cfg, client, store, rootPath, key)
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) map[string]*schema.FileRecord {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	if version == currentCacheVersion && time.Since(time.Unix(ts, 0)) <= maxCacheAge {
		var result map[string]*schema.FileRecord
		if err := json.Unmarshal(data, &result); err == nil && result != nil {
			return result // Cache hit
		}
	}
	return nil // Cache miss (stale or version mismatch)
}

// computeAndStore computes the result and stores it in cache
func computeAndStore(ctx context.Context, cfg *contract.Config, client contract.GitClient, store contract.CacheStore, rootPath, key string) map[string]*schema.FileRecord {
	result, err := history.Load(ctx, client, rootPath, cfg.Since)
	if err != nil {
		log.Warn().Err(err).Str("root", rootPath).Msg("Skipping history for repository")
		return map[string]*schema.FileRecord{}
	}
	if data, err := json.Marshal(result); err == nil {
		if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to cache history", err)
		}
	}
	return result
}

// generateCacheKey creates a unique key from the root, its HEAD and the window start.
func generateCacheKey(rootPath, repoHash string, since time.Time) string {
	key := fmt.Sprintf("%s:%s:%d", rootPath, repoHash, since.Unix())
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
