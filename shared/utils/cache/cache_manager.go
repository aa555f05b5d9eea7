package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"entitlement-backend/shared/config"
)

// CacheManager caches compiled permission documents so read paths do not
// recompile the subscription graph on every authorization lookup. Every
// mutation of the graph invalidates the affected documents; a cache miss
// always falls back to recompilation.
type CacheManager struct {
	client *redis.Client
}

var (
	globalCacheManager *CacheManager

	// PermissionDocumentTTL bounds staleness if an invalidation is lost.
	PermissionDocumentTTL = 30 * time.Minute
)

// InitCacheManager initializes the global cache manager
func InitCacheManager() error {
	cfg := config.GetConfig()

	redisDB, err := strconv.Atoi(cfg.RedisDB)
	if err != nil {
		log.Printf("❌ Invalid Redis DB number: %s, using default 0", cfg.RedisDB)
		redisDB = 0
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       redisDB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	globalCacheManager = &CacheManager{client: client}

	log.Printf("✅ Redis Cache Manager initialized successfully - %s:%s DB:%d",
		cfg.RedisHost, cfg.RedisPort, redisDB)

	return nil
}

// GetCacheManager returns the global cache manager instance, or nil when
// the cache is disabled or unreachable. Callers must treat nil as "no
// cache" and keep working.
func GetCacheManager() *CacheManager {
	return globalCacheManager
}

// permissionDocumentKey generates the cache key for a user's compiled
// permission document.
func permissionDocumentKey(userID uint) string {
	return fmt.Sprintf("permdoc:user:%d", userID)
}

// GetPermissionDocument returns the cached document for a user, if any.
func (cm *CacheManager) GetPermissionDocument(ctx context.Context, userID uint) (string, bool) {
	if cm == nil {
		return "", false
	}
	doc, err := cm.client.Get(ctx, permissionDocumentKey(userID)).Result()
	if err != nil {
		return "", false
	}
	return doc, true
}

// SetPermissionDocument stores a freshly compiled document.
func (cm *CacheManager) SetPermissionDocument(ctx context.Context, userID uint, document string) {
	if cm == nil {
		return
	}
	if err := cm.client.Set(ctx, permissionDocumentKey(userID), document, PermissionDocumentTTL).Err(); err != nil {
		log.Printf("❌ Failed to cache permission document for user %d: %v", userID, err)
	}
}

// InvalidateUser drops one user's cached document.
func (cm *CacheManager) InvalidateUser(ctx context.Context, userID uint) {
	if cm == nil {
		return
	}
	cm.client.Del(ctx, permissionDocumentKey(userID))
}

// InvalidateAll drops every cached permission document. Called after
// mutations of the shared subscription graph, where any user's document
// may have changed.
func (cm *CacheManager) InvalidateAll(ctx context.Context) {
	if cm == nil {
		return
	}
	iter := cm.client.Scan(ctx, 0, "permdoc:user:*", 100).Iterator()
	for iter.Next(ctx) {
		cm.client.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("❌ Failed to scan permission document keys: %v", err)
	}
}
