package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/esaha/esaha-backend/internal/logger"
	"github.com/esaha/esaha-backend/internal/utils"
)

// Identity is the resolved caller behind a bearer token.
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	AuthType string `json:"auth_type"`
}

// IdentityCache caches token resolutions so hot requests skip the
// upstream verification round-trip.
type IdentityCache interface {
	Get(ctx context.Context, token string) (*Identity, error)
	Set(ctx context.Context, token string, identity *Identity) error
	Close() error
}

type identityCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewIdentityCache(log *logger.Logger) (IdentityCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	ttlSec := utils.GetEnvAsInt("REDIS_IDENTITY_TTL_SECONDS", 300, nil)
	if ttlSec <= 0 {
		ttlSec = 300
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &identityCache{
		log:    log.With("service", "RedisIdentityCache"),
		rdb:    rdb,
		prefix: "identity:",
		ttl:    time.Duration(ttlSec) * time.Second,
	}, nil
}

// Tokens are hashed before use as keys so raw credentials never land in redis.
func (c *identityCache) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return c.prefix + hex.EncodeToString(sum[:])
}

func (c *identityCache) Get(ctx context.Context, token string) (*Identity, error) {
	if c == nil || c.rdb == nil {
		return nil, fmt.Errorf("identity cache not initialized")
	}
	raw, err := c.rdb.Get(ctx, c.key(token)).Result()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var identity Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		c.log.Warn("bad cached identity payload", "error", err)
		return nil, nil
	}
	return &identity, nil
}

func (c *identityCache) Set(ctx context.Context, token string, identity *Identity) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("identity cache not initialized")
	}
	if identity == nil {
		return fmt.Errorf("identity required")
	}
	raw, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(token), raw, c.ttl).Err()
}

func (c *identityCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
