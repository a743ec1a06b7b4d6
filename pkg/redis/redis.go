package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"edusync/backend/config"
)

// Client Redis 客户端封装
// 用于 Token 黑名单、写接口限流与排课时段锁
type Client struct {
	rdb     *goredis.Client
	logger  *zap.Logger
	lockTTL time.Duration
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, lockTTL time.Duration, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return NewFromClient(rdb, lockTTL, logger), nil
}

// NewFromClient 包装已有连接
func NewFromClient(rdb *goredis.Client, lockTTL time.Duration, logger *zap.Logger) *Client {
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	return &Client{rdb: rdb, logger: logger, lockTTL: lockTTL}
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 限流 ──

// CheckRateLimit 滑动窗口计数：窗口内请求数不超过 limit 时返回 true
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	member := strconv.FormatInt(now.UnixNano(), 10)

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(now.Add(-window).UnixNano(), 10))
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixNano()), Member: member})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return card.Val() <= int64(limit), nil
}

// ── 排课时段锁 ──

const lockPrefix = "lock:"

// 仅当值仍为本持有者的 token 时删除，避免误删他人在过期后重新获取的锁
var releaseScript = goredis.NewScript(`
for i, key in ipairs(KEYS) do
	if redis.call("GET", key) == ARGV[1] then
		redis.call("DEL", key)
	end
end
return 1
`)

// ErrLockTimeout 在 ctx 截止前未能获取全部时段锁
var ErrLockTimeout = errors.New("获取排课时段锁超时")

const lockRetryInterval = 25 * time.Millisecond

// Lock 依次获取 keys 对应的分布式锁（SET NX PX），键按字典序排序避免死锁
// 任一键获取失败时按 lockRetryInterval 重试，直到 ctx 结束；返回的 unlock 可重复调用
func (c *Client) Lock(ctx context.Context, keys ...string) (func(), error) {
	sorted := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			sorted = append(sorted, k)
		}
	}
	sort.Strings(sorted)

	token := uuid.New().String()
	held := make([]string, 0, len(sorted))

	release := func() {
		if len(held) == 0 {
			return
		}
		// 释放不应被已取消的请求上下文中断
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, c.rdb, held, token).Err(); err != nil {
			c.logger.Warn("释放排课时段锁失败", zap.Strings("keys", held), zap.Error(err))
		}
		held = held[:0]
	}

	for _, k := range sorted {
		key := lockPrefix + k
		for {
			ok, err := c.rdb.SetNX(ctx, key, token, c.lockTTL).Result()
			if err != nil {
				release()
				if ctx.Err() != nil {
					return nil, fmt.Errorf("%w: %s", ErrLockTimeout, k)
				}
				return nil, fmt.Errorf("获取排课时段锁失败: %w", err)
			}
			if ok {
				held = append(held, key)
				break
			}

			select {
			case <-ctx.Done():
				release()
				return nil, fmt.Errorf("%w: %s", ErrLockTimeout, k)
			case <-time.After(lockRetryInterval):
			}
		}
	}

	var once sync.Once
	return func() { once.Do(release) }, nil
}

// Ping 健康检查
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
