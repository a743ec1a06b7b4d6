//go:build integration

package redis

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 运行方式: EDUSYNC_TEST_REDIS_ADDR=localhost:6379 go test -tags=integration ./pkg/redis/...
func newTestClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("EDUSYNC_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("未设置 EDUSYNC_TEST_REDIS_ADDR，跳过 Redis 集成测试")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr, DB: 15})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis 不可用: %v", err)
	}
	t.Cleanup(func() {
		rdb.FlushDB(context.Background())
		_ = rdb.Close()
	})
	return NewFromClient(rdb, 5*time.Second, zap.NewNop())
}

func TestLock_Serializes(t *testing.T) {
	c := newTestClient(t)
	keys := []string{"slot:section:1:day:1", "slot:faculty:1:day:1"}

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			unlock, err := c.Lock(ctx, keys...)
			if err != nil {
				t.Errorf("Lock 失败: %v", err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Errorf("期望同一时刻最多 1 个持有者，实际 %d", maxInside)
	}
}

func TestLock_Timeout(t *testing.T) {
	c := newTestClient(t)
	unlock, err := c.Lock(context.Background(), "slot:faculty:9:day:2")
	if err != nil {
		t.Fatalf("Lock 失败: %v", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := c.Lock(ctx, "slot:faculty:9:day:2"); err == nil {
		t.Error("锁被占用时应超时返回错误")
	}
}

func TestBlacklistAndRateLimit(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if err := c.BlacklistToken(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("BlacklistToken 失败: %v", err)
	}
	if ok, _ := c.IsBlacklisted(ctx, "jti-1"); !ok {
		t.Error("期望 jti-1 在黑名单中")
	}

	for i := 1; i <= 3; i++ {
		allowed, err := c.CheckRateLimit(ctx, "rate_limit:test", 2, time.Minute)
		if err != nil {
			t.Fatalf("CheckRateLimit 失败: %v", err)
		}
		if want := i <= 2; allowed != want {
			t.Errorf("第 %d 次请求期望 allowed=%v，实际 %v", i, want, allowed)
		}
	}
}
