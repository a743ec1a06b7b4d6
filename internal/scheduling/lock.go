package scheduling

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Locker 串行化同一时段资源（教师/班级分组 + 星期）的“检查-写入”流程
//
// Lock 按 keys 全部加锁后返回 unlock；ctx 取消或超时时返回错误且不持有任何锁。
type Locker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}

// SlotKeys 生成候选记录需要持有的锁键（已排序去重，避免死锁）
func SlotKeys(e Entry) []string {
	keys := []string{
		fmt.Sprintf("slot:faculty:%d:day:%d", e.FacultyID, int(e.Day)),
		fmt.Sprintf("slot:section:%d:day:%d", e.SectionID, int(e.Day)),
	}
	return normalizeKeys(keys)
}

func normalizeKeys(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LocalLocker 进程内按键互斥锁，适用于单实例部署或 Redis 不可用时降级
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*keyedSlot
}

type keyedSlot struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker 创建进程内锁
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*keyedSlot)}
}

// Lock 按排序后的顺序依次获取每个键
func (l *LocalLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = normalizeKeys(keys)
	acquired := make([]string, 0, len(keys))

	for _, k := range keys {
		slot := l.ref(k)
		select {
		case slot.ch <- struct{}{}:
			acquired = append(acquired, k)
		case <-ctx.Done():
			l.unref(k)
			l.release(acquired)
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(acquired) })
	}, nil
}

func (l *LocalLocker) ref(key string) *keyedSlot {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &keyedSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	return slot
}

func (l *LocalLocker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot := l.slots[key]
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}

func (l *LocalLocker) release(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		l.mu.Lock()
		slot := l.slots[keys[i]]
		l.mu.Unlock()
		<-slot.ch
		l.unref(keys[i])
	}
}

// FallbackLocker 主锁（通常为 Redis）在 ctx 仍有效时返回错误，视为锁服务不可用，改用备用锁
//
// ctx 超时或取消导致的失败直接返回，不降级。降级期间多实例之间不再互斥，
// PostgreSQL 的排他约束仍会拒绝重叠写入。
type FallbackLocker struct {
	primary    Locker
	fallback   Locker
	onFallback func(err error)
}

// NewFallbackLocker 创建降级锁；onFallback 可为 nil
func NewFallbackLocker(primary, fallback Locker, onFallback func(err error)) *FallbackLocker {
	return &FallbackLocker{primary: primary, fallback: fallback, onFallback: onFallback}
}

// Lock 优先使用主锁
func (l *FallbackLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	unlock, err := l.primary.Lock(ctx, keys...)
	if err == nil {
		return unlock, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	if l.onFallback != nil {
		l.onFallback(err)
	}
	return l.fallback.Lock(ctx, keys...)
}
