package store

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/hybridrec/core"
)

// MemoryStore 是内存实现的 KeyValueStore，用于测试 / 本地运行。
// 支持 TTL（过期时间），进程退出后数据丢失。
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	zsets  map[string]map[string]float64 // zset key -> member -> score
	expire map[string]time.Time          // 普通 key 与 zset key 共用
	clean  *time.Ticker
	done   chan struct{}
}

func NewMemoryStore() *MemoryStore {
	ms := &MemoryStore{
		data:   make(map[string][]byte),
		zsets:  make(map[string]map[string]float64),
		expire: make(map[string]time.Time),
		clean:  time.NewTicker(10 * time.Second),
		done:   make(chan struct{}),
	}
	go ms.cleanup(ms.clean.C)
	return ms
}

func (m *MemoryStore) Name() string { return "memory" }

// expired 需在持有锁时调用。
func (m *MemoryStore) expired(key string, now time.Time) bool {
	t, ok := m.expire[key]
	return ok && now.After(t)
}

func (m *MemoryStore) setTTL(key string, ttl []int) {
	if len(ttl) > 0 && ttl[0] > 0 {
		m.expire[key] = time.Now().Add(time.Duration(ttl[0]) * time.Second)
		return
	}
	delete(m.expire, key)
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok || m.expired(key, time.Now()) {
		return nil, core.ErrStoreNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
	m.setTTL(key, ttl)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	delete(m.zsets, key)
	delete(m.expire, key)
	return nil
}

func (m *MemoryStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string][]byte, len(keys))
	now := time.Now()
	for _, k := range keys {
		v, ok := m.data[k]
		if !ok || m.expired(k, now) {
			continue
		}
		result[k] = v
	}
	return result, nil
}

func (m *MemoryStore) BatchSet(ctx context.Context, kvs map[string][]byte, ttl ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range kvs {
		m.data[k] = v
		m.setTTL(k, ttl)
	}
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clean != nil {
		m.clean.Stop()
		close(m.done)
		m.clean = nil
	}
	return nil
}

func (m *MemoryStore) cleanup(tick <-chan time.Time) {
	for {
		select {
		case <-m.done:
			return
		case <-tick:
			m.purge(time.Now())
		}
	}
}

func (m *MemoryStore) purge(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, t := range m.expire {
		if now.After(t) {
			delete(m.data, k)
			delete(m.zsets, k)
			delete(m.expire, k)
		}
	}
}

// KeyValueStore 扩展方法

var _ core.KeyValueStore = (*MemoryStore)(nil)

func (m *MemoryStore) ZAdd(ctx context.Context, key string, score float64, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.expired(key, time.Now()) {
		delete(m.zsets, key)
		delete(m.expire, key)
	}
	if m.zsets[key] == nil {
		m.zsets[key] = make(map[string]float64)
	}
	m.zsets[key][member] = score
	return nil
}

func (m *MemoryStore) ZRangeWithScores(ctx context.Context, key string, start, stop int64) (core.Ranking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	zset, ok := m.zsets[key]
	if !ok || len(zset) == 0 || m.expired(key, time.Now()) {
		return core.Ranking{}, nil
	}

	r := make(core.Ranking, 0, len(zset))
	for member, score := range zset {
		r = append(r, core.ScoredItem{ID: member, Score: score})
	}
	r.Sort()
	return window(r, start, stop), nil
}

func (m *MemoryStore) Expire(ctx context.Context, key string, ttl int) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	_, isKV := m.data[key]
	_, isZSet := m.zsets[key]
	if !isKV && !isZSet {
		return nil
	}
	m.expire[key] = time.Now().Add(time.Duration(ttl) * time.Second)
	return nil
}
