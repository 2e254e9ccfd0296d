// Package store 提供 core.Store / core.KeyValueStore 的实现。
//
// 接口定义在 core 包：
//
//	var kv core.KeyValueStore = store.NewMemoryStore()
//	kv, err := store.NewRedisStore("127.0.0.1:6379", 0)
//
// 邻居列表导出（recall.SimilarityStore）只依赖 core.KeyValueStore，两种实现可互换。
package store

import (
	"github.com/rushteam/hybridrec/core"
)

// 窗口裁剪：与 Redis 的 ZRANGE start/stop 语义一致（闭区间，stop < 0 表示到末尾）。
func window(r core.Ranking, start, stop int64) core.Ranking {
	n := int64(len(r))
	if start < 0 {
		start = 0
	}
	if stop < 0 || stop >= n {
		stop = n - 1
	}
	if start > stop {
		return core.Ranking{}
	}
	return r[start : stop+1]
}
