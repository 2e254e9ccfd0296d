package recall

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/pipeline"
	"github.com/rushteam/hybridrec/pkg/logging"
	"github.com/rushteam/hybridrec/similarity"
)

// SimilarityStore 把离线算好的 top-k 邻居列表导出到 core.KeyValueStore。
//
// key 格式：
//   - 邻居列表（有序集合，member 为物品 ID，score 为相似度）：{KeyPrefix}:{matrix}:i2i:{itemID}
//   - 物品列表（JSON 数组）：{KeyPrefix}:{matrix}:items
//
// 只写结果，不从中恢复矩阵。
type SimilarityStore struct {
	store core.KeyValueStore

	KeyPrefix string
}

// NewSimilarityStore 创建导出器，keyPrefix 为空时使用 "hybridrec"。
func NewSimilarityStore(s core.KeyValueStore, keyPrefix string) *SimilarityStore {
	if keyPrefix == "" {
		keyPrefix = "hybridrec"
	}
	return &SimilarityStore{store: s, KeyPrefix: keyPrefix}
}

func (s *SimilarityStore) neighborsKey(matrix, itemID string) string {
	return s.KeyPrefix + ":" + matrix + ":i2i:" + itemID
}

func (s *SimilarityStore) itemsKey(matrix string) string {
	return s.KeyPrefix + ":" + matrix + ":items"
}

// PublishStats 是一次导出的统计。
type PublishStats struct {
	Matrix  string `json:"matrix"`
	Items   int    `json:"items"`
	Entries int    `json:"entries"`
}

// Publish 写入矩阵中每个物品的 top-k 邻居（k <= 0 使用 core.DefaultTopK），ttl 单位秒。
// 已存在的列表会先被删除，保证重新导出后不残留旧邻居。
func (s *SimilarityStore) Publish(ctx context.Context, m *similarity.Matrix, k, ttl int) (PublishStats, error) {
	if m == nil {
		return PublishStats{}, core.InvalidInput(core.ModuleStore, "publish: nil matrix")
	}
	stats := PublishStats{Matrix: m.Name()}
	ids := m.IDs()
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		key := s.neighborsKey(m.Name(), id)
		if err := s.store.Delete(ctx, key); err != nil {
			return stats, fmt.Errorf("delete %s: %w", key, err)
		}
		neighbors, _ := m.Similar(id, k)
		for _, n := range neighbors {
			if err := s.store.ZAdd(ctx, key, n.Score, n.ID); err != nil {
				return stats, fmt.Errorf("zadd %s: %w", key, err)
			}
		}
		if err := s.store.Expire(ctx, key, ttl); err != nil {
			return stats, fmt.Errorf("expire %s: %w", key, err)
		}
		stats.Items++
		stats.Entries += len(neighbors)
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return stats, err
	}
	if err := s.store.Set(ctx, s.itemsKey(m.Name()), data, ttl); err != nil {
		return stats, fmt.Errorf("set items: %w", err)
	}

	logging.Ctx(ctx).Info().
		Str("store", s.store.Name()).
		Str("matrix", stats.Matrix).
		Int("items", stats.Items).
		Int("entries", stats.Entries).
		Msg("neighbor lists published")
	return stats, nil
}

// Neighbors 读取已导出的邻居列表，不存在时返回空列表。
func (s *SimilarityStore) Neighbors(ctx context.Context, matrix, itemID string, k int) (core.Ranking, error) {
	stop := int64(-1)
	if k > 0 {
		stop = int64(k) - 1
	}
	return s.store.ZRangeWithScores(ctx, s.neighborsKey(matrix, itemID), 0, stop)
}

// Items 读取已导出的物品列表，不存在时返回空列表。
func (s *SimilarityStore) Items(ctx context.Context, matrix string) ([]string, error) {
	data, err := s.store.Get(ctx, s.itemsKey(matrix))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return []string{}, nil
		}
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// StoredNeighbors 是读取已导出邻居列表的召回源，用于核对导出结果与矩阵一致。
type StoredNeighbors struct {
	Store  *SimilarityStore
	Matrix string
	TopK   int
}

func (r *StoredNeighbors) Name() string        { return "recall.stored." + r.Matrix }
func (r *StoredNeighbors) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *StoredNeighbors) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil || rctx.ItemID == "" {
		return nil, core.InvalidInput(core.ModulePipeline, "stored neighbors recall needs a query item id")
	}
	ranking, err := r.Store.Neighbors(ctx, r.Matrix, rctx.ItemID, topKFrom(rctx, r.TopK))
	if err != nil {
		return nil, err
	}
	return core.ItemsFromRanking(ranking, r.Name()), nil
}

func (r *StoredNeighbors) Process(ctx context.Context, rctx *core.RecommendContext, _ []*core.Item) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}
