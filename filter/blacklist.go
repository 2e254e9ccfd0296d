package filter

import (
	"context"
	"encoding/json"

	"github.com/rushteam/hybridrec/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉黑名单中的物品（例如已下架商品）。
type BlacklistFilter struct {
	ids map[string]struct{}

	// Store 用于从存储中读取黑名单（可选），Key 对应的值为 JSON 字符串数组
	Store core.Store
	Key   string
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(itemIDs []string, s core.Store, key string) *BlacklistFilter {
	ids := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		ids[id] = struct{}{}
	}
	return &BlacklistFilter{ids: ids, Store: s, Key: key}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if _, ok := f.ids[item.ID]; ok {
		return true, nil
	}

	if f.Store == nil || f.Key == "" {
		return false, nil
	}
	data, err := f.Store.Get(ctx, f.Key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return false, nil
		}
		return false, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == item.ID {
			return true, nil
		}
	}
	return false, nil
}
