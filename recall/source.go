package recall

import (
	"context"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/pkg/conv"
)

// Source 表示一个可复用的召回源（协同过滤 / 内容 / 混合）。
// 可以单独作为 Node 使用，也可以放进 Fanout 并发执行。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// topKFrom 优先使用请求级 Params["top_k"] 覆盖默认值。
func topKFrom(rctx *core.RecommendContext, def int) int {
	if rctx != nil {
		if k, ok := conv.ToInt(rctx.Params["top_k"]); ok && k > 0 {
			return k
		}
	}
	return def
}
