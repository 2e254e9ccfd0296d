// Package filter 在召回之后剔除候选商品。
package filter

import (
	"context"

	"github.com/rushteam/hybridrec/core"
)

// Filter 返回 true 表示剔除 item。rctx.ItemID 是本次查询的商品。
type Filter interface {
	Name() string
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}
