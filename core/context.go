package core

import "github.com/rushteam/hybridrec/pkg/utils"

// RecommendContext 承载一次查询的上下文，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	// ItemID 是被查询的商品（"看了这个的人还看了什么"）
	ItemID string

	// UserID 可选，离线评估时用于标记是哪个用户的样本
	UserID string

	Scene string

	// Labels 是请求级标签，可驱动 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级参数，例如 alpha、top_k 的临时覆盖
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
