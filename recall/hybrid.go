package recall

import (
	"context"
	"strconv"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/hybrid"
	"github.com/rushteam/hybridrec/pipeline"
	"github.com/rushteam/hybridrec/pkg/conv"
	"github.com/rushteam/hybridrec/pkg/utils"
	"github.com/rushteam/hybridrec/similarity"
)

// Hybrid 是混合打分召回：alpha * collaborative + (1 - alpha) * content。
// 请求级 Params["alpha"] / Params["top_k"] 可覆盖 Scorer 的默认值。
//
// 每个结果的 Features 记录两路分数，Labels 记录 alpha，方便 explain。
type Hybrid struct {
	Scorer        hybrid.Scorer
	Collaborative *similarity.Matrix
	Content       *similarity.Matrix
}

func (r *Hybrid) Name() string        { return "recall.hybrid" }
func (r *Hybrid) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *Hybrid) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil || rctx.ItemID == "" {
		return nil, core.InvalidInput(core.ModulePipeline, "hybrid recall needs a query item id")
	}
	scorer := r.Scorer
	if a, ok := conv.ToFloat64(rctx.Params["alpha"]); ok {
		scorer.Alpha = a
	}
	scorer.TopK = topKFrom(rctx, scorer.TopK)

	res, err := scorer.Recommend(ctx, rctx.ItemID, r.Collaborative, r.Content)
	if err != nil {
		return nil, err
	}

	items := core.ItemsFromRanking(res.Items, r.Name())
	alpha := strconv.FormatFloat(scorer.Alpha, 'f', -1, 64)
	for i, it := range items {
		c := res.Components[i]
		it.Features[similarity.NameCollaborative] = c.Collaborative
		it.Features[similarity.NameContent] = c.Content
		it.PutLabel("hybrid_alpha", utils.RecallLabel(alpha))
	}
	return items, nil
}

func (r *Hybrid) Process(ctx context.Context, rctx *core.RecommendContext, _ []*core.Item) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}
