package recall

import (
	"context"
	"strconv"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/pipeline"
	"github.com/rushteam/hybridrec/pkg/utils"
	"github.com/rushteam/hybridrec/similarity"
)

// ItemToItem 从单个相似度矩阵召回与 rctx.ItemID 最相似的物品。
// 查询物品不在矩阵中时返回空列表（已记录 warn 日志），不返回错误。
type ItemToItem struct {
	Matrix *similarity.Matrix
	TopK   int
}

func (r *ItemToItem) Name() string {
	if r.Matrix == nil {
		return "recall.i2i"
	}
	return "recall.i2i." + r.Matrix.Name()
}

func (r *ItemToItem) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *ItemToItem) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil || rctx.ItemID == "" {
		return nil, core.InvalidInput(core.ModulePipeline, "item-to-item recall needs a query item id")
	}
	if r.Matrix == nil {
		return nil, core.InvalidInput(core.ModulePipeline, "item-to-item recall has no matrix")
	}
	res := similarity.SimilarItems(ctx, r.Matrix, rctx.ItemID, topKFrom(rctx, r.TopK))
	items := core.ItemsFromRanking(res.Items, r.Name())
	for i, it := range items {
		it.Features[r.Matrix.Name()] = it.Score
		it.PutLabel("recall_rank", utils.RecallLabel(strconv.Itoa(i + 1)))
	}
	return items, nil
}

// Process 作为 Recall Node 使用时忽略上游 items。
func (r *ItemToItem) Process(ctx context.Context, rctx *core.RecommendContext, _ []*core.Item) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}
