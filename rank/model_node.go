// Package rank 提供用 RankModel 对召回结果重新打分的排序节点。
package rank

import (
	"context"
	"sort"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/model"
	"github.com/rushteam/hybridrec/pipeline"
	"github.com/rushteam/hybridrec/pkg/utils"
)

// ModelNode 用 RankModel 对 item.Features 打分。
//   - 写入 labels：rank_model
//   - 更新 item.Score 并按 Ranking 规则排序
//
// 典型用法是 Fanout 召回两个矩阵的邻居（features 里分别带 collaborative / content 分数），
// 再用 model.BlendModel(alpha) 重新融合。
type ModelNode struct {
	Model model.RankModel
}

func (n *ModelNode) Name() string        { return "rank.model" }
func (n *ModelNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *ModelNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Model == nil || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		score, err := n.Model.Predict(it.Features)
		if err != nil {
			return nil, err
		}
		it.Score = score
		it.PutLabel("rank_model", utils.RankLabel(n.Model.Name()))
		out = append(out, it)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return core.Less(
			core.ScoredItem{ID: out[i].ID, Score: out[i].Score},
			core.ScoredItem{ID: out[j].ID, Score: out[j].Score},
		)
	})
	return out, nil
}
