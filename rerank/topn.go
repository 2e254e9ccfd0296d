// Package rerank 提供召回 / 过滤之后的重排节点。
package rerank

import (
	"context"
	"sort"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/pipeline"
)

// TopNNode 是 Top-N 截断节点：按 Ranking 规则（分数降序、ID 升序）稳定排序后截取前 N 个物品。
// 通常放在过滤节点之后，保证过滤掉的候选由后面的物品补位。
//
//	p := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &recall.Hybrid{...},      // 召回（多召回一些）
//	        &filter.FilterNode{...},  // 过滤
//	        &rerank.TopNNode{N: 5},   // 截取 Top 5
//	    },
//	}
type TopNNode struct {
	// N 要保留的物品数量，N <= 0 时不截断
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it != nil {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return core.Less(
			core.ScoredItem{ID: out[i].ID, Score: out[i].Score},
			core.ScoredItem{ID: out[j].ID, Score: out[j].Score},
		)
	})

	if n.N <= 0 || len(out) <= n.N {
		return out, nil
	}
	return out[:n.N], nil
}
