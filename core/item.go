package core

import "github.com/rushteam/hybridrec/pkg/utils"

// Item 是 Pipeline 中流转的候选商品：分数、分项得分、标签。
// Labels 用于解释（来自哪个相似度矩阵、权重是多少）；Score 用于排序。
type Item struct {
	ID       string
	Score    float64
	Features map[string]float64
	Meta     map[string]any
	Labels   map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:       id,
		Score:    0,
		Features: make(map[string]float64),
		Meta:     make(map[string]any),
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// ItemsFromRanking 把有序结果转成 Pipeline 使用的 Item 列表，顺序保持不变。
func ItemsFromRanking(r Ranking, source string) []*Item {
	out := make([]*Item, 0, len(r))
	for _, s := range r {
		it := NewItem(s.ID)
		it.Score = s.Score
		if source != "" {
			it.PutLabel("recall_source", utils.RecallLabel(source))
		}
		out = append(out, it)
	}
	return out
}

// RankingFromItems 是 ItemsFromRanking 的逆操作，nil item 会被跳过。
func RankingFromItems(items []*Item) Ranking {
	out := make(Ranking, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, ScoredItem{ID: it.ID, Score: it.Score})
	}
	return out
}
