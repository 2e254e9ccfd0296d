// Package hybrid 把协同过滤与内容相似度按 alpha 线性融合：
//
//	score = alpha * collaborative + (1 - alpha) * content
//
// 候选集是两个矩阵物品的并集（去掉查询物品本身），在某个矩阵里缺失的一项按 0 计。
package hybrid

import (
	"context"
	"math"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/pkg/logging"
	"github.com/rushteam/hybridrec/similarity"
)

// DefaultAlpha 是两路相似度等权融合。
const DefaultAlpha = 0.5

// Components 是融合前的两路分数。
type Components struct {
	Collaborative float64 `json:"collaborative"`
	Content       float64 `json:"content"`
}

// Result 在 core.Result 之上附带每个结果的分数拆解，Components[i] 对应 Items[i]。
type Result struct {
	core.Result
	Components []Components `json:"components,omitempty"`
}

// Scorer 是混合打分器。
type Scorer struct {
	Alpha float64
	TopK  int
}

// NewScorer 创建并校验打分器。
func NewScorer(alpha float64, topK int) (*Scorer, error) {
	s := &Scorer{Alpha: alpha, TopK: topK}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate 检查 alpha 是否在 [0, 1] 内。
func (s Scorer) Validate() error {
	if math.IsNaN(s.Alpha) || s.Alpha < 0 || s.Alpha > 1 {
		return core.InvalidInput(core.ModuleHybrid, "alpha must be in [0, 1], got %v", s.Alpha)
	}
	return nil
}

// Recommend 返回与 id 融合分最高的 TopK 个物品。
//
// id 必须同时存在于两个矩阵中，否则记录 warn 日志并返回 Found()==false 的空结果，
// Missing 列出缺失该物品的矩阵。
func (s Scorer) Recommend(ctx context.Context, id string, collab, content *similarity.Matrix) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{}, err
	}
	if collab == nil || content == nil {
		return Result{}, core.InvalidInput(core.ModuleHybrid, "both similarity matrices are required")
	}

	var missing []string
	if !collab.Has(id) {
		missing = append(missing, collab.Name())
	}
	if !content.Has(id) {
		missing = append(missing, content.Name())
	}
	if len(missing) > 0 {
		logging.Ctx(ctx).Warn().
			Str("item_id", id).
			Strs("missing", missing).
			Msg("item not found in both similarity matrices")
		return Result{Result: core.NotFound(id, missing...)}, nil
	}

	k := s.TopK
	if k <= 0 {
		k = core.DefaultTopK
	}

	parts := make(map[string]*Components)
	collect := func(m *similarity.Matrix, set func(*Components, float64)) {
		row, _ := m.Row(id)
		for _, it := range row {
			c := parts[it.ID]
			if c == nil {
				c = &Components{}
				parts[it.ID] = c
			}
			set(c, it.Score)
		}
	}
	collect(collab, func(c *Components, v float64) { c.Collaborative = v })
	collect(content, func(c *Components, v float64) { c.Content = v })

	ranking := make(core.Ranking, 0, len(parts))
	for cand, c := range parts {
		ranking = append(ranking, core.ScoredItem{
			ID:    cand,
			Score: s.Alpha*c.Collaborative + (1-s.Alpha)*c.Content,
		})
	}
	ranking.Sort()
	ranking = ranking.Top(k)

	comps := make([]Components, len(ranking))
	for i, it := range ranking {
		comps[i] = *parts[it.ID]
	}
	return Result{
		Result:     core.Result{Query: id, Items: ranking},
		Components: comps,
	}, nil
}

// Recommend 是 Scorer{Alpha: alpha, TopK: k}.Recommend 的简写。
func Recommend(ctx context.Context, id string, collab, content *similarity.Matrix, alpha float64, k int) (Result, error) {
	return Scorer{Alpha: alpha, TopK: k}.Recommend(ctx, id, collab, content)
}
