// Package similarity 构建物品-物品余弦相似度矩阵（协同过滤 / TF-IDF 内容），并提供 top-k 查询。
package similarity

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/pkg/logging"
)

// 矩阵名称，用于日志与 Result.Missing。
const (
	NameCollaborative = "collaborative"
	NameContent       = "content"
)

// Matrix 是带物品 ID 标签的对称相似度矩阵。
// 行列顺序与 IDs() 一致；对角线（自相似）不会出现在任何查询结果里。
type Matrix struct {
	name  string
	ids   []string
	index map[string]int
	sim   *mat.SymDense
}

// NewMatrix 用给定的 ID 与相似度创建矩阵，ID 不可重复且数量须与矩阵维度一致。
func NewMatrix(name string, ids []string, sim *mat.SymDense) (*Matrix, error) {
	n := 0
	if sim != nil {
		n = sim.SymmetricDim()
	}
	if n != len(ids) {
		return nil, core.InvalidInput(core.ModuleSimilarity, "%s: %d ids for a %dx%d matrix", name, len(ids), n, n)
	}
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, dup := index[id]; dup {
			return nil, core.InvalidInput(core.ModuleSimilarity, "%s: duplicate item id %q", name, id)
		}
		index[id] = i
	}
	return &Matrix{
		name:  name,
		ids:   append([]string(nil), ids...),
		index: index,
		sim:   sim,
	}, nil
}

// Name 返回矩阵名称（collaborative / content）。
func (m *Matrix) Name() string { return m.name }

// Len 返回物品数。
func (m *Matrix) Len() int { return len(m.ids) }

// IDs 返回按行顺序排列的物品 ID 副本。
func (m *Matrix) IDs() []string {
	return append([]string(nil), m.ids...)
}

// Has 报告物品是否在矩阵中。
func (m *Matrix) Has(id string) bool {
	_, ok := m.index[id]
	return ok
}

// At 返回两物品的相似度；任一物品不存在时第二个返回值为 false。
func (m *Matrix) At(a, b string) (float64, bool) {
	i, ok := m.index[a]
	if !ok {
		return 0, false
	}
	j, ok := m.index[b]
	if !ok {
		return 0, false
	}
	return m.sim.At(i, j), true
}

// Row 返回 id 所在行（不含自身）的全部相似度，按 Ranking 规则排序。
func (m *Matrix) Row(id string) (core.Ranking, bool) {
	i, ok := m.index[id]
	if !ok {
		return nil, false
	}
	row := make(core.Ranking, 0, len(m.ids)-1)
	for j, other := range m.ids {
		if j == i {
			continue
		}
		row = append(row, core.ScoredItem{ID: other, Score: m.sim.At(i, j)})
	}
	row.Sort()
	return row, true
}

// Similar 返回与 id 最相似的 k 个物品（不含自身）。
// k <= 0 时使用 core.DefaultTopK。
func (m *Matrix) Similar(id string, k int) (core.Ranking, bool) {
	if k <= 0 {
		k = core.DefaultTopK
	}
	row, ok := m.Row(id)
	if !ok {
		return core.Ranking{}, false
	}
	return row.Top(k), true
}

// SimilarItems 查询单个矩阵的 top-k 相似物品。
// 物品不在矩阵中时记录 warn 日志并返回 Found()==false 的空结果。
func SimilarItems(ctx context.Context, m *Matrix, id string, k int) core.Result {
	if m == nil {
		return core.NotFound(id, "nil")
	}
	items, ok := m.Similar(id, k)
	if !ok {
		logging.Ctx(ctx).Warn().
			Str("item_id", id).
			Str("matrix", m.name).
			Msg("item not found in similarity matrix")
		return core.NotFound(id, m.name)
	}
	return core.Result{Query: id, Items: items}
}
