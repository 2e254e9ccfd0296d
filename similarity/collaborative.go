package similarity

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/dataset"
	"github.com/rushteam/hybridrec/pkg/logging"
)

// BuildCollaborative 基于加权隐式反馈构建物品-物品余弦相似度矩阵（Item-CF）。
//
//  1. 按 (user, item) 汇总权重，得到 user×item 稀疏矩阵，缺失为 0
//  2. 对每个用户的物品列表两两累加点积（只遍历非零元素）
//  3. 除以物品列向量的 L2 范数
//
// 物品按 core.CompareID 升序排列。没有任何交互时返回 core.ErrEmptyCorpus。
func BuildCollaborative(ctx context.Context, interactions []dataset.Interaction) (*Matrix, error) {
	if len(interactions) == 0 {
		return nil, core.ErrEmptyCorpus
	}

	// user -> item -> weight 汇总
	pivot := make(map[string]map[string]float64)
	itemSet := make(map[string]struct{})
	for _, in := range interactions {
		row := pivot[in.UserID]
		if row == nil {
			row = make(map[string]float64)
			pivot[in.UserID] = row
		}
		row[in.ItemID] += in.Weight
		itemSet[in.ItemID] = struct{}{}
	}

	ids := make([]string, 0, len(itemSet))
	for id := range itemSet {
		ids = append(ids, id)
	}
	core.SortIDs(ids)
	col := make(map[string]int, len(ids))
	for i, id := range ids {
		col[id] = i
	}

	n := len(ids)
	dot := mat.NewSymDense(n, nil)
	type cell struct {
		j int
		w float64
	}
	visited := 0
	for _, row := range pivot {
		visited++
		if visited%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		cells := make([]cell, 0, len(row))
		for item, w := range row {
			cells = append(cells, cell{j: col[item], w: w})
		}
		for a := range cells {
			for b := a; b < len(cells); b++ {
				i, j := cells[a].j, cells[b].j
				dot.SetSym(i, j, dot.At(i, j)+cells[a].w*cells[b].w)
			}
		}
	}

	norms := make([]float64, n)
	for i := range norms {
		norms[i] = math.Sqrt(dot.At(i, i))
	}
	sim := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if norms[i] == 0 || norms[j] == 0 {
				continue
			}
			sim.SetSym(i, j, dot.At(i, j)/(norms[i]*norms[j]))
		}
	}

	logger := logging.CtxComponent(ctx, "similarity")
	logger.Debug().
		Int("users", len(pivot)).
		Int("items", n).
		Int("interactions", len(interactions)).
		Msg("collaborative matrix built")
	return NewMatrix(NameCollaborative, ids, sim)
}
