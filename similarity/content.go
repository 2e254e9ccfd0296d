package similarity

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/dataset"
	"github.com/rushteam/hybridrec/pkg/logging"
)

// BuildContent 用商品元数据的 TF-IDF 向量构建物品-物品余弦相似度矩阵。
// 行已 L2 归一化，因此相似度即 X·Xᵀ。
//
// 元数据为空的商品是零向量，与所有商品（包括自身）的相似度都是 0。
// 没有商品时返回 core.ErrEmptyCorpus；有商品但词表为空时返回全零矩阵。
func BuildContent(ctx context.Context, meta []dataset.ItemMetadata) (*Matrix, error) {
	return BuildContentWith(ctx, meta, NewVectorizer())
}

// BuildContentWith 与 BuildContent 相同，但使用调用方提供的 Vectorizer。
func BuildContentWith(ctx context.Context, meta []dataset.ItemMetadata, v *Vectorizer) (*Matrix, error) {
	if len(meta) == 0 {
		return nil, core.ErrEmptyCorpus
	}
	if v == nil {
		v = NewVectorizer()
	}

	ids := make([]string, len(meta))
	docs := make([]string, len(meta))
	for i, m := range meta {
		ids[i] = m.ItemID
		docs[i] = m.Text
	}

	x := v.FitTransform(docs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sim mat.SymDense
	logger := logging.CtxComponent(ctx, "similarity")
	if x == nil {
		logger.Warn().Int("items", len(ids)).Msg("empty vocabulary, content similarity is all zero")
		sim = *mat.NewSymDense(len(ids), nil)
	} else {
		sim.SymOuterK(1, x)
	}

	logger.Debug().
		Int("items", len(ids)).
		Int("terms", len(v.Vocabulary())).
		Msg("content matrix built")
	return NewMatrix(NameContent, ids, &sim)
}
