package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/pkg/logging"
)

// Pipeline 把一次 item-to-item 查询拆成可组合的 Node 链：召回 -> 过滤 -> 截断。
type Pipeline struct {
	Name  string
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	logger := logging.Ctx(ctx)
	cur := items
	for _, node := range p.Nodes {
		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}
		logger.Debug().
			Str("pipeline", p.Name).
			Str("node", node.Name()).
			Str("kind", string(node.Kind())).
			Int("in", len(cur)).
			Int("out", len(next)).
			Dur("took", time.Since(start)).
			Msg("node processed")
		cur = next
	}
	return cur, nil
}

// Recommend 以 itemID 为查询运行 Pipeline，返回有序结果。
func (p *Pipeline) Recommend(ctx context.Context, itemID string) (core.Ranking, error) {
	items, err := p.Run(ctx, &core.RecommendContext{ItemID: itemID}, nil)
	if err != nil {
		return nil, err
	}
	return core.RankingFromItems(items), nil
}
