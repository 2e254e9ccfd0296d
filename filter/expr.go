package filter

import (
	"context"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/pkg/dsl"
)

// ExprFilter 用 CEL 表达式决定保留哪些物品：表达式为 true 的物品保留，其余过滤。
//
//	item.score >= 0.05
//	item.features["content"] > 0 || item.features["collaborative"] > 0.2
type ExprFilter struct {
	prg *dsl.Program
}

// NewExprFilter 编译表达式。
func NewExprFilter(expr string) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, core.InvalidInput(core.ModulePipeline, "filter expression: %v", err)
	}
	return &ExprFilter{prg: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	keep, err := f.prg.Eval(item, rctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
