// Package dsl 用 CEL (Common Expression Language) 对 Pipeline 中的物品求值布尔表达式。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/hybridrec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Program 是编译好的表达式，可并发复用。
//
// 可用变量：
//   - item.id / item.score / item.features["collaborative"] / item.features["content"]
//   - label.recall_source / label.hybrid_alpha（label 的 value）
//   - rctx.item_id / rctx.user_id / rctx.scene / rctx.params
//
// 示例：
//   - `item.score > 0.1`
//   - `item.features["content"] >= 0.2 && label.recall_source == "recall.hybrid"`
//   - `!(item.id in ["42", "43"])`
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式，结果必须是 bool。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("compile %q: expression must return bool, got %s", expr, out)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式。
func (p *Program) String() string { return p.expr }

// Eval 对单个物品求值。
// 访问不存在的 label 会报错，需要时用 `"key" in label` 判断存在性。
func (p *Program) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %q: expression must return bool, got %T", p.expr, out.Value())
	}
	return result, nil
}

// Eval 是一次性求值的 DSL 解释器。
type Eval struct {
	item *core.Item
	rctx *core.RecommendContext
}

// NewEval 创建一个新的 DSL 解释器。
func NewEval(item *core.Item, rctx *core.RecommendContext) *Eval {
	return &Eval{item: item, rctx: rctx}
}

// Evaluate 编译并执行表达式；空表达式恒为 true。
// 同一表达式需要对很多物品求值时应使用 Compile。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}
	p, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return p.Eval(e.item, e.rctx)
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(it *core.Item, rctx *core.RecommendContext) map[string]any {
	if it == nil {
		it = &core.Item{}
	}
	if rctx == nil {
		rctx = &core.RecommendContext{}
	}

	labels := make(map[string]any, len(it.Labels))
	values := make(map[string]any, len(it.Labels))
	for k, v := range it.Labels {
		labels[k] = map[string]any{
			"value":  v.Value,
			"source": v.Source,
		}
		values[k] = v.Value
	}

	features := it.Features
	if features == nil {
		features = map[string]float64{}
	}
	meta := it.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	params := rctx.Params
	if params == nil {
		params = map[string]any{}
	}

	return map[string]any{
		"item": map[string]any{
			"id":       it.ID,
			"score":    it.Score,
			"features": features,
			"meta":     meta,
			"labels":   labels,
		},
		"label": values,
		"rctx": map[string]any{
			"item_id": rctx.ItemID,
			"user_id": rctx.UserID,
			"scene":   rctx.Scene,
			"params":  params,
		},
	}
}
