package dataset

import (
	"sort"

	"github.com/rushteam/hybridrec/core"
)

// 行为类型（Retailrocket events.csv 的 event 列取值）。
const (
	EventView        = "view"
	EventAddToCart   = "addtocart"
	EventTransaction = "transaction"
)

// ActionWeights 把行为类型映射为隐式反馈权重。
// 不在表中的行为会在加载时被丢弃。
type ActionWeights map[string]float64

// DefaultActionWeights 返回默认权重表：浏览 1，加购 2，成交 3。
func DefaultActionWeights() ActionWeights {
	return ActionWeights{
		EventView:        1,
		EventAddToCart:   2,
		EventTransaction: 3,
	}
}

// Weight 返回行为对应的权重，第二个返回值表示该行为是否被识别。
func (w ActionWeights) Weight(event string) (float64, bool) {
	v, ok := w[event]
	return v, ok
}

// Events 返回已配置的行为类型（排序后），用于日志。
func (w ActionWeights) Events() []string {
	out := make([]string, 0, len(w))
	for k := range w {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Validate 要求权重表非空且所有权重为正。
func (w ActionWeights) Validate() error {
	if len(w) == 0 {
		return core.InvalidInput(core.ModuleDataset, "action weights are empty")
	}
	for event, v := range w {
		if event == "" {
			return core.InvalidInput(core.ModuleDataset, "action weights contain an empty event name")
		}
		if !(v > 0) {
			return core.InvalidInput(core.ModuleDataset, "weight for %q must be positive, got %v", event, v)
		}
	}
	return nil
}
