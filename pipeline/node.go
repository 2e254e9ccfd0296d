package pipeline

import (
	"context"

	"github.com/rushteam/hybridrec/core"
)

// Kind 标记 Node 所处阶段，Pipeline 日志按它区分。
type Kind string

const (
	KindRecall Kind = "recall" // 由查询商品生成候选：相似度矩阵、混合打分、已导出的邻居列表
	KindFilter Kind = "filter" // 剔除候选：黑名单、CEL 表达式
	KindRank   Kind = "rank"   // 按召回特征重新打分
	KindReRank Kind = "rerank" // 截断
)

// Node 接收上一阶段的候选并返回新的候选；召回节点忽略输入、直接生成。
type Node interface {
	Name() string
	Kind() Kind
	Process(ctx context.Context, rctx *core.RecommendContext, items []*core.Item) ([]*core.Item, error)
}
