// Package hybridrec 是一个混合商品推荐器：协同过滤与 TF-IDF 内容相似度按 alpha 线性融合，
// 并提供 precision@k / recall@k / NDCG@k 离线评估。
//
// 结构：
// - dataset / similarity / hybrid / evaluation: 数据加载、相似度矩阵、混合打分、评估指标
// - pipeline: Recall → Filter → Rank → ReRank 的 Node 串联，配置驱动（config/builders）
// - store: 内存或 Redis，用于导出邻居列表与黑名单
package hybridrec

import "github.com/rushteam/hybridrec/pipeline"

// 轻量 facade：便于直接 import "hybridrec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindRank   = pipeline.KindRank
	KindReRank = pipeline.KindReRank
)
