// Package builders 注册内置 Node 构建器，import _ 即可让配置驱动的 Pipeline 使用它们。
package builders

import (
	"fmt"
	"time"

	"github.com/rushteam/hybridrec/config"
	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/filter"
	"github.com/rushteam/hybridrec/hybrid"
	"github.com/rushteam/hybridrec/model"
	"github.com/rushteam/hybridrec/pipeline"
	"github.com/rushteam/hybridrec/pkg/conv"
	"github.com/rushteam/hybridrec/rank"
	"github.com/rushteam/hybridrec/recall"
	"github.com/rushteam/hybridrec/rerank"
	"github.com/rushteam/hybridrec/similarity"
)

func init() {
	config.Register("recall.i2i", BuildItemToItemNode)
	config.Register("recall.hybrid", BuildHybridNode)
	config.Register("recall.stored", BuildStoredNode)
	config.Register("recall.fanout", BuildFanoutNode)
	config.Register("rank.model", BuildRankModelNode)
	config.Register("filter", BuildFilterNode)
	config.Register("rerank.topn", BuildTopNNode)
}

// BuildItemToItemNode 配置：matrix（collaborative / content，默认 collaborative）、top_k。
func BuildItemToItemNode(cfg map[string]any, res *pipeline.Resources) (pipeline.Node, error) {
	src, err := buildItemToItem(cfg, res)
	if err != nil {
		return nil, err
	}
	return src, nil
}

func buildItemToItem(cfg map[string]any, res *pipeline.Resources) (*recall.ItemToItem, error) {
	m, err := res.Matrix(conv.ConfigGet(cfg, "matrix", similarity.NameCollaborative))
	if err != nil {
		return nil, err
	}
	return &recall.ItemToItem{Matrix: m, TopK: conv.ConfigGetInt(cfg, "top_k", core.DefaultTopK)}, nil
}

// BuildHybridNode 配置：alpha（默认 0.5）、top_k。
func BuildHybridNode(cfg map[string]any, res *pipeline.Resources) (pipeline.Node, error) {
	src, err := buildHybrid(cfg, res)
	if err != nil {
		return nil, err
	}
	return src, nil
}

func buildHybrid(cfg map[string]any, res *pipeline.Resources) (*recall.Hybrid, error) {
	collab, err := res.Matrix(similarity.NameCollaborative)
	if err != nil {
		return nil, err
	}
	content, err := res.Matrix(similarity.NameContent)
	if err != nil {
		return nil, err
	}
	scorer, err := hybrid.NewScorer(
		conv.ConfigGetFloat64(cfg, "alpha", hybrid.DefaultAlpha),
		conv.ConfigGetInt(cfg, "top_k", core.DefaultTopK),
	)
	if err != nil {
		return nil, err
	}
	return &recall.Hybrid{Scorer: *scorer, Collaborative: collab, Content: content}, nil
}

// BuildStoredNode 配置：matrix、top_k。读取 Resources.Store 中已导出的邻居列表。
func BuildStoredNode(cfg map[string]any, res *pipeline.Resources) (pipeline.Node, error) {
	src, err := buildStored(cfg, res)
	if err != nil {
		return nil, err
	}
	return src, nil
}

func buildStored(cfg map[string]any, res *pipeline.Resources) (*recall.StoredNeighbors, error) {
	if res == nil || res.Store == nil {
		return nil, core.InvalidInput(core.ModulePipeline, "recall.stored requires a store")
	}
	return &recall.StoredNeighbors{
		Store:  recall.NewSimilarityStore(res.Store, res.KeyPrefix),
		Matrix: conv.ConfigGet(cfg, "matrix", similarity.NameCollaborative),
		TopK:   conv.ConfigGetInt(cfg, "top_k", core.DefaultTopK),
	}, nil
}

// BuildFanoutNode 配置：
//
//	sources: [{type: i2i, matrix: content, top_k: 10}, {type: hybrid, alpha: 0.7}, {type: stored}]
//	dedup: true
//	merge_strategy: first | union | priority | max
//	timeout: 2          # 秒
//	max_concurrent: 0
//	top_k: 0
func BuildFanoutNode(cfg map[string]any, res *pipeline.Resources) (pipeline.Node, error) {
	sourcesConfig := conv.ConfigGetMaps(cfg, "sources")
	if len(sourcesConfig) == 0 {
		return nil, fmt.Errorf("sources not found or invalid")
	}

	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		var (
			src recall.Source
			err error
		)
		switch t := conv.ConfigGet(sc, "type", ""); t {
		case "i2i":
			src, err = buildItemToItem(sc, res)
		case "hybrid":
			src, err = buildHybrid(sc, res)
		case "stored":
			src, err = buildStored(sc, res)
		default:
			return nil, fmt.Errorf("unknown source type: %s", t)
		}
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	strategy := conv.ConfigGet(cfg, "merge_strategy", recall.MergeFirst)
	switch strategy {
	case recall.MergeFirst, recall.MergeUnion, recall.MergePriority, recall.MergeMax:
	default:
		return nil, fmt.Errorf("unknown merge strategy: %s", strategy)
	}

	fanout := &recall.Fanout{
		Sources:       sources,
		Dedup:         conv.ConfigGet(cfg, "dedup", true),
		MergeStrategy: strategy,
		MaxConcurrent: conv.ConfigGetInt(cfg, "max_concurrent", 0),
		TopK:          conv.ConfigGetInt(cfg, "top_k", 0),
	}
	if sec := conv.ConfigGetFloat64(cfg, "timeout", 0); sec > 0 {
		fanout.Timeout = time.Duration(sec * float64(time.Second))
	}
	return fanout, nil
}

// BuildRankModelNode 配置三选一（优先级从上到下）：
//
//	model_path: model.json
//	weights: {collaborative: 0.7, content: 0.3}   # 可选 bias、logistic
//	alpha: 0.5                                     # 等价于混合打分
func BuildRankModelNode(cfg map[string]any, _ *pipeline.Resources) (pipeline.Node, error) {
	if path := conv.ConfigGet(cfg, "model_path", ""); path != "" {
		m, err := model.LoadLinearModel(path)
		if err != nil {
			return nil, err
		}
		return &rank.ModelNode{Model: m}, nil
	}
	if raw, ok := cfg["weights"].(map[string]any); ok {
		weights := make(map[string]float64, len(raw))
		for k, v := range raw {
			w, ok := conv.ToFloat64(v)
			if !ok {
				return nil, fmt.Errorf("weight %q is not a number", k)
			}
			weights[k] = w
		}
		return &rank.ModelNode{Model: &model.LinearModel{
			Bias:     conv.ConfigGetFloat64(cfg, "bias", 0),
			Weights:  weights,
			Logistic: conv.ConfigGet(cfg, "logistic", false),
		}}, nil
	}
	m, err := model.BlendModel(conv.ConfigGetFloat64(cfg, "alpha", hybrid.DefaultAlpha))
	if err != nil {
		return nil, err
	}
	return &rank.ModelNode{Model: m}, nil
}

// BuildFilterNode 配置：
//
//	filters:
//	  - {type: blacklist, item_ids: [1, 2], key: "hybridrec:blacklist"}
//	  - {type: expr, expr: "item.score > 0.05"}
func BuildFilterNode(cfg map[string]any, res *pipeline.Resources) (pipeline.Node, error) {
	filtersConfig := conv.ConfigGetMaps(cfg, "filters")
	if len(filtersConfig) == 0 {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		switch t := conv.ConfigGet(fc, "type", ""); t {
		case "blacklist":
			var s core.Store
			if res != nil && res.Store != nil {
				s = res.Store
			}
			filters = append(filters, filter.NewBlacklistFilter(
				conv.ConfigGetStrings(fc, "item_ids"),
				s,
				conv.ConfigGet(fc, "key", ""),
			))
		case "expr":
			f, err := filter.NewExprFilter(conv.ConfigGet(fc, "expr", ""))
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)
		default:
			return nil, fmt.Errorf("unknown filter type: %s", t)
		}
	}

	return &filter.FilterNode{Filters: filters}, nil
}

// BuildTopNNode 配置：n（<= 0 不截断）。
func BuildTopNNode(cfg map[string]any, _ *pipeline.Resources) (pipeline.Node, error) {
	return &rerank.TopNNode{N: conv.ConfigGetInt(cfg, "n", core.DefaultTopK)}, nil
}
