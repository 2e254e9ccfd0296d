// Package engine 把数据加载、矩阵构建、混合打分、Pipeline 与评估串成一次离线运行。
package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/hybridrec/config"
	_ "github.com/rushteam/hybridrec/config/builders"
	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/dataset"
	"github.com/rushteam/hybridrec/evaluation"
	"github.com/rushteam/hybridrec/hybrid"
	"github.com/rushteam/hybridrec/pipeline"
	"github.com/rushteam/hybridrec/pkg/logging"
	"github.com/rushteam/hybridrec/recall"
	"github.com/rushteam/hybridrec/similarity"
	"github.com/rushteam/hybridrec/store"
)

// Model 是一次运行构建出的全部结果，只存在于内存中。
type Model struct {
	cfg *config.App

	Interactions  []dataset.Interaction
	Metadata      []dataset.ItemMetadata
	Collaborative *similarity.Matrix
	Content       *similarity.Matrix
}

// Build 并发加载行为日志与商品属性并构建两个相似度矩阵。
func Build(ctx context.Context, cfg *config.App) (*Model, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	var (
		interactions []dataset.Interaction
		meta         []dataset.ItemMetadata
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		interactions, err = dataset.LoadInteractions(gctx, cfg.Data.Interactions)
		return err
	})
	g.Go(func() error {
		var err error
		meta, err = dataset.PrepareMetadata(gctx, cfg.Data.Metadata)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return FromData(ctx, cfg, interactions, meta)
}

// FromData 用已加载的数据并发构建两个相似度矩阵。
func FromData(ctx context.Context, cfg *config.App, interactions []dataset.Interaction, meta []dataset.ItemMetadata) (*Model, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	m := &Model{cfg: cfg, Interactions: interactions, Metadata: meta}
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		m.Collaborative, err = similarity.BuildCollaborative(gctx, interactions)
		return err
	})
	g.Go(func() error {
		var err error
		m.Content, err = similarity.BuildContent(gctx, meta)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Int("interactions", len(interactions)).
		Int("collaborative_items", m.Collaborative.Len()).
		Int("content_items", m.Content.Len()).
		Dur("took", time.Since(start)).
		Msg("similarity matrices built")
	return m, nil
}

// Config 返回构建时使用的配置。
func (m *Model) Config() *config.App { return m.cfg }

// Matrix 按名称取矩阵（collaborative / content）。
func (m *Model) Matrix(name string) (*similarity.Matrix, error) {
	switch name {
	case similarity.NameCollaborative:
		return m.Collaborative, nil
	case similarity.NameContent:
		return m.Content, nil
	}
	return nil, core.InvalidInput(core.ModuleSimilarity, "unknown matrix %q", name)
}

// Similar 在单个矩阵中查询 top-k 相似物品；k <= 0 使用配置中的 top_k。
func (m *Model) Similar(ctx context.Context, matrix, id string, k int) (core.Result, error) {
	mx, err := m.Matrix(matrix)
	if err != nil {
		return core.Result{}, err
	}
	return similarity.SimilarItems(ctx, mx, id, m.topK(k)), nil
}

// Hybrid 混合打分；alpha 越界返回 INVALID_INPUT，k <= 0 使用配置中的 top_k。
func (m *Model) Hybrid(ctx context.Context, id string, alpha float64, k int) (hybrid.Result, error) {
	return hybrid.Recommend(ctx, id, m.Collaborative, m.Content, alpha, m.topK(k))
}

func (m *Model) topK(k int) int {
	if k > 0 {
		return k
	}
	return m.cfg.Model.TopK
}

// Resources 返回构建 Pipeline 所需的依赖，kv 可为 nil。
func (m *Model) Resources(kv core.KeyValueStore) *pipeline.Resources {
	res := pipeline.NewResources(m.Collaborative, m.Content)
	if kv != nil {
		res.Store = kv
		res.KeyPrefix = m.cfg.Store.KeyPrefix
	}
	return res
}

// Pipeline 按配置构建 Pipeline。
func (m *Model) Pipeline(kv core.KeyValueStore) (*pipeline.Pipeline, error) {
	return config.BuildPipeline(&m.cfg.Pipeline, m.Resources(kv))
}

// Recommender 返回按名称（collaborative / content / hybrid / pipeline）选择的推荐函数，供评估使用。
func (m *Model) Recommender(name string, kv core.KeyValueStore) (evaluation.RecommendFunc, error) {
	switch name {
	case similarity.NameCollaborative, similarity.NameContent:
		mx, err := m.Matrix(name)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, q string, k int) (core.Result, error) {
			return similarity.SimilarItems(ctx, mx, q, k), nil
		}, nil
	case "hybrid":
		alpha := m.cfg.Model.Alpha
		return func(ctx context.Context, q string, k int) (core.Result, error) {
			res, err := m.Hybrid(ctx, q, alpha, k)
			return res.Result, err
		}, nil
	case "pipeline":
		p, err := m.Pipeline(kv)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, q string, k int) (core.Result, error) {
			if !m.Collaborative.Has(q) && !m.Content.Has(q) {
				return core.NotFound(q, similarity.NameCollaborative, similarity.NameContent), nil
			}
			r, err := p.Recommend(ctx, q)
			if err != nil {
				return core.Result{}, err
			}
			return core.Result{Query: q, Items: r.Top(k)}, nil
		}, nil
	}
	return nil, core.InvalidInput(core.ModuleHybrid, "unknown recommender %q", name)
}

// Evaluate 用留出法评估指定推荐器；k <= 0 使用配置中的 evaluation.k。
func (m *Model) Evaluate(ctx context.Context, recommender string, k int) (*evaluation.Summary, error) {
	fn, err := m.Recommender(recommender, nil)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		k = m.cfg.Evaluation.K
	}
	cases := evaluation.HoldoutCases(m.Interactions, m.cfg.Evaluation.MinHistory)
	return evaluation.Run(ctx, cases, fn, k)
}

// OpenStore 按配置打开导出目标；backend 为空时返回 nil。
func OpenStore(cfg config.StoreConfig) (core.KeyValueStore, error) {
	switch cfg.Backend {
	case config.BackendNone:
		return nil, nil
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	case config.BackendRedis:
		kv, err := store.NewRedisStore(cfg.Addr, cfg.DB)
		if err != nil {
			return nil, err
		}
		return kv, nil
	}
	return nil, core.InvalidInput(core.ModuleStore, "unknown store backend %q", cfg.Backend)
}

// Publish 导出两个矩阵的 top-k 邻居列表；k <= 0 使用配置中的 top_k。
func (m *Model) Publish(ctx context.Context, kv core.KeyValueStore, k int) ([]recall.PublishStats, error) {
	if kv == nil {
		return nil, core.InvalidInput(core.ModuleStore, "publish: no store configured")
	}
	s := recall.NewSimilarityStore(kv, m.cfg.Store.KeyPrefix)
	out := make([]recall.PublishStats, 0, 2)
	for _, mx := range []*similarity.Matrix{m.Collaborative, m.Content} {
		stats, err := s.Publish(ctx, mx, m.topK(k), m.cfg.Store.TTL)
		if err != nil {
			return out, err
		}
		out = append(out, stats)
	}
	return out, nil
}
