package recall

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/pipeline"
	"github.com/rushteam/hybridrec/pkg/logging"
	"github.com/rushteam/hybridrec/pkg/utils"
)

// 合并策略
const (
	MergeFirst    = "first"    // 按 ID 去重，保留先出现的，合并 labels
	MergeUnion    = "union"    // 保留全部结果
	MergePriority = "priority" // 相同 ID 保留优先级更高（Sources 中靠前）的来源
	MergeMax      = "max"      // 相同 ID 保留分数更高的
)

// Fanout 是一个 Recall Node：并发执行多个召回源，合并后按 Ranking 规则排序。
// 支持超时、限流、多种合并策略。
type Fanout struct {
	Sources       []Source
	Dedup         bool
	Timeout       time.Duration // 每个召回源的超时时间
	MaxConcurrent int           // 最大并发数（0 表示无限制）
	MergeStrategy string        // first / union / priority / max
	TopK          int           // 合并后截断，<= 0 不截断
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

type sourceResult struct {
	priority int
	items    []*core.Item
}

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	var (
		mu      sync.Mutex
		results = make([]sourceResult, 0, len(n.Sources))
		eg, _   = errgroup.WithContext(ctx)
		logger  = logging.Ctx(ctx)
	)
	if n.MaxConcurrent > 0 {
		eg.SetLimit(n.MaxConcurrent)
	}

	for i, src := range n.Sources {
		s := src
		priority := i // 索引越小优先级越高

		eg.Go(func() error {
			recallCtx := ctx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(ctx, n.Timeout)
				defer cancel()
			}

			items, err := s.Recall(recallCtx, rctx)
			if err != nil {
				// 单个召回源失败不中断其他召回源
				logger.Warn().Err(err).Str("source", s.Name()).Msg("recall source failed")
				return nil
			}

			for _, it := range items {
				it.PutLabel("recall_priority", utils.RecallLabel(strconv.Itoa(priority)))
			}

			mu.Lock()
			results = append(results, sourceResult{priority: priority, items: items})
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// 按优先级排列，结果与 goroutine 完成顺序无关
	all := make([]*core.Item, 0)
	for p := range n.Sources {
		for _, r := range results {
			if r.priority == p {
				all = append(all, r.items...)
			}
		}
	}

	var out []*core.Item
	switch n.MergeStrategy {
	case MergeUnion:
		out = n.mergeUnion(all)
	case MergePriority:
		out = n.mergeByPriority(all)
	case MergeMax:
		out = n.mergeMax(all)
	default:
		out = n.mergeFirst(all)
	}
	sortItems(out)
	if n.TopK > 0 && len(out) > n.TopK {
		out = out[:n.TopK]
	}
	return out, nil
}

// mergeFirst 按 ID 去重，保留第一个出现的（默认策略）。
func (n *Fanout) mergeFirst(all []*core.Item) []*core.Item {
	if !n.Dedup {
		return compact(all)
	}
	seen := make(map[string]*core.Item, len(all))
	out := make([]*core.Item, 0, len(all))
	for _, it := range all {
		if it == nil {
			continue
		}
		if old, ok := seen[it.ID]; ok {
			mergeInto(old, it)
			continue
		}
		seen[it.ID] = it
		out = append(out, it)
	}
	return out
}

// mergeUnion 合并所有结果，不去重（用于需要保留所有来源的场景）。
func (n *Fanout) mergeUnion(all []*core.Item) []*core.Item {
	return compact(all)
}

// mergeByPriority 相同 ID 时保留优先级更高的。all 已按优先级排列，等价于 mergeFirst。
func (n *Fanout) mergeByPriority(all []*core.Item) []*core.Item {
	return n.mergeFirst(all)
}

// mergeMax 相同 ID 时保留分数更高的，labels / features 合并。
func (n *Fanout) mergeMax(all []*core.Item) []*core.Item {
	if !n.Dedup {
		return compact(all)
	}
	seen := make(map[string]int, len(all))
	out := make([]*core.Item, 0, len(all))
	for _, it := range all {
		if it == nil {
			continue
		}
		idx, ok := seen[it.ID]
		if !ok {
			seen[it.ID] = len(out)
			out = append(out, it)
			continue
		}
		old := out[idx]
		if it.Score > old.Score {
			mergeInto(it, old)
			out[idx] = it
			continue
		}
		mergeInto(old, it)
	}
	return out
}

// mergeInto 把 src 的 labels 与 features 合并到 dst（dst 已有的 feature 不覆盖）。
func mergeInto(dst, src *core.Item) {
	for k, v := range src.Labels {
		dst.PutLabel(k, v)
	}
	for k, v := range src.Features {
		if dst.Features == nil {
			dst.Features = make(map[string]float64)
		}
		if _, ok := dst.Features[k]; !ok {
			dst.Features[k] = v
		}
	}
}

func compact(items []*core.Item) []*core.Item {
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it != nil {
			out = append(out, it)
		}
	}
	return out
}

func sortItems(items []*core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		return core.Less(core.ScoredItem{ID: a.ID, Score: a.Score}, core.ScoredItem{ID: b.ID, Score: b.Score})
	})
}
