package evaluation

import (
	"context"
	"sort"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/dataset"
	"github.com/rushteam/hybridrec/pkg/logging"
)

// Case 是一条留出评估样本：以 Query 为种子物品推荐，Relevant 为该用户之后交互过的物品。
type Case struct {
	UserID   string
	Query    string
	Relevant []string
}

// HoldoutCases 为每个用户构造一条样本：按时间排序后最早的物品作为查询，其余去重后作为相关集合。
// 去重后物品数少于 minHistory（至少为 2）的用户被跳过。结果按 UserID 排序。
func HoldoutCases(interactions []dataset.Interaction, minHistory int) []Case {
	if minHistory < 2 {
		minHistory = 2
	}
	byUser := make(map[string][]dataset.Interaction)
	for _, in := range interactions {
		byUser[in.UserID] = append(byUser[in.UserID], in)
	}

	users := make([]string, 0, len(byUser))
	for u := range byUser {
		users = append(users, u)
	}
	core.SortIDs(users)

	cases := make([]Case, 0, len(users))
	for _, u := range users {
		hist := byUser[u]
		sort.SliceStable(hist, func(i, j int) bool {
			return hist[i].Timestamp < hist[j].Timestamp
		})
		seen := make(map[string]struct{}, len(hist))
		items := make([]string, 0, len(hist))
		for _, in := range hist {
			if _, ok := seen[in.ItemID]; ok {
				continue
			}
			seen[in.ItemID] = struct{}{}
			items = append(items, in.ItemID)
		}
		if len(items) < minHistory {
			continue
		}
		cases = append(cases, Case{UserID: u, Query: items[0], Relevant: items[1:]})
	}
	return cases
}

// RecommendFunc 为查询物品返回至多 k 个推荐。
// 查询物品不在模型中时返回 Found()==false 的结果，而不是错误。
type RecommendFunc func(ctx context.Context, query string, k int) (core.Result, error)

// Run 对每条样本调用 fn 并汇总指标。没有推荐结果的样本计入 Skipped，不参与平均。
func Run(ctx context.Context, cases []Case, fn RecommendFunc, k int) (*Summary, error) {
	if k <= 0 {
		k = core.DefaultTopK
	}
	sum := &Summary{K: k}
	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := fn(ctx, c.Query, k)
		if err != nil {
			return nil, err
		}
		if !res.Found() {
			sum.Skip()
			continue
		}
		sum.Add(Evaluate(res.Items.IDs(), c.Relevant, k))
	}
	logging.Ctx(ctx).Debug().
		Int("cases", len(cases)).
		Int("evaluated", sum.Count).
		Int("skipped", sum.Skipped).
		Msg("evaluation finished")
	return sum, nil
}
