package core

import (
	"sort"
	"strconv"
	"strings"
)

// DefaultTopK 是 top_k 未设置（<= 0）时使用的返回条数。
const DefaultTopK = 5

// ScoredItem 是一条带分数的推荐结果。
type ScoredItem struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Ranking 是按分数降序排列的结果列表。
//
// 排序规则：Score 降序；分数相同时按 CompareID 升序。
// 所有查询（单矩阵相似、混合打分、Pipeline 输出、存储的邻居列表）都使用同一规则。
type Ranking []ScoredItem

// IDs 返回按顺序排列的 ID 列表（用于评估指标）。
func (r Ranking) IDs() []string {
	ids := make([]string, len(r))
	for i, s := range r {
		ids[i] = s.ID
	}
	return ids
}

// Top 返回前 k 条；k <= 0 或 k >= len(r) 时返回全部。
func (r Ranking) Top(k int) Ranking {
	if k <= 0 || k >= len(r) {
		return r
	}
	return r[:k]
}

// Sort 原地排序。
func (r Ranking) Sort() {
	sort.SliceStable(r, func(i, j int) bool {
		return Less(r[i], r[j])
	})
}

// Less 定义结果的全序：分数高者在前，分数相同 ID 小者在前。
func Less(a, b ScoredItem) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return CompareID(a.ID, b.ID) < 0
}

// CompareID 比较两个物品 ID，是一个全序：
//   - 十进制整数 ID 排在非整数 ID 之前
//   - 两个整数按数值比较（"9" < "10"），数值相等（"007" 与 "7"）时按字典序
//   - 两个非整数按字典序
func CompareID(a, b string) int {
	ai, errA := strconv.ParseInt(a, 10, 64)
	bi, errB := strconv.ParseInt(b, 10, 64)
	aNum, bNum := errA == nil, errB == nil
	switch {
	case aNum && !bNum:
		return -1
	case !aNum && bNum:
		return 1
	case aNum && bNum:
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
	}
	return strings.Compare(a, b)
}

// SortIDs 按 CompareID 升序原地排序。
func SortIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		return CompareID(ids[i], ids[j]) < 0
	})
}
