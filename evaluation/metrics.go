// Package evaluation 提供离线排序指标（precision@k / recall@k / NDCG@k / hit rate@k），
// 以及用留出法对任意推荐函数做批量评估的工具。
//
// 所有指标在推荐列表或真实集合为空、或 k <= 0 时返回 0。
package evaluation

import "math"

// topK 返回 recs 前 k 个元素去重后的列表。
func topK[T comparable](recs []T, k int) []T {
	if k < len(recs) {
		recs = recs[:k]
	}
	seen := make(map[T]struct{}, len(recs))
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

func toSet[T comparable](s []T) map[T]struct{} {
	set := make(map[T]struct{}, len(s))
	for _, v := range s {
		set[v] = struct{}{}
	}
	return set
}

func hits[T comparable](recs, actual []T, k int) int {
	rel := toSet(actual)
	n := 0
	for _, r := range topK(recs, k) {
		if _, ok := rel[r]; ok {
			n++
		}
	}
	return n
}

func guard[T any](recs, actual []T, k int) bool {
	return len(recs) > 0 && len(actual) > 0 && k > 0
}

// PrecisionAtK = |top-k ∩ actual| / k。
func PrecisionAtK[T comparable](recs, actual []T, k int) float64 {
	if !guard(recs, actual, k) {
		return 0
	}
	return float64(hits(recs, actual, k)) / float64(k)
}

// RecallAtK = |set(top-k) ∩ set(actual)| / len(actual)。
// 分母是 actual 的原始长度：actual 含重复时召回率偏低，需要的话先去重。
func RecallAtK[T comparable](recs, actual []T, k int) float64 {
	if !guard(recs, actual, k) {
		return 0
	}
	return float64(hits(recs, actual, k)) / float64(len(actual))
}

// HitRateAtK 在 top-k 命中任意一个相关物品时为 1，否则为 0。
func HitRateAtK[T comparable](recs, actual []T, k int) float64 {
	if !guard(recs, actual, k) || hits(recs, actual, k) == 0 {
		return 0
	}
	return 1
}

// NDCGAtK 使用二元相关性（命中为 1）计算归一化折损累计增益。
// 第 i 位（从 0 开始）的折损为 1/log2(i+2)；重复推荐只在首次出现处计分。
//
// 理想 DCG 是把 top-k 中的命中全部排在最前面时的 DCG，
// 因此前 min(|actual|, k) 个推荐全是相关物品时 NDCG 为 1。
// 没进 top-k 的相关物品不影响 NDCG，它只衡量命中的位置，覆盖程度要结合 RecallAtK 看。
func NDCGAtK[T comparable](recs, actual []T, k int) float64 {
	if !guard(recs, actual, k) {
		return 0
	}
	if k < len(recs) {
		recs = recs[:k]
	}
	rel := toSet(actual)
	seen := make(map[T]struct{}, len(recs))
	var dcg float64
	n := 0
	for i, r := range recs {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		if _, ok := rel[r]; ok {
			dcg += discount(i)
			n++
		}
	}
	var idcg float64
	for i := 0; i < n; i++ {
		idcg += discount(i)
	}
	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}

func discount(rank int) float64 {
	return 1 / math.Log2(float64(rank)+2)
}
