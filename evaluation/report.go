package evaluation

import (
	"fmt"
)

// Report 是一次推荐在截断 K 下的各项指标。
type Report struct {
	K         int     `json:"k"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	NDCG      float64 `json:"ndcg"`
	HitRate   float64 `json:"hit_rate"`
}

// Evaluate 一次计算全部指标。
func Evaluate[T comparable](recs, actual []T, k int) Report {
	return Report{
		K:         k,
		Precision: PrecisionAtK(recs, actual, k),
		Recall:    RecallAtK(recs, actual, k),
		NDCG:      NDCGAtK(recs, actual, k),
		HitRate:   HitRateAtK(recs, actual, k),
	}
}

func (r Report) String() string {
	return fmt.Sprintf("precision@%d=%.4f recall@%d=%.4f ndcg@%d=%.4f hit_rate@%d=%.4f",
		r.K, r.Precision, r.K, r.Recall, r.K, r.NDCG, r.K, r.HitRate)
}

// Summary 累加多次查询的 Report 并求平均。零值可直接使用。
type Summary struct {
	K       int
	Count   int
	Skipped int

	sum Report
}

// Add 累加一次查询的指标。
func (s *Summary) Add(r Report) {
	if s.Count == 0 && s.K == 0 {
		s.K = r.K
	}
	s.Count++
	s.sum.Precision += r.Precision
	s.sum.Recall += r.Recall
	s.sum.NDCG += r.NDCG
	s.sum.HitRate += r.HitRate
}

// Skip 记录一次没有推荐结果（查询物品不在模型中）的查询。
func (s *Summary) Skip() {
	s.Skipped++
}

// Mean 返回平均指标；没有任何查询时全为 0。
func (s *Summary) Mean() Report {
	if s.Count == 0 {
		return Report{K: s.K}
	}
	n := float64(s.Count)
	return Report{
		K:         s.K,
		Precision: s.sum.Precision / n,
		Recall:    s.sum.Recall / n,
		NDCG:      s.sum.NDCG / n,
		HitRate:   s.sum.HitRate / n,
	}
}
