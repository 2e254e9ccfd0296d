package evaluation

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/dataset"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestMetrics_Scenario(t *testing.T) {
	recs := []int{101, 202, 303, 404, 505}
	actual := []int{202, 303, 777}

	if got := PrecisionAtK(recs, actual, 5); !near(got, 0.4) {
		t.Errorf("PrecisionAtK = %v, want 0.4", got)
	}
	if got := RecallAtK(recs, actual, 5); !near(got, 2.0/3.0) {
		t.Errorf("RecallAtK = %v, want 0.667", got)
	}
	want := (1/math.Log2(3) + 1/math.Log2(4)) / (1/math.Log2(2) + 1/math.Log2(3))
	if got := NDCGAtK(recs, actual, 5); !near(got, want) {
		t.Errorf("NDCGAtK = %v, want %v", got, want)
	}
	if got := HitRateAtK(recs, actual, 5); got != 1 {
		t.Errorf("HitRateAtK = %v, want 1", got)
	}
}

func TestMetrics_EmptyInput(t *testing.T) {
	tests := []struct {
		name   string
		recs   []string
		actual []string
		k      int
	}{
		{"empty recs", nil, []string{"a"}, 5},
		{"empty actual", []string{"a"}, nil, 5},
		{"zero k", []string{"a"}, []string{"a"}, 0},
		{"negative k", []string{"a"}, []string{"a"}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Evaluate(tt.recs, tt.actual, tt.k)
			if r.Precision != 0 || r.Recall != 0 || r.NDCG != 0 || r.HitRate != 0 {
				t.Errorf("Evaluate() = %+v, want all zero", r)
			}
		})
	}
}

func TestPrecisionAtK_Range(t *testing.T) {
	recs := []string{"a", "b", "c"}
	actual := []string{"a", "b", "c", "d"}
	for k := 1; k <= 6; k++ {
		p := PrecisionAtK(recs, actual, k)
		if p < 0 || p > 1 {
			t.Errorf("k=%d: precision %v out of [0,1]", k, p)
		}
	}
	// 列表短于 k 时仍除以 k
	if got := PrecisionAtK(recs, actual, 6); !near(got, 0.5) {
		t.Errorf("PrecisionAtK(k=6) = %v, want 0.5", got)
	}
}

func TestRecallAtK_Monotone(t *testing.T) {
	recs := []string{"x", "a", "y", "b", "z", "c"}
	actual := []string{"a", "b", "c", "d"}
	prev := 0.0
	for k := 1; k <= len(recs)+2; k++ {
		r := RecallAtK(recs, actual, k)
		if r < prev {
			t.Errorf("recall@%d = %v < recall@%d = %v", k, r, k-1, prev)
		}
		prev = r
	}
	if !near(prev, 0.75) {
		t.Errorf("final recall = %v, want 0.75", prev)
	}
}

func TestRecallAtK_DuplicateActual(t *testing.T) {
	tests := []struct {
		name   string
		recs   []int
		actual []int
		want   float64
	}{
		{"unique actual", []int{1, 2}, []int{1, 3}, 0.5},
		{"duplicates count in denominator", []int{1, 2}, []int{1, 1, 3}, 1.0 / 3.0},
		{"duplicate recs count once", []int{1, 1}, []int{1, 3}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RecallAtK(tt.recs, tt.actual, 2); !near(got, tt.want) {
				t.Errorf("RecallAtK() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNDCGAtK(t *testing.T) {
	tests := []struct {
		name   string
		recs   []string
		actual []string
		k      int
		want   float64
	}{
		{"ideal prefix", []string{"a", "b", "x"}, []string{"a", "b"}, 3, 1},
		{"ideal truncated", []string{"a", "b", "c"}, []string{"c", "b", "a", "d"}, 2, 1},
		{"no hits", []string{"x", "y"}, []string{"a"}, 2, 0},
		{"single hit at rank 1", []string{"x", "a"}, []string{"a"}, 2, 1 / math.Log2(3)},
		{"duplicate counted once", []string{"x", "a", "a"}, []string{"a"}, 3, 1 / math.Log2(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NDCGAtK(tt.recs, tt.actual, tt.k); !near(got, tt.want) {
				t.Errorf("NDCGAtK = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	var s Summary
	if m := s.Mean(); m.Precision != 0 {
		t.Errorf("empty Mean() = %+v", m)
	}
	s.Add(Report{K: 5, Precision: 0.2, Recall: 1, NDCG: 1, HitRate: 1})
	s.Add(Report{K: 5, Precision: 0.4, Recall: 0, NDCG: 0, HitRate: 0})
	s.Skip()

	m := s.Mean()
	if m.K != 5 || !near(m.Precision, 0.3) || !near(m.Recall, 0.5) || !near(m.HitRate, 0.5) {
		t.Errorf("Mean() = %+v", m)
	}
	if s.Count != 2 || s.Skipped != 1 {
		t.Errorf("Count/Skipped = %d/%d, want 2/1", s.Count, s.Skipped)
	}
}

func TestHoldoutCases(t *testing.T) {
	in := []dataset.Interaction{
		{UserID: "u2", ItemID: "c", Timestamp: 3},
		{UserID: "u1", ItemID: "b", Timestamp: 2},
		{UserID: "u1", ItemID: "a", Timestamp: 1},
		{UserID: "u1", ItemID: "b", Timestamp: 4},
		{UserID: "u1", ItemID: "d", Timestamp: 5},
		{UserID: "u3", ItemID: "x", Timestamp: 1},
		{UserID: "u3", ItemID: "x", Timestamp: 2},
	}
	got := HoldoutCases(in, 0)
	want := []Case{
		{UserID: "u1", Query: "a", Relevant: []string{"b", "d"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("HoldoutCases() = %+v, want %+v", got, want)
	}
}

func TestRun(t *testing.T) {
	cases := []Case{
		{UserID: "u1", Query: "a", Relevant: []string{"b"}},
		{UserID: "u2", Query: "missing", Relevant: []string{"b"}},
	}
	fn := func(_ context.Context, q string, k int) (core.Result, error) {
		if q == "missing" {
			return core.NotFound(q, "collaborative"), nil
		}
		return core.Result{Query: q, Items: core.Ranking{{ID: "b", Score: 1}, {ID: "c", Score: 0.5}}}, nil
	}

	sum, err := Run(context.Background(), cases, fn, 2)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sum.Count != 1 || sum.Skipped != 1 {
		t.Fatalf("Count/Skipped = %d/%d, want 1/1", sum.Count, sum.Skipped)
	}
	m := sum.Mean()
	if !near(m.Precision, 0.5) || !near(m.Recall, 1) || !near(m.NDCG, 1) {
		t.Errorf("Mean() = %+v", m)
	}

	boom := errors.New("boom")
	_, err = Run(context.Background(), cases, func(context.Context, string, int) (core.Result, error) {
		return core.Result{}, boom
	}, 2)
	if !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want boom", err)
	}
}
