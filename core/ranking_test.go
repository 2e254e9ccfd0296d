package core

import (
	"reflect"
	"testing"
)

func TestCompareID(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"9", "10", -1},
		{"10", "9", 1},
		{"42", "42", 0},
		{"a", "b", -1},
		{"10", "a", -1}, // 整数排在非整数之前
		{"10", "1a", -1},
		{"1a", "9", 1},
		{"007", "7", -1},
		{"-1", "0", -1},
	}
	for _, tt := range tests {
		if got := CompareID(tt.a, tt.b); got != tt.want {
			t.Errorf("CompareID(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRankingSort(t *testing.T) {
	r := Ranking{
		{ID: "10", Score: 0.5},
		{ID: "3", Score: 0.9},
		{ID: "9", Score: 0.5},
		{ID: "1", Score: 0.1},
	}
	r.Sort()

	want := []string{"3", "9", "10", "1"}
	if got := r.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("sorted ids = %v, want %v", got, want)
	}
}

func TestRankingTop(t *testing.T) {
	r := Ranking{{ID: "1"}, {ID: "2"}, {ID: "3"}}

	if got := len(r.Top(2)); got != 2 {
		t.Errorf("Top(2) len = %d, want 2", got)
	}
	if got := len(r.Top(10)); got != 3 {
		t.Errorf("Top(10) len = %d, want 3", got)
	}
	if got := len(r.Top(0)); got != 3 {
		t.Errorf("Top(0) len = %d, want 3", got)
	}
}

func TestItemsRoundTrip(t *testing.T) {
	r := Ranking{{ID: "7", Score: 0.7}, {ID: "8", Score: 0.2}}
	items := ItemsFromRanking(r, "i2i")

	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if lbl := items[0].Labels["recall_source"]; lbl.Value != "i2i" {
		t.Errorf("recall_source = %q, want i2i", lbl.Value)
	}
	if got := RankingFromItems(append(items, nil)); !reflect.DeepEqual(got, r) {
		t.Errorf("RankingFromItems = %v, want %v", got, r)
	}
}

func permutations(s []string) [][]string {
	if len(s) <= 1 {
		return [][]string{append([]string(nil), s...)}
	}
	var out [][]string
	for i := range s {
		rest := make([]string, 0, len(s)-1)
		rest = append(rest, s[:i]...)
		rest = append(rest, s[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]string{s[i]}, p...))
		}
	}
	return out
}

func TestCompareID_TotalOrder(t *testing.T) {
	ids := []string{"9", "10", "1a", "007", "7", "b"}
	want := []string{"007", "7", "9", "10", "1a", "b"}

	for _, a := range ids {
		for _, b := range ids {
			if CompareID(a, b) != -CompareID(b, a) {
				t.Errorf("CompareID(%q, %q) not antisymmetric", a, b)
			}
			for _, c := range ids {
				if CompareID(a, b) < 0 && CompareID(b, c) < 0 && CompareID(a, c) >= 0 {
					t.Errorf("CompareID not transitive for %q < %q < %q", a, b, c)
				}
			}
		}
	}

	for _, perm := range permutations(ids) {
		got := append([]string(nil), perm...)
		SortIDs(got)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("SortIDs(%v) = %v, want %v", perm, got, want)
		}

		r := make(Ranking, len(perm))
		for i, id := range perm {
			r[i] = ScoredItem{ID: id, Score: 0.5}
		}
		r.Sort()
		if !reflect.DeepEqual(r.IDs(), want) {
			t.Fatalf("Sort(%v) = %v, want %v", perm, r.IDs(), want)
		}
	}
}
