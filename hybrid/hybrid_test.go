package hybrid

import (
	"context"
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/similarity"
)

func newMatrix(t *testing.T, name string, ids []string, upper []float64) *similarity.Matrix {
	t.Helper()
	n := len(ids)
	sim := mat.NewSymDense(n, nil)
	p := 0
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sim.SetSym(i, j, upper[p])
			p++
		}
	}
	m, err := similarity.NewMatrix(name, ids, sim)
	if err != nil {
		t.Fatalf("NewMatrix() error = %v", err)
	}
	return m
}

// collab: 1-2 0.9, 1-3 0.1, 1-4 0.5
// content: 1-2 0.0, 1-3 0.8, 1-4 0.5, 1-5 0.6（5 只在内容矩阵中）
func fixtures(t *testing.T) (*similarity.Matrix, *similarity.Matrix) {
	collab := newMatrix(t, similarity.NameCollaborative, []string{"1", "2", "3", "4"}, []float64{
		1, 0.9, 0.1, 0.5,
		1, 0.2, 0.3,
		1, 0.4,
		1,
	})
	content := newMatrix(t, similarity.NameContent, []string{"1", "2", "3", "4", "5"}, []float64{
		1, 0.0, 0.8, 0.5, 0.6,
		1, 0.1, 0.1, 0.1,
		1, 0.1, 0.1,
		1, 0.1,
		1,
	})
	return collab, content
}

func TestScorer_Recommend(t *testing.T) {
	collab, content := fixtures(t)

	tests := []struct {
		name    string
		alpha   float64
		k       int
		wantIDs []string
	}{
		// 2: 0.45, 3: 0.45, 4: 0.5, 5: 0.3
		{"balanced", 0.5, 5, []string{"4", "2", "3", "5"}},
		{"balanced top 2", 0.5, 2, []string{"4", "2"}},
		{"collaborative only", 1, 5, []string{"2", "4", "3", "5"}},
		{"content only", 0, 5, []string{"3", "5", "4", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Scorer{Alpha: tt.alpha, TopK: tt.k}.Recommend(context.Background(), "1", collab, content)
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if !res.Found() {
				t.Fatal("Found() = false")
			}
			if got := res.Items.IDs(); !reflect.DeepEqual(got, tt.wantIDs) {
				t.Errorf("IDs = %v, want %v", got, tt.wantIDs)
			}
			if len(res.Components) != len(res.Items) {
				t.Fatalf("len(Components) = %d, want %d", len(res.Components), len(res.Items))
			}
			for i, it := range res.Items {
				c := res.Components[i]
				want := tt.alpha*c.Collaborative + (1-tt.alpha)*c.Content
				if math.Abs(it.Score-want) > 1e-12 {
					t.Errorf("%s score = %v, want %v", it.ID, it.Score, want)
				}
			}
		})
	}
}

func TestScorer_AlphaExtremesMatchSingleMatrix(t *testing.T) {
	ids := []string{"1", "2", "3", "4"}
	collab := newMatrix(t, similarity.NameCollaborative, ids, []float64{1, 0.3, 0.7, 0.3, 1, 0.2, 0.1, 1, 0.9, 1})
	content := newMatrix(t, similarity.NameContent, ids, []float64{1, 0.6, 0.2, 0.4, 1, 0.5, 0.5, 1, 0.0, 1})
	ctx := context.Background()

	for _, tc := range []struct {
		alpha float64
		m     *similarity.Matrix
	}{{1, collab}, {0, content}} {
		for _, id := range ids {
			want, _ := tc.m.Similar(id, 2)
			got, err := Recommend(ctx, id, collab, content, tc.alpha, 2)
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if !reflect.DeepEqual(got.Items.IDs(), want.IDs()) {
				t.Errorf("alpha=%v id=%s: got %v, want %v", tc.alpha, id, got.Items.IDs(), want.IDs())
			}
		}
	}
}

func TestScorer_Missing(t *testing.T) {
	collab, content := fixtures(t)

	tests := []struct {
		name        string
		id          string
		wantMissing []string
	}{
		{"only in content", "5", []string{similarity.NameCollaborative}},
		{"in neither", "404", []string{similarity.NameCollaborative, similarity.NameContent}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Recommend(context.Background(), tt.id, collab, content, 0.5, 5)
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if res.Found() {
				t.Error("Found() = true, want false")
			}
			if len(res.Items) != 0 {
				t.Errorf("Items = %v, want empty", res.Items)
			}
			if !reflect.DeepEqual(res.Missing, tt.wantMissing) {
				t.Errorf("Missing = %v, want %v", res.Missing, tt.wantMissing)
			}
		})
	}
}

func TestScorer_InvalidInput(t *testing.T) {
	collab, content := fixtures(t)
	ctx := context.Background()

	for _, alpha := range []float64{-0.1, 1.1, math.NaN()} {
		if _, err := Recommend(ctx, "1", collab, content, alpha, 5); !core.IsInvalidInput(err) {
			t.Errorf("alpha=%v: err = %v, want INVALID_INPUT", alpha, err)
		}
	}
	if _, err := NewScorer(2, 5); !core.IsInvalidInput(err) {
		t.Errorf("NewScorer(2): err = %v, want INVALID_INPUT", err)
	}
	if _, err := Recommend(ctx, "1", nil, content, 0.5, 5); !core.IsInvalidInput(err) {
		t.Errorf("nil matrix: err = %v, want INVALID_INPUT", err)
	}
}

func TestScorer_DefaultTopK(t *testing.T) {
	ids := []string{"1", "2", "3", "4", "5", "6", "7"}
	n := len(ids)
	upper := make([]float64, 0, n*(n+1)/2)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			upper = append(upper, 0.5)
		}
	}
	collab := newMatrix(t, similarity.NameCollaborative, ids, upper)
	content := newMatrix(t, similarity.NameContent, ids, upper)

	res, err := Recommend(context.Background(), "4", collab, content, 0.5, 0)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got, want := res.Items.IDs(), []string{"1", "2", "3", "5", "6"}; !reflect.DeepEqual(got, want) {
		t.Errorf("IDs = %v, want %v", got, want)
	}
}

func TestScorer_TiedScoresDeterministic(t *testing.T) {
	ids := []string{"q", "1a", "10", "9"}
	upper := []float64{
		1, 0.5, 0.5, 0.5,
		1, 0.5, 0.5,
		1, 0.5,
		1,
	}
	collab := newMatrix(t, similarity.NameCollaborative, ids, upper)
	content := newMatrix(t, similarity.NameContent, ids, upper)

	want := []string{"9", "10", "1a"}
	for i := 0; i < 100; i++ {
		res, err := Recommend(context.Background(), "q", collab, content, 0.5, 3)
		if err != nil {
			t.Fatal(err)
		}
		if got := res.Items.IDs(); !reflect.DeepEqual(got, want) {
			t.Fatalf("run %d: ids = %v, want %v", i, got, want)
		}
	}
}
