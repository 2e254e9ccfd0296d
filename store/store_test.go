package store

import (
	"context"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/rushteam/hybridrec/core"
)

func TestMemoryStore_KV(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if _, err := s.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get(missing) err = %v, want not found", err)
	}
	if err := s.Set(ctx, "a", []byte("1")); err != nil {
		t.Fatal(err)
	}
	if err := s.BatchSet(ctx, map[string][]byte{"b": []byte("2"), "c": []byte("3")}); err != nil {
		t.Fatal(err)
	}
	got, err := s.BatchGet(ctx, []string{"a", "b", "x"})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string][]byte{"a": []byte("1"), "b": []byte("2")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BatchGet() = %v, want %v", got, want)
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "a"); !core.IsStoreNotFound(err) {
		t.Errorf("Get after Delete err = %v, want not found", err)
	}
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	_ = s.Set(ctx, "k", []byte("v"), 1)
	_ = s.ZAdd(ctx, "z", 1, "m")
	_ = s.Expire(ctx, "z", 1)

	s.mu.Lock()
	past := time.Now().Add(-time.Second)
	s.expire["k"] = past
	s.expire["z"] = past
	s.mu.Unlock()

	if _, err := s.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("Get(expired) err = %v, want not found", err)
	}
	if r, _ := s.ZRangeWithScores(ctx, "z", 0, -1); len(r) != 0 {
		t.Errorf("ZRangeWithScores(expired) = %v, want empty", r)
	}

	s.purge(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.data) != 0 || len(s.zsets) != 0 || len(s.expire) != 0 {
		t.Errorf("purge left data=%d zsets=%d expire=%d", len(s.data), len(s.zsets), len(s.expire))
	}
}

func TestMemoryStore_ZRangeWithScores(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	for _, it := range []core.ScoredItem{{ID: "10", Score: 0.5}, {ID: "9", Score: 0.5}, {ID: "3", Score: 0.9}, {ID: "7", Score: 0.1}} {
		_ = s.ZAdd(ctx, "z", it.Score, it.ID)
	}

	tests := []struct {
		name        string
		start, stop int64
		want        []string
	}{
		{"all", 0, -1, []string{"3", "9", "10", "7"}},
		{"first two", 0, 1, []string{"3", "9"}},
		{"tail", 2, 10, []string{"10", "7"}},
		{"empty window", 3, 1, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := s.ZRangeWithScores(ctx, "z", tt.start, tt.stop)
			if err != nil {
				t.Fatal(err)
			}
			if got := r.IDs(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("IDs = %v, want %v", got, tt.want)
			}
		})
	}

	r, _ := s.ZRangeWithScores(ctx, "missing", 0, -1)
	if len(r) != 0 {
		t.Errorf("missing zset = %v, want empty", r)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(addr, 0)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer s.Close()

	key := "hybridrec:test:z"
	_ = s.Delete(ctx, key)
	defer s.Delete(ctx, key)

	for _, it := range []core.ScoredItem{{ID: "b", Score: 0.5}, {ID: "a", Score: 0.5}, {ID: "c", Score: 0.9}} {
		if err := s.ZAdd(ctx, key, it.Score, it.ID); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Expire(ctx, key, 60); err != nil {
		t.Fatal(err)
	}
	r, err := s.ZRangeWithScores(ctx, key, 0, -1)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := r.IDs(), []string{"c", "a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("IDs = %v, want %v", got, want)
	}
}
