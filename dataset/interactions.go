package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sort"
	"strconv"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/pkg/logging"
)

// Interaction 是一条带权重的用户-商品行为。
type Interaction struct {
	UserID    string  `json:"user_id"`
	ItemID    string  `json:"product_id"`
	Event     string  `json:"event"`
	Weight    float64 `json:"weight"`
	Timestamp int64   `json:"timestamp"`
}

// InteractionColumns 是原始行为日志中的列名。
type InteractionColumns struct {
	User      string `yaml:"user" json:"user"`
	Item      string `yaml:"item" json:"item"`
	Event     string `yaml:"event" json:"event"`
	Timestamp string `yaml:"timestamp" json:"timestamp"`
}

// InteractionConfig 是行为日志加载配置。
type InteractionConfig struct {
	Path string `yaml:"path" json:"path"`

	// SampleSize 抽样行数；<= 0 或大于可用行数时保留全部
	SampleSize int `yaml:"sample_size" json:"sample_size"`

	// Seed 抽样随机种子，同一输入同一种子结果一致
	Seed uint64 `yaml:"seed" json:"seed"`

	Weights ActionWeights      `yaml:"weights" json:"weights"`
	Columns InteractionColumns `yaml:"columns" json:"columns"`
}

// DefaultInteractionConfig 对应 Retailrocket events.csv 的默认格式。
func DefaultInteractionConfig() InteractionConfig {
	return InteractionConfig{
		Path:       "data/interactions.csv",
		SampleSize: 5000,
		Seed:       42,
		Weights:    DefaultActionWeights(),
		Columns: InteractionColumns{
			User:      "visitorid",
			Item:      "itemid",
			Event:     "event",
			Timestamp: "timestamp",
		},
	}
}

func (c InteractionConfig) withDefaults() InteractionConfig {
	def := DefaultInteractionConfig()
	if len(c.Weights) == 0 {
		c.Weights = def.Weights
	}
	if c.Columns.User == "" {
		c.Columns.User = def.Columns.User
	}
	if c.Columns.Item == "" {
		c.Columns.Item = def.Columns.Item
	}
	if c.Columns.Event == "" {
		c.Columns.Event = def.Columns.Event
	}
	if c.Columns.Timestamp == "" {
		c.Columns.Timestamp = def.Columns.Timestamp
	}
	return c
}

// LoadInteractions 读取 cfg.Path 指向的行为日志。
func LoadInteractions(ctx context.Context, cfg InteractionConfig) ([]Interaction, error) {
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open interactions: %w", err)
	}
	defer f.Close()
	return ReadInteractions(ctx, f, cfg)
}

// ReadInteractions 解析行为日志：
//  1. 只保留权重表中存在的行为类型
//  2. 按 Seed 抽取 SampleSize 行（保持原始行序）
//  3. 按行为类型赋权重，列名统一为 user / product
func ReadInteractions(ctx context.Context, r io.Reader, cfg InteractionConfig) ([]Interaction, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}

	table, err := newCSVTable(r)
	if err != nil {
		return nil, err
	}
	cols, err := table.columns(cfg.Columns.User, cfg.Columns.Item, cfg.Columns.Event, cfg.Columns.Timestamp)
	if err != nil {
		return nil, err
	}
	userCol, itemCol, eventCol, tsCol := cols[0], cols[1], cols[2], cols[3]

	var (
		out     []Interaction
		skipped int
	)
	for {
		if table.line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := table.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		event := field(rec, eventCol)
		weight, ok := cfg.Weights.Weight(event)
		if !ok {
			skipped++
			continue
		}
		user, item := field(rec, userCol), field(rec, itemCol)
		if user == "" || item == "" {
			skipped++
			continue
		}

		var ts int64
		if raw := field(rec, tsCol); raw != "" {
			ts, err = strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, core.InvalidInput(core.ModuleDataset, "line %d: invalid timestamp %q", table.line, raw)
			}
		}

		out = append(out, Interaction{
			UserID:    user,
			ItemID:    item,
			Event:     event,
			Weight:    weight,
			Timestamp: ts,
		})
	}

	logger := logging.Ctx(ctx)
	if cfg.SampleSize > 0 && cfg.SampleSize > len(out) {
		logger.Warn().
			Int("sample_size", cfg.SampleSize).
			Int("available", len(out)).
			Msg("sample size exceeds available interactions, keeping all")
	}
	out = Sample(out, cfg.SampleSize, cfg.Seed)

	logger.Debug().
		Int("kept", len(out)).
		Int("skipped", skipped).
		Strs("events", cfg.Weights.Events()).
		Msg("interactions loaded")
	return out, nil
}

// Sample 无放回抽取 n 个元素，结果保持原始顺序。
// n <= 0 或 n >= len(s) 时原样返回。
func Sample[T any](s []T, n int, seed uint64) []T {
	if n <= 0 || n >= len(s) {
		return s
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	// 部分 Fisher-Yates：只打乱前 n 个位置
	idx := make([]int, len(s))
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	chosen := idx[:n]
	sort.Ints(chosen)

	out := make([]T, n)
	for i, k := range chosen {
		out[i] = s[k]
	}
	return out
}
