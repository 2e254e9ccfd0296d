package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/pkg/logging"
)

// ItemMetadata 是一个商品的文本描述：选定属性的所有取值以空格拼接。
type ItemMetadata struct {
	ItemID string `json:"product_id"`
	Text   string `json:"metadata"`
}

// MetadataColumns 是商品属性表中的列名。
type MetadataColumns struct {
	Item     string `yaml:"item" json:"item"`
	Property string `yaml:"property" json:"property"`
	Value    string `yaml:"value" json:"value"`
}

// MetadataConfig 是商品属性加载配置。
type MetadataConfig struct {
	Path string `yaml:"path" json:"path"`

	// MaxRows 最多读取的数据行数（不含表头，过滤前计数）；<= 0 表示不限制
	MaxRows int `yaml:"max_rows" json:"max_rows"`

	// Properties 参与拼接的属性名，默认只用 categoryid
	Properties []string `yaml:"properties" json:"properties"`

	Columns MetadataColumns `yaml:"columns" json:"columns"`
}

// DefaultMetadataConfig 对应 Retailrocket item_properties.csv 的默认格式。
func DefaultMetadataConfig() MetadataConfig {
	return MetadataConfig{
		Path:       "data/products.csv",
		MaxRows:    10000,
		Properties: []string{"categoryid"},
		Columns: MetadataColumns{
			Item:     "itemid",
			Property: "property",
			Value:    "value",
		},
	}
}

func (c MetadataConfig) withDefaults() MetadataConfig {
	def := DefaultMetadataConfig()
	if len(c.Properties) == 0 {
		c.Properties = def.Properties
	}
	if c.Columns.Item == "" {
		c.Columns.Item = def.Columns.Item
	}
	if c.Columns.Property == "" {
		c.Columns.Property = def.Columns.Property
	}
	if c.Columns.Value == "" {
		c.Columns.Value = def.Columns.Value
	}
	return c
}

// PrepareMetadata 读取 cfg.Path 指向的商品属性表。
func PrepareMetadata(ctx context.Context, cfg MetadataConfig) ([]ItemMetadata, error) {
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open products: %w", err)
	}
	defer f.Close()
	return ReadMetadata(ctx, f, cfg)
}

// ReadMetadata 读取前 MaxRows 行，只保留 Properties 中的属性，
// 按商品聚合取值（保持出现顺序）并以空格拼接。
// 结果按商品 ID（core.CompareID）升序排列。
func ReadMetadata(ctx context.Context, r io.Reader, cfg MetadataConfig) ([]ItemMetadata, error) {
	cfg = cfg.withDefaults()

	table, err := newCSVTable(r)
	if err != nil {
		return nil, err
	}
	cols, err := table.columns(cfg.Columns.Item, cfg.Columns.Property, cfg.Columns.Value)
	if err != nil {
		return nil, err
	}
	itemCol, propCol, valueCol := cols[0], cols[1], cols[2]

	wanted := make(map[string]struct{}, len(cfg.Properties))
	for _, p := range cfg.Properties {
		wanted[p] = struct{}{}
	}

	values := make(map[string][]string)
	rows := 0
	for cfg.MaxRows <= 0 || rows < cfg.MaxRows {
		if rows%4096 == 0 {
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
		rows++

		if _, ok := wanted[field(rec, propCol)]; !ok {
			continue
		}
		item := field(rec, itemCol)
		if item == "" {
			continue
		}
		values[item] = append(values[item], field(rec, valueCol))
	}

	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	core.SortIDs(ids)

	out := make([]ItemMetadata, 0, len(ids))
	for _, id := range ids {
		out = append(out, ItemMetadata{ItemID: id, Text: strings.Join(values[id], " ")})
	}

	logging.Ctx(ctx).Debug().
		Int("rows", rows).
		Int("items", len(out)).
		Strs("properties", cfg.Properties).
		Msg("item metadata prepared")
	return out, nil
}
