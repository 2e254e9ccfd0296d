package config

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/dataset"
	"github.com/rushteam/hybridrec/pipeline"
	"github.com/rushteam/hybridrec/pkg/logging"
)

// 存储后端
const (
	BackendNone   = ""
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// App 是 hybridrec 的完整配置文件：
//
//	data:
//	  interactions: {path: data/events.csv, sample_size: 5000, seed: 42}
//	  metadata: {path: data/item_properties.csv, max_rows: 10000, properties: [categoryid]}
//	model: {alpha: 0.5, top_k: 5}
//	log: {level: info, format: console}
//	store: {backend: redis, addr: 127.0.0.1:6379, key_prefix: hybridrec, ttl: 86400}
//	evaluation: {k: 5, min_history: 2}
//	pipeline:
//	  name: hybrid
//	  nodes:
//	    - type: recall.hybrid
//	      config: {top_k: 20}
//	    - type: rerank.topn
//	      config: {n: 5}
type App struct {
	Data       DataConfig       `yaml:"data"`
	Model      ModelConfig      `yaml:"model"`
	Log        logging.Config   `yaml:"log"`
	Store      StoreConfig      `yaml:"store"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Pipeline   pipeline.Config  `yaml:"pipeline"`
}

type DataConfig struct {
	Interactions dataset.InteractionConfig `yaml:"interactions"`
	Metadata     dataset.MetadataConfig    `yaml:"metadata"`
}

// ModelConfig 是混合打分的默认参数。
type ModelConfig struct {
	Alpha float64 `yaml:"alpha"`
	TopK  int     `yaml:"top_k"`
}

// StoreConfig 是邻居列表导出目标。Backend 为空时不导出。
type StoreConfig struct {
	Backend   string `yaml:"backend"`
	Addr      string `yaml:"addr"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
	TTL       int    `yaml:"ttl"` // 秒，<= 0 不过期
}

// EvaluationConfig 是留出评估参数。
type EvaluationConfig struct {
	K          int `yaml:"k"`
	MinHistory int `yaml:"min_history"`
}

// Default 返回默认配置。
func Default() *App {
	return &App{
		Data: DataConfig{
			Interactions: dataset.DefaultInteractionConfig(),
			Metadata:     dataset.DefaultMetadataConfig(),
		},
		Model: ModelConfig{Alpha: 0.5, TopK: core.DefaultTopK},
		Log:   logging.DefaultConfig(),
		Store: StoreConfig{
			Backend:   BackendMemory,
			Addr:      "127.0.0.1:6379",
			KeyPrefix: "hybridrec",
		},
		Evaluation: EvaluationConfig{K: core.DefaultTopK, MinHistory: 2},
		Pipeline: pipeline.Config{
			Name: "hybrid",
			Nodes: []pipeline.NodeConfig{
				{Type: "recall.hybrid", Config: map[string]any{"top_k": 20}},
				{Type: "rerank.topn", Config: map[string]any{"n": core.DefaultTopK}},
			},
		},
	}
}

// Load 读取 YAML 配置文件；文件中未出现的字段保留默认值。
func Load(path string) (*App, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse 从 r 解析 YAML 配置并校验。
func Parse(r io.Reader) (*App, error) {
	cfg := Default()
	// 这些字段以整体替换而非合并的方式覆盖默认值
	defWeights := cfg.Data.Interactions.Weights
	defProps := cfg.Data.Metadata.Properties
	defPipeline := cfg.Pipeline
	cfg.Data.Interactions.Weights = nil
	cfg.Data.Metadata.Properties = nil
	cfg.Pipeline = pipeline.Config{}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if cfg.Data.Interactions.Weights == nil {
		cfg.Data.Interactions.Weights = defWeights
	}
	if cfg.Data.Metadata.Properties == nil {
		cfg.Data.Metadata.Properties = defProps
	}
	if len(cfg.Pipeline.Nodes) == 0 {
		name := cfg.Pipeline.Name
		cfg.Pipeline = defPipeline
		if name != "" {
			cfg.Pipeline.Name = name
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置。
func (a *App) Validate() error {
	if math.IsNaN(a.Model.Alpha) || a.Model.Alpha < 0 || a.Model.Alpha > 1 {
		return core.InvalidInput(core.ModuleHybrid, "model.alpha must be in [0, 1], got %v", a.Model.Alpha)
	}
	if a.Model.TopK < 0 {
		return core.InvalidInput(core.ModuleHybrid, "model.top_k must be >= 0, got %d", a.Model.TopK)
	}
	if a.Data.Interactions.Path == "" || a.Data.Metadata.Path == "" {
		return core.InvalidInput(core.ModuleDataset, "data paths must be set")
	}
	if err := a.Data.Interactions.Weights.Validate(); err != nil {
		return err
	}
	switch a.Store.Backend {
	case BackendNone, BackendMemory:
	case BackendRedis:
		if a.Store.Addr == "" {
			return core.InvalidInput(core.ModuleStore, "store.addr is required for redis")
		}
	default:
		return core.InvalidInput(core.ModuleStore, "unknown store backend %q", a.Store.Backend)
	}
	if err := ValidatePipelineConfig(&a.Pipeline); err != nil {
		return core.InvalidInput(core.ModulePipeline, "%v", err)
	}
	return nil
}
