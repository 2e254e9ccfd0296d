package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/similarity"
)

// Config 是 Pipeline 的配置结构（支持 YAML/JSON）。
type Config struct {
	Name  string       `yaml:"name" json:"name"`
	Nodes []NodeConfig `yaml:"nodes" json:"nodes"`
}

// NodeConfig 是单个 Node 的配置。
type NodeConfig struct {
	Type   string         `yaml:"type" json:"type"`     // recall.i2i / recall.hybrid / filter / rerank.topn 等
	Config map[string]any `yaml:"config" json:"config"` // Node 特定配置
}

// LoadFromYAML 从 YAML 文件加载 Pipeline 配置。
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	return &cfg, nil
}

// LoadFromJSON 从 JSON 文件加载 Pipeline 配置。
func LoadFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	return &cfg, nil
}

// BuildPipeline 根据配置构建 Pipeline（需要 NodeFactory 注册 Node 构建器）。
// factory 由 config 包提供，避免循环依赖。
func (c *Config) BuildPipeline(factory *NodeFactory, res *Resources) (*Pipeline, error) {
	if len(c.Nodes) == 0 {
		return nil, core.InvalidInput(core.ModulePipeline, "pipeline %q has no nodes", c.Name)
	}
	nodes := make([]Node, 0, len(c.Nodes))

	for _, nc := range c.Nodes {
		node, err := factory.Build(nc.Type, nc.Config, res)
		if err != nil {
			return nil, fmt.Errorf("build node %s: %w", nc.Type, err)
		}
		nodes = append(nodes, node)
	}

	return &Pipeline{Name: c.Name, Nodes: nodes}, nil
}

// Resources 是构建 Node 时可用的运行期依赖。
type Resources struct {
	// Matrices 是已构建好的相似度矩阵，按名称索引
	Matrices map[string]*similarity.Matrix

	// Store 可选，黑名单 / 已导出邻居列表所在的存储
	Store     core.KeyValueStore
	KeyPrefix string
}

// NewResources 按矩阵名称索引。
func NewResources(ms ...*similarity.Matrix) *Resources {
	r := &Resources{Matrices: make(map[string]*similarity.Matrix, len(ms))}
	for _, m := range ms {
		if m != nil {
			r.Matrices[m.Name()] = m
		}
	}
	return r
}

// Matrix 按名称取矩阵。
func (r *Resources) Matrix(name string) (*similarity.Matrix, error) {
	if r != nil {
		if m, ok := r.Matrices[name]; ok {
			return m, nil
		}
	}
	return nil, core.InvalidInput(core.ModulePipeline, "similarity matrix %q not available", name)
}

// NodeBuilder 根据 config 与 Resources 构建 Node。
type NodeBuilder func(cfg map[string]any, res *Resources) (Node, error)

// NodeFactory 用于根据配置构建 Node 实例。
type NodeFactory struct {
	builders map[string]NodeBuilder
}

func NewNodeFactory() *NodeFactory {
	return &NodeFactory{
		builders: make(map[string]NodeBuilder),
	}
}

// Register 注册 Node 构建器。
func (f *NodeFactory) Register(nodeType string, builder NodeBuilder) {
	f.builders[nodeType] = builder
}

// Types 返回已注册的 Node 类型（排序）。
func (f *NodeFactory) Types() []string {
	types := make([]string, 0, len(f.builders))
	for t := range f.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Build 根据类型和配置构建 Node。
func (f *NodeFactory) Build(nodeType string, config map[string]any, res *Resources) (Node, error) {
	builder, ok := f.builders[nodeType]
	if !ok {
		return nil, core.InvalidInput(core.ModulePipeline, "unknown node type: %s", nodeType)
	}
	return builder(config, res)
}
