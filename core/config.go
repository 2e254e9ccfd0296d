package core

// RecallConfig 提供召回相关的默认值。
type RecallConfig interface {
	// DefaultTopK 返回默认的 TopK 物品数
	DefaultTopK() int

	// DefaultAlpha 返回默认的协同过滤权重
	DefaultAlpha() float64
}

// DefaultRecallConfig 是默认的召回配置实现。
type DefaultRecallConfig struct{}

func (c *DefaultRecallConfig) DefaultTopK() int {
	return DefaultTopK
}

func (c *DefaultRecallConfig) DefaultAlpha() float64 {
	return 0.5
}
