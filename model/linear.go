package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/rushteam/hybridrec/core"
)

// LinearModel 对召回特征做线性加权：z = Bias + sum(Weight_i * Feature_i)。
// Logistic 为 true 时输出 1 / (1 + exp(-z))（逻辑回归）。
//
// Weights = {collaborative: alpha, content: 1 - alpha}、Bias = 0 时即混合打分公式，
// 缺失的特征按 0 计。
type LinearModel struct {
	Bias     float64            `json:"bias"`
	Weights  map[string]float64 `json:"weights"`
	Logistic bool               `json:"logistic"`
}

// BlendModel 返回与 hybrid.Scorer 相同公式的线性模型。
func BlendModel(alpha float64) (*LinearModel, error) {
	if math.IsNaN(alpha) || alpha < 0 || alpha > 1 {
		return nil, core.InvalidInput(core.ModuleHybrid, "alpha must be in [0, 1], got %v", alpha)
	}
	return &LinearModel{Weights: map[string]float64{
		"collaborative": alpha,
		"content":       1 - alpha,
	}}, nil
}

// LoadLinearModel 从 JSON 文件加载：{"bias": 0, "weights": {"collaborative": 0.6, "content": 0.4}}。
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	return &m, nil
}

func (m *LinearModel) Name() string {
	if m.Logistic {
		return "lr"
	}
	return "linear"
}

func (m *LinearModel) Predict(features map[string]float64) (float64, error) {
	score := m.Bias
	for k, w := range m.Weights {
		score += w * features[k]
	}
	if m.Logistic {
		return 1 / (1 + math.Exp(-score)), nil
	}
	return score, nil
}
