package utils

import "strings"

// Label 记录候选商品在链路中的来历：哪个矩阵召回、排第几、用了哪个 alpha、被哪个模型打分。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // 产生该 Label 的阶段，见 Source* 常量
}

const (
	SourceRecall = "recall"
	SourceRank   = "rank"
	SourceRerank = "rerank"
)

func RecallLabel(value string) Label { return Label{Value: value, Source: SourceRecall} }

func RankLabel(value string) Label { return Label{Value: value, Source: SourceRank} }

// MergeLabel 合并同名 Label：Value 以 '|' 累积，Source 以 ',' 累积且不重复。
// Fanout 中两个矩阵命中同一商品时，recall_source 会变成
// "recall.i2i.collaborative|recall.i2i.content"，Source 仍为 "recall"。
func MergeLabel(existing, incoming Label) Label {
	switch {
	case existing.Value == "":
		return incoming
	case incoming.Value == "":
		return existing
	}
	return Label{
		Value:  existing.Value + "|" + incoming.Value,
		Source: joinSource(existing.Source, incoming.Source),
	}
}

func joinSource(existing, incoming string) string {
	switch {
	case existing == "":
		return incoming
	case incoming == "":
		return existing
	}
	for _, s := range strings.Split(existing, ",") {
		if s == incoming {
			return existing
		}
	}
	return existing + "," + incoming
}
