package core

// Result 是一次查询的结果。
//
// 查询物品不在矩阵中时 Missing 记录缺失的矩阵名，Items 为空；
// 这是可预期的"没有推荐"，不是错误，调用方用 Found 分支即可。
type Result struct {
	Query   string   `json:"query"`
	Items   Ranking  `json:"items"`
	Missing []string `json:"missing,omitempty"`
}

// Found 报告查询物品是否在所有需要的矩阵中。
func (r Result) Found() bool {
	return len(r.Missing) == 0
}

// NotFound 构造一个"没有推荐"的结果。
func NotFound(query string, missing ...string) Result {
	return Result{Query: query, Items: Ranking{}, Missing: missing}
}
