package similarity

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// defaultTokenPattern 匹配由至少 2 个字母 / 数字 / 下划线组成的词，单字符会被忽略。
var defaultTokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Vectorizer 把文本转成 TF-IDF 向量。
//
// 默认参数：
//   - 小写化
//   - token 为 2 个及以上的单词字符
//   - TF 为原始词频（SublinearTF 时为 1+ln(tf)）
//   - IDF 平滑：ln((1+n)/(1+df)) + 1
//   - 每行做 L2 归一化
type Vectorizer struct {
	Lowercase    bool
	TokenPattern *regexp.Regexp
	SmoothIDF    bool
	SublinearTF  bool

	vocabulary map[string]int
	terms      []string
	idf        []float64
}

// NewVectorizer 返回使用默认参数的 Vectorizer。
func NewVectorizer() *Vectorizer {
	return &Vectorizer{
		Lowercase:    true,
		TokenPattern: defaultTokenPattern,
		SmoothIDF:    true,
	}
}

// Tokenize 按 Vectorizer 的规则切词。
func (v *Vectorizer) Tokenize(doc string) []string {
	if v.Lowercase {
		doc = strings.ToLower(doc)
	}
	pattern := v.TokenPattern
	if pattern == nil {
		pattern = defaultTokenPattern
	}
	return pattern.FindAllString(doc, -1)
}

// Fit 在语料上学习词表（按字典序）与 IDF。
func (v *Vectorizer) Fit(docs []string) {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range v.Tokenize(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	v.terms = make([]string, 0, len(df))
	for term := range df {
		v.terms = append(v.terms, term)
	}
	sort.Strings(v.terms)

	n := float64(len(docs))
	v.vocabulary = make(map[string]int, len(v.terms))
	v.idf = make([]float64, len(v.terms))
	for i, term := range v.terms {
		v.vocabulary[term] = i
		d := float64(df[term])
		if v.SmoothIDF {
			v.idf[i] = math.Log((1+n)/(1+d)) + 1
		} else {
			v.idf[i] = math.Log(n/d) + 1
		}
	}
}

// Vocabulary 返回词表（按列顺序）。
func (v *Vectorizer) Vocabulary() []string {
	return append([]string(nil), v.terms...)
}

// IDF 返回词的 IDF 值，未登录词返回 false。
func (v *Vectorizer) IDF(term string) (float64, bool) {
	i, ok := v.vocabulary[term]
	if !ok {
		return 0, false
	}
	return v.idf[i], true
}

// Transform 把文档转成 len(docs)×len(vocabulary) 的 TF-IDF 矩阵，每行 L2 归一化。
// 未登录词被忽略；没有任何已登录词的文档为零向量。
// 词表为空时返回 nil。
func (v *Vectorizer) Transform(docs []string) *mat.Dense {
	if len(docs) == 0 || len(v.terms) == 0 {
		return nil
	}
	x := mat.NewDense(len(docs), len(v.terms), nil)
	for r, doc := range docs {
		counts := make(map[int]float64)
		for _, tok := range v.Tokenize(doc) {
			if c, ok := v.vocabulary[tok]; ok {
				counts[c]++
			}
		}
		var norm float64
		for c, tf := range counts {
			if v.SublinearTF {
				tf = 1 + math.Log(tf)
			}
			w := tf * v.idf[c]
			counts[c] = w
			norm += w * w
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		for c, w := range counts {
			x.Set(r, c, w/norm)
		}
	}
	return x
}

// FitTransform 等价于 Fit 后 Transform。
func (v *Vectorizer) FitTransform(docs []string) *mat.Dense {
	v.Fit(docs)
	return v.Transform(docs)
}
