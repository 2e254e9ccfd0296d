package core

import "fmt"

// DomainError 是领域层的统一错误类型。
//
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
//   - 相似度构建：EMPTY_CORPUS, INVALID_INPUT
//   - 混合打分：INVALID_INPUT（alpha 越界、矩阵为空指针）
//
// 注意：查询物品不在矩阵中不是错误，调用方拿到的是 Found() 为 false 的空结果。
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "EMPTY_CORPUS"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "similarity"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is 让 errors.Is 按 Module + Code 匹配，Message 不参与比较。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	if u, ok := err.(interface{ Unwrap() error }); ok {
		return GetDomainError(u.Unwrap())
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// InvalidInput 创建 INVALID_INPUT 错误，消息以模块名为前缀。
func InvalidInput(module, format string, args ...any) *DomainError {
	return NewDomainError(module, ErrorCodeInvalidInput, module+": "+fmt.Sprintf(format, args...))
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeEmptyCorpus   = "EMPTY_CORPUS"   // 没有任何物品可构建矩阵
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
)

// 模块名称常量
const (
	ModuleStore      = "store"
	ModuleDataset    = "dataset"
	ModuleSimilarity = "similarity"
	ModuleHybrid     = "hybrid"
	ModulePipeline   = "pipeline"
)

// ErrEmptyCorpus 表示交互日志或商品元数据为空，无法构建相似度矩阵。
var ErrEmptyCorpus = NewDomainError(ModuleSimilarity, ErrorCodeEmptyCorpus, "similarity: empty corpus")

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	return hasCode(err, ErrorCodeNotSupported)
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	return hasCode(err, ErrorCodeInvalidInput)
}

// IsEmptyCorpus 检查错误是否为 EMPTY_CORPUS
func IsEmptyCorpus(err error) bool {
	return hasCode(err, ErrorCodeEmptyCorpus)
}
