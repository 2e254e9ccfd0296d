package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const runIDKey contextKey = "run_id"

// NewRunID 生成一次批处理运行的 ID（uuid 前 8 位，便于阅读）。
func NewRunID() string {
	return uuid.New().String()[:8]
}

// ContextWithRunID 把 run id 放入 context。
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// ContextWithNewRunID 生成新的 run id 并放入 context。
func ContextWithNewRunID(ctx context.Context) context.Context {
	return ContextWithRunID(ctx, NewRunID())
}

// RunIDFromContext 取出 run id，不存在时返回空串。
func RunIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx 返回带 run_id 字段（如果有）的 logger。
//
//	logging.Ctx(ctx).Info().Msg("building matrices")
func Ctx(ctx context.Context) *zerolog.Logger {
	l := Logger()
	if id := RunIDFromContext(ctx); id != "" {
		l = l.With().Str("run_id", id).Logger()
	}
	return &l
}

// CtxComponent 返回同时带 run_id（如果有）与 component 字段的 logger。
func CtxComponent(ctx context.Context, component string) zerolog.Logger {
	return Ctx(ctx).With().Str("component", component).Logger()
}
