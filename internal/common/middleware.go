package common

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Middlewares returns the standard middleware chain (recovery, request id, access log, project headers).
func Middlewares() []app.HandlerFunc {
	return []app.HandlerFunc{
		recoveryMiddleware(),
		requestIDMiddleware(),
		accessLogMiddleware(),
		projectHeadersMiddleware(),
	}
}

func recoveryMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		defer func() {
			if r := recover(); r != nil {
				L().Error("panic recovered", zap.Any("err", r), zap.ByteString("path", ctx.Path()))
				ctx.Abort()
				WriteError(c, ctx, 500, ErrCodeInternal, "internal server error")
			}
		}()
		ctx.Next(c)
	}
}

func requestIDMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		id := string(ctx.GetHeader("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set(RequestIDKey, id)
		ctx.Response.Header.Set("X-Request-ID", id)
		ctx.Next(c)
	}
}

func accessLogMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)
		L().Info("access",
			zap.String("method", string(ctx.Method())),
			zap.String("path", string(ctx.Path())),
			zap.Int("status", ctx.Response.StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", ctx.GetString(RequestIDKey)),
		)
	}
}

func projectHeadersMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		ctx.Response.Header.Set("X-Cultura-Project", ProjectName)
		ctx.Response.Header.Set("X-Cultura-Version", ProjectVersion)
		ctx.Next(c)
	}
}
