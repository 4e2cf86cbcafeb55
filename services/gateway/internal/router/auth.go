package router

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"github.com/gogogo1024/cultura/internal/auth"
	"github.com/gogogo1024/cultura/internal/common"
	gwerrors "github.com/gogogo1024/cultura/services/gateway/internal/errors"
)

// requireUser resolves the bearer token or writes a 401 and reports false.
func requireUser(c context.Context, ctx *app.RequestContext, r auth.Resolver) (*auth.User, bool) {
	tok, err := auth.BearerToken(string(ctx.GetHeader("Authorization")))
	if err != nil {
		gwerrors.MapServiceError(c, ctx, err)
		return nil, false
	}
	if r == nil {
		gwerrors.MapServiceError(c, ctx, auth.ErrInvalidSession)
		return nil, false
	}
	u, err := r.Resolve(c, tok)
	if err != nil || u == nil {
		common.L().Debug("session lookup failed", zap.Error(err))
		gwerrors.MapServiceError(c, ctx, auth.ErrInvalidSession)
		return nil, false
	}
	return u, true
}

// optionalUserID returns the viewer id when a valid token is present.
func optionalUserID(c context.Context, ctx *app.RequestContext, r auth.Resolver) string {
	if r == nil {
		return ""
	}
	tok, err := auth.BearerToken(string(ctx.GetHeader("Authorization")))
	if err != nil {
		return ""
	}
	u, err := r.Resolve(c, tok)
	if err != nil || u == nil {
		return ""
	}
	return u.ID
}
