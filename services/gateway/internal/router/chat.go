package router

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"

	"github.com/gogogo1024/cultura/internal/discovery"
	gwerrors "github.com/gogogo1024/cultura/services/gateway/internal/errors"
)

// RegisterChat registers the pure chat and the discover chat endpoints.
// Chat surfaces assistant failures as 502; discover always answers.
func RegisterChat(h *server.Hertz, svc *discovery.Service) {
	h.POST(PathChat, func(c context.Context, ctx *app.RequestContext) {
		reply, err := svc.Chat(c, bodyString(ctx, "message"))
		if gwerrors.MapServiceError(c, ctx, err) {
			return
		}
		ctx.JSON(http.StatusOK, map[string]any{"reply": reply})
	})
	h.POST(PathDiscoverChat, func(c context.Context, ctx *app.RequestContext) {
		out, err := svc.Discover(c, bodyString(ctx, "message"))
		if gwerrors.MapServiceError(c, ctx, err) {
			return
		}
		ctx.JSON(http.StatusOK, out)
	})
}
