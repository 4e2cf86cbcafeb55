package router

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"

	"github.com/gogogo1024/cultura/internal/auth"
	"github.com/gogogo1024/cultura/internal/discovery"
	gwerrors "github.com/gogogo1024/cultura/services/gateway/internal/errors"
)

// RegisterEvents registers the events feed and event creation.
func RegisterEvents(h *server.Hertz, svc *discovery.Service, resolver auth.Resolver) {
	h.GET(PathEvents, func(c context.Context, ctx *app.RequestContext) {
		viewer := optionalUserID(c, ctx, resolver)
		items, err := svc.Events(c, viewer, ctx.Query("q"))
		if gwerrors.MapServiceError(c, ctx, err) {
			return
		}
		ctx.JSON(http.StatusOK, map[string]any{"events": items})
	})
	h.POST(PathEvents, func(c context.Context, ctx *app.RequestContext) {
		user, ok := requireUser(c, ctx, resolver)
		if !ok {
			return
		}
		ev, err := svc.CreateEvent(c, user.ID, discovery.EventInput{
			Title:       bodyString(ctx, "title"),
			Description: bodyString(ctx, "description"),
			Date:        bodyString(ctx, "date"),
			Tags:        bodyTags(ctx, "tags"),
		})
		if gwerrors.MapServiceError(c, ctx, err) {
			return
		}
		ctx.JSON(http.StatusOK, map[string]any{"ok": true, "event": ev})
	})
}
