package router

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"

	"github.com/gogogo1024/cultura/internal/auth"
	"github.com/gogogo1024/cultura/internal/catalog"
	"github.com/gogogo1024/cultura/internal/common"
	"github.com/gogogo1024/cultura/internal/discovery"
	gwerrors "github.com/gogogo1024/cultura/services/gateway/internal/errors"
)

func RegisterIndividuals(h *server.Hertz, repo catalog.Repo, resolver auth.Resolver) {
	h.GET(PathIndividuals, func(c context.Context, ctx *app.RequestContext) {
		user, ok := requireUser(c, ctx, resolver)
		if !ok {
			return
		}
		p, err := repo.GetProfile(c, user.ID)
		if err != nil {
			gwerrors.MapServiceError(c, ctx, &discovery.StoreError{Err: err})
			return
		}
		if p == nil {
			ctx.JSON(http.StatusOK, map[string]any{"profile": nil})
			return
		}
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		ctx.JSON(http.StatusOK, map[string]any{"profile": map[string]any{"username": p.Username, "tags": tags}})
	})

	h.POST(PathIndividuals, func(c context.Context, ctx *app.RequestContext) {
		user, ok := requireUser(c, ctx, resolver)
		if !ok {
			return
		}
		username := bodyTrimmed(ctx, "username")
		if username == "" {
			gwerrors.HTTPError(c, ctx, http.StatusBadRequest, common.ErrCodeBadRequest, gwerrors.MsgUsernameRequired)
			return
		}
		p := &catalog.Profile{UserID: user.ID, Username: username, Tags: bodyTags(ctx, "tags")}
		if err := repo.SaveProfile(c, p); err != nil {
			gwerrors.MapServiceError(c, ctx, &discovery.StoreError{Err: err})
			return
		}
		ctx.JSON(http.StatusOK, map[string]any{"ok": true})
	})
}
