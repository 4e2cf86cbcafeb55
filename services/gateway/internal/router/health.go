package router

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
)

// RegisterHealth registers /health and /ready. ping checks the catalog store;
// backend only labels the response.
func RegisterHealth(h *server.Hertz, ping func(ctx context.Context) error, backend string) {
	if backend == "" {
		backend = "memory"
	}
	h.GET(PathHealth, func(c context.Context, ctx *app.RequestContext) { ctx.JSON(200, map[string]any{"status": "ok"}) })
	h.GET(PathReady, func(c context.Context, ctx *app.RequestContext) {
		if ping != nil {
			pingCtx, cancel := context.WithTimeout(c, 400*time.Millisecond)
			defer cancel()
			if err := ping(pingCtx); err != nil {
				ctx.JSON(503, map[string]any{"status": "degraded", "backend": backend, "store": "ping-failed", "error": err.Error()})
				return
			}
		}
		ctx.JSON(200, map[string]any{"status": "ready", "backend": backend})
	})
}
