package router

import (
	"context"
	"io"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"go.uber.org/zap"

	"github.com/gogogo1024/cultura/internal/auth"
	"github.com/gogogo1024/cultura/internal/catalog"
	"github.com/gogogo1024/cultura/internal/common"
	"github.com/gogogo1024/cultura/internal/objectstore"
	gwerrors "github.com/gogogo1024/cultura/services/gateway/internal/errors"
)

// ObjectStore stores public blobs. *objectstore.Store implements it.
type ObjectStore interface {
	Enabled() bool
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// ThreadUploader forwards files to the assistant's search thread.
// *assistant.Gateway implements it.
type ThreadUploader interface {
	UploadThreadDocument(ctx context.Context, filename string, r io.Reader) error
}

// RegisterUploads registers image/file uploads to the object store.
func RegisterUploads(h *server.Hertz, store ObjectStore, repo catalog.Repo, resolver auth.Resolver) {
	h.POST(PathUploads, func(c context.Context, ctx *app.RequestContext) {
		if store == nil || !store.Enabled() {
			gwerrors.MapServiceError(c, ctx, objectstore.ErrNotConfigured)
			return
		}
		user, ok := requireUser(c, ctx, resolver)
		if !ok {
			return
		}
		fh, err := ctx.FormFile("file")
		if err != nil {
			gwerrors.HTTPError(c, ctx, http.StatusBadRequest, common.ErrCodeBadRequest, gwerrors.MsgFileRequired)
			return
		}
		kind := ctx.PostForm("type")
		if kind == "" {
			kind = "misc"
		}
		scope := user.ID
		if kind == "org" && repo != nil {
			if org, err := repo.GetOrganizationByOwner(c, user.ID); err == nil && org != nil && org.ID != "" {
				scope = org.ID
			}
		}
		f, err := fh.Open()
		if err != nil {
			gwerrors.HTTPError(c, ctx, http.StatusBadRequest, common.ErrCodeBadRequest, gwerrors.MsgFileRequired)
			return
		}
		defer f.Close()
		url, err := store.Put(c, objectstore.Key(kind, scope, fh.Filename), f, fh.Header.Get("Content-Type"))
		if err != nil {
			common.L().Warn("object upload failed", zap.Error(err))
			gwerrors.HTTPError(c, ctx, http.StatusBadGateway, common.ErrCodeStorage, gwerrors.MsgUploadFailed)
			return
		}
		ctx.JSON(http.StatusOK, map[string]any{"url": url})
	})
}

// RegisterAssistantUpload forwards a document to the assistant.
func RegisterAssistantUpload(h *server.Hertz, up ThreadUploader) {
	h.POST(PathAssistantUpload, func(c context.Context, ctx *app.RequestContext) {
		fh, err := ctx.FormFile("file")
		if err != nil {
			gwerrors.HTTPError(c, ctx, http.StatusBadRequest, common.ErrCodeBadRequest, gwerrors.MsgFileRequired)
			return
		}
		f, err := fh.Open()
		if err != nil {
			gwerrors.HTTPError(c, ctx, http.StatusBadRequest, common.ErrCodeBadRequest, gwerrors.MsgFileRequired)
			return
		}
		defer f.Close()
		if up == nil {
			gwerrors.HTTPError(c, ctx, http.StatusBadGateway, common.ErrCodeUpstream, gwerrors.MsgUploadFailed)
			return
		}
		if err := up.UploadThreadDocument(c, fh.Filename, f); err != nil {
			gwerrors.HTTPErrorDetail(c, ctx, http.StatusBadGateway, common.ErrCodeUpstream, gwerrors.MsgUploadFailed, err.Error())
			return
		}
		ctx.JSON(http.StatusOK, map[string]any{"ok": true})
	})
}
