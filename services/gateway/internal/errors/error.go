package errors

import (
	"context"
	"errors"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/gogogo1024/cultura/internal/auth"
	"github.com/gogogo1024/cultura/internal/common"
	"github.com/gogogo1024/cultura/internal/discovery"
	"github.com/gogogo1024/cultura/internal/objectstore"
)

// User-facing messages.
const (
	MsgMessageRequired     = "Message is required."
	MsgTitleRequired       = "Title is required."
	MsgNameRequired        = "Name is required."
	MsgUsernameRequired    = "Username is required."
	MsgFileRequired        = "File is required."
	MsgInvalidBody         = "Invalid request body."
	MsgAssistantUnreached  = "Unable to reach assistant."
	MsgOrgNotFound         = "Organization profile not found."
	MsgMissingHeader       = "Missing authorization header."
	MsgMissingToken        = "Missing access token."
	MsgInvalidSession      = "Unable to load user session."
	MsgStorageUnconfigured = "Cloud storage not configured."
	MsgUploadFailed        = "Upload failed."
	MsgInternal            = "Internal server error."
)

// HTTPError writes the unified error body.
func HTTPError(c context.Context, ctx *app.RequestContext, status int, code, msg string) {
	common.WriteError(c, ctx, status, code, msg)
}

// HTTPErrorDetail is HTTPError with a detail string.
func HTTPErrorDetail(c context.Context, ctx *app.RequestContext, status int, code, msg, detail string) {
	common.WriteErrorDetail(c, ctx, status, code, msg, detail)
}

// MapServiceError writes the response for an error returned by the domain
// packages. It reports false when err is nil.
func MapServiceError(c context.Context, ctx *app.RequestContext, err error) bool {
	if err == nil {
		return false
	}
	var (
		upstream *discovery.UpstreamError
		store    *discovery.StoreError
	)
	switch {
	case errors.Is(err, discovery.ErrMessageRequired):
		HTTPError(c, ctx, http.StatusBadRequest, common.ErrCodeBadRequest, MsgMessageRequired)
	case errors.Is(err, discovery.ErrTitleRequired):
		HTTPError(c, ctx, http.StatusBadRequest, common.ErrCodeBadRequest, MsgTitleRequired)
	case errors.Is(err, discovery.ErrOrganizationNotFound):
		HTTPError(c, ctx, http.StatusNotFound, common.ErrCodeNotFound, MsgOrgNotFound)
	case errors.As(err, &upstream):
		HTTPErrorDetail(c, ctx, http.StatusBadGateway, common.ErrCodeUpstream, MsgAssistantUnreached, upstream.Detail)
	case errors.As(err, &store):
		HTTPError(c, ctx, http.StatusBadRequest, common.ErrCodeStore, store.Error())
	case errors.Is(err, auth.ErrMissingHeader):
		HTTPError(c, ctx, http.StatusUnauthorized, common.ErrCodeUnauthorized, MsgMissingHeader)
	case errors.Is(err, auth.ErrMissingToken):
		HTTPError(c, ctx, http.StatusUnauthorized, common.ErrCodeUnauthorized, MsgMissingToken)
	case errors.Is(err, auth.ErrInvalidSession):
		HTTPError(c, ctx, http.StatusUnauthorized, common.ErrCodeUnauthorized, MsgInvalidSession)
	case errors.Is(err, objectstore.ErrNotConfigured):
		HTTPError(c, ctx, http.StatusInternalServerError, common.ErrCodeStorage, MsgStorageUnconfigured)
	default:
		HTTPError(c, ctx, http.StatusInternalServerError, common.ErrCodeInternal, MsgInternal)
	}
	return true
}
