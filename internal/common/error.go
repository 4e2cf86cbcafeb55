package common

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	kerrors "github.com/cloudwego/kitex/pkg/kerrors"
)

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeNotFound     = "not_found"
	ErrCodeUpstream     = "upstream_unavailable"
	ErrCodeStore        = "store_error"
	ErrCodeStorage      = "storage_error"
	ErrCodeInternal     = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// RequestIDKey for context retrieval.
const RequestIDKey = "request_id"

// BizErrorKey stores the constructed kitex biz error in context for further logging.
const BizErrorKey = "biz_error"

// MapErrorCodeToHTTP maps domain error codes to HTTP status.
func MapErrorCodeToHTTP(code string) int {
	switch code {
	case ErrCodeBadRequest, ErrCodeStore:
		return 400
	case ErrCodeUnauthorized:
		return 401
	case ErrCodeNotFound:
		return 404
	case ErrCodeUpstream, ErrCodeStorage:
		return 502
	default:
		return 500
	}
}

// WriteError writes the unified error body. A zero status is derived from code.
func WriteError(c context.Context, ctx *app.RequestContext, status int, code, msg string) {
	WriteErrorDetail(c, ctx, status, code, msg, "")
}

// WriteErrorDetail is WriteError with an optional detail string.
func WriteErrorDetail(c context.Context, ctx *app.RequestContext, status int, code, msg, detail string) {
	rid := ""
	if v, ok := ctx.Get(RequestIDKey); ok {
		switch vv := v.(type) {
		case string:
			rid = vv
		case []byte:
			rid = string(vv)
		}
	}
	if status == 0 {
		status = MapErrorCodeToHTTP(code)
	}
	ctx.Set(BizErrorKey, kerrors.NewBizStatusError(int32(status), msg))
	ctx.JSON(status, ErrorResponse{Error: msg, Detail: detail, Code: code, RequestID: rid})
}
