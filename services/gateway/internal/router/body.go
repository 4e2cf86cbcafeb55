package router

import (
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/tidwall/gjson"
)

// Request bodies are probed leniently: a field of the wrong JSON type reads
// as empty instead of failing the whole request.

func bodyString(ctx *app.RequestContext, field string) string {
	v := gjson.GetBytes(ctx.Request.Body(), field)
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}

func bodyTrimmed(ctx *app.RequestContext, field string) string {
	return strings.TrimSpace(bodyString(ctx, field))
}

// bodyTags keeps the string entries of an array field.
func bodyTags(ctx *app.RequestContext, field string) []string {
	out := []string{}
	v := gjson.GetBytes(ctx.Request.Body(), field)
	if !v.IsArray() {
		return out
	}
	for _, it := range v.Array() {
		if it.Type == gjson.String {
			out = append(out, it.Str)
		}
	}
	return out
}
