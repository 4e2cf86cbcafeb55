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
	"github.com/gogogo1024/cultura/internal/observability"
	gwerrors "github.com/gogogo1024/cultura/services/gateway/internal/errors"
)

type orgView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func toOrgView(o *catalog.Organization) orgView {
	v := orgView{ID: o.ID, Name: o.Name, Description: o.Description, Tags: o.Tags}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	return v
}

// RegisterOrganizations registers the owner's organization profile and the
// public directory.
func RegisterOrganizations(h *server.Hertz, repo catalog.Repo, resolver auth.Resolver) {
	h.GET(PathOrganizations, func(c context.Context, ctx *app.RequestContext) {
		user, ok := requireUser(c, ctx, resolver)
		if !ok {
			return
		}
		org, err := repo.GetOrganizationByOwner(c, user.ID)
		if err != nil {
			gwerrors.MapServiceError(c, ctx, &discovery.StoreError{Err: err})
			return
		}
		if org == nil {
			ctx.JSON(http.StatusOK, map[string]any{"organization": nil})
			return
		}
		ctx.JSON(http.StatusOK, map[string]any{"organization": toOrgView(org)})
	})

	h.POST(PathOrganizations, func(c context.Context, ctx *app.RequestContext) {
		user, ok := requireUser(c, ctx, resolver)
		if !ok {
			return
		}
		name := bodyTrimmed(ctx, "name")
		if name == "" {
			gwerrors.HTTPError(c, ctx, http.StatusBadRequest, common.ErrCodeBadRequest, gwerrors.MsgNameRequired)
			return
		}
		org, err := repo.GetOrganizationByOwner(c, user.ID)
		if err != nil {
			gwerrors.MapServiceError(c, ctx, &discovery.StoreError{Err: err})
			return
		}
		if org == nil {
			org = &catalog.Organization{
				OwnerID: user.ID,
				Slug:    catalog.OwnerSlug(name, user.ID),
				Events:  []catalog.Event{},
			}
		}
		org.Name = name
		org.Description = bodyTrimmed(ctx, "description")
		org.Tags = bodyTags(ctx, "tags")
		if err := repo.SaveOrganization(c, org); err != nil {
			gwerrors.MapServiceError(c, ctx, &discovery.StoreError{Err: err})
			return
		}
		observability.OrganizationsSaved.Add(1)
		ctx.JSON(http.StatusOK, map[string]any{"ok": true, "id": org.ID})
	})

	h.GET(PathOrganizationsList, func(c context.Context, ctx *app.RequestContext) {
		orgs, err := repo.ListOrganizations(c, catalog.Filter{})
		if err != nil {
			gwerrors.MapServiceError(c, ctx, &discovery.StoreError{Err: err})
			return
		}
		out := make([]orgView, 0, len(orgs))
		for _, o := range orgs {
			v := toOrgView(o)
			if v.Name == "" {
				v.Name = "Organization"
			}
			out = append(out, v)
		}
		ctx.JSON(http.StatusOK, map[string]any{"organizations": out})
	})
}
