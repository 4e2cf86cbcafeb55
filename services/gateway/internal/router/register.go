package router

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app/server"

	"github.com/gogogo1024/cultura/internal/auth"
	"github.com/gogogo1024/cultura/internal/catalog"
	"github.com/gogogo1024/cultura/internal/discovery"
)

// Deps aggregates dependencies for route registration.
type Deps struct {
	Discovery *discovery.Service
	Catalog   catalog.Repo
	Auth      auth.Resolver
	Objects   ObjectStore
	Assistant ThreadUploader
	// Backend labels /ready; Ping defaults to Catalog.Ping.
	Backend string
	Ping    func(ctx context.Context) error
}

// RegisterAll wires every route group based on Deps.
func RegisterAll(h *server.Hertz, d Deps) {
	ping := d.Ping
	if ping == nil && d.Catalog != nil {
		ping = d.Catalog.Ping
	}
	RegisterHealth(h, ping, d.Backend)
	RegisterChat(h, d.Discovery)
	RegisterEvents(h, d.Discovery, d.Auth)
	RegisterOrganizations(h, d.Catalog, d.Auth)
	RegisterIndividuals(h, d.Catalog, d.Auth)
	RegisterUploads(h, d.Objects, d.Catalog, d.Auth)
	RegisterAssistantUpload(h, d.Assistant)
}
