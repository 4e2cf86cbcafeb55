package main

import (
	"context"
	"errors"

	"github.com/gogogo1024/cultura/internal/auth"
	"github.com/gogogo1024/cultura/internal/common"
	"github.com/gogogo1024/cultura/internal/conf"
	"github.com/gogogo1024/cultura/internal/gateway"
	"github.com/gogogo1024/cultura/internal/objectstore"
	router "github.com/gogogo1024/cultura/services/gateway/internal/router"
)

// NewDeps wires every route dependency from configuration.
func NewDeps(ctx context.Context, cfg *conf.Config) (router.Deps, func(), error) {
	comp, err := gateway.Open(ctx, cfg)
	if err != nil {
		return router.Deps{}, func() {}, err
	}
	resolver, err := auth.NewFromConfig(cfg.Auth)
	if err != nil {
		comp.Close()
		return router.Deps{}, func() {}, err
	}
	store, err := objectstore.New(ctx, cfg.Storage)
	if err != nil {
		if !errors.Is(err, objectstore.ErrNotConfigured) {
			comp.Close()
			return router.Deps{}, func() {}, err
		}
		common.L().Warn("object storage not configured; uploads disabled")
	}
	return router.Deps{
		Discovery: comp.Discovery,
		Catalog:   comp.Catalog,
		Auth:      resolver,
		Objects:   store,
		Assistant: comp.Assistant,
		Backend:   comp.Backend,
	}, comp.Close, nil
}
