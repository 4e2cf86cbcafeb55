package gateway

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gogogo1024/cultura/internal/ai/chain"
	"github.com/gogogo1024/cultura/internal/assistant"
	"github.com/gogogo1024/cultura/internal/catalog"
	"github.com/gogogo1024/cultura/internal/catalog/esrepo"
	"github.com/gogogo1024/cultura/internal/catalog/pgrepo"
	"github.com/gogogo1024/cultura/internal/common"
	"github.com/gogogo1024/cultura/internal/conf"
	"github.com/gogogo1024/cultura/internal/discovery"
)

// Backend names accepted by store.backend.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendES       = "es"
)

// Components are the domain services shared by the HTTP gateway and the CLI.
type Components struct {
	Backend   string
	Catalog   catalog.Repo
	Assistant *assistant.Gateway
	Discovery *discovery.Service
	close     func()
}

// Close releases the catalog connection.
func (c *Components) Close() {
	if c != nil && c.close != nil {
		c.close()
	}
}

// BackendName normalizes store.backend.
func BackendName(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", BackendMemory:
		return BackendMemory, nil
	case BackendPostgres, "pg":
		return BackendPostgres, nil
	case BackendES, "elasticsearch":
		return BackendES, nil
	default:
		return "", fmt.Errorf("unknown store backend %q", raw)
	}
}

// OpenCatalog opens the store selected by store.backend.
func OpenCatalog(ctx context.Context, cfg *conf.Config) (catalog.Repo, func(), error) {
	noop := func() {}
	backend, err := BackendName(cfg.Store.Backend)
	if err != nil {
		return nil, noop, err
	}
	switch backend {
	case BackendPostgres:
		r, err := pgrepo.New(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return nil, noop, fmt.Errorf("postgres catalog: %w", err)
		}
		return r, func() { _ = r.Close() }, nil
	case BackendES:
		r, err := esrepo.New(esrepo.Config{
			Addresses: cfg.ESAddressesOrDefault(),
			Index:     cfg.Store.ESIndex,
			Username:  cfg.Store.ESUsername,
			Password:  cfg.Store.ESPassword,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("es catalog: %w", err)
		}
		return r, noop, nil
	default:
		return catalog.NewMemoryRepo(), noop, nil
	}
}

// NewServices builds the assistant gateway and the discovery service over repo.
// assistant.provider=openai answers chat through the LLM chain while search
// and publishing stay on the remote assistant.
func NewServices(cfg *conf.Config, repo catalog.Repo) (*discovery.Service, *assistant.Gateway, error) {
	gw, err := assistant.New(assistant.ConfigFrom(cfg.Assistant))
	if err != nil {
		return nil, nil, err
	}
	aiCfg := chain.ConfigFrom(cfg.AI)
	var chatter discovery.Chatter = gw
	if strings.EqualFold(cfg.Assistant.Provider, chain.ProviderOpenAI) {
		llm, err := chain.NewCompleter(aiCfg)
		if err != nil {
			common.L().Warn("openai chat unavailable", zap.Error(err))
		}
		chatter = assistant.NewChainChatter(llm, cfg.Assistant.ChatGuardPrompt)
	}
	emb := chain.NewEmbedder(aiCfg)
	svc := discovery.New(discovery.Deps{
		Repo:      repo,
		Chat:      chatter,
		Search:    gw,
		Publisher: gw,
		Index:     discovery.NewVectorIndex(emb),
	})
	common.L().Info("assistant configured",
		zap.Bool("backboard", gw.Enabled()),
		zap.String("chat_provider", cfg.Assistant.Provider),
		zap.Bool("vector_index", emb != nil),
	)
	return svc, gw, nil
}

// Open wires the catalog and the domain services from configuration.
func Open(ctx context.Context, cfg *conf.Config) (*Components, error) {
	backend, err := BackendName(cfg.Store.Backend)
	if err != nil {
		return nil, err
	}
	repo, closeRepo, err := OpenCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc, gw, err := NewServices(cfg, repo)
	if err != nil {
		closeRepo()
		return nil, err
	}
	return &Components{Backend: backend, Catalog: repo, Assistant: gw, Discovery: svc, close: closeRepo}, nil
}
