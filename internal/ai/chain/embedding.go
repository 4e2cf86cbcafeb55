package chain

import (
	"context"
	"errors"
	"time"

	openaiembed "github.com/cloudwego/eino-ext/components/embedding/openai"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	baseai "github.com/gogogo1024/cultura/internal/ai"
	"github.com/gogogo1024/cultura/internal/common"
	"github.com/gogogo1024/cultura/internal/observability"
)

var errNoTexts = errors.New("embed: no texts")

// Embedder turns event texts into fixed size vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	Dim() int
	Provider() string
}

// NewEmbedder returns the OpenAI embedder when a key is configured and the
// hashing embedder otherwise. A non-positive Dim yields nil.
func NewEmbedder(cfg Config) Embedder {
	if cfg.Dim <= 0 {
		return nil
	}
	if cfg.openAI() {
		e, err := newOpenAIEmbedder(cfg)
		if err == nil {
			return e
		}
		common.L().Warn("openai embedder unavailable, using hash embeddings", zap.Error(err))
	}
	return hashEmbedder{dim: cfg.Dim}
}

// hashEmbedder is the offline bag-of-words embedder.
type hashEmbedder struct{ dim int }

func (h hashEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, errNoTexts
	}
	observability.AIEmbeddingCalls.Add(1)
	return baseai.MockEmbeddings(texts, h.dim), nil
}

func (h hashEmbedder) Dim() int         { return h.dim }
func (h hashEmbedder) Provider() string { return ProviderHash }

type openAIEmbedder struct {
	emb   *openaiembed.Embedder
	dim   int
	model string
}

func newOpenAIEmbedder(cfg Config) (*openAIEmbedder, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	dim := cfg.Dim
	emb, err := openaiembed.NewEmbedder(ctx, &openaiembed.EmbeddingConfig{
		APIKey:     cfg.APIKey,
		Model:      cfg.EmbedModel,
		BaseURL:    cfg.BaseURL,
		Timeout:    15 * time.Second,
		Dimensions: &dim,
	})
	if err != nil {
		return nil, err
	}
	return &openAIEmbedder{emb: emb, dim: dim, model: cfg.EmbedModel}, nil
}

func (o *openAIEmbedder) Embed(ctx context.Context, texts []string) (vecs [][]float64, err error) {
	if len(texts) == 0 {
		return nil, errNoTexts
	}
	ctx, span := observability.Tracer().Start(ctx, "openai.embed")
	span.SetAttributes(attribute.String("model", o.model), attribute.Int("texts", len(texts)))
	defer span.End()
	start := time.Now()
	defer func() { observability.ObserveUpstream("openai-embed", start, err) }()
	observability.AIEmbeddingCalls.Add(1)
	vecs, err = o.emb.EmbedStrings(ctx, texts)
	if err != nil {
		span.RecordError(err)
	}
	return vecs, err
}

func (o *openAIEmbedder) Dim() int         { return o.dim }
func (o *openAIEmbedder) Provider() string { return ProviderOpenAI }
