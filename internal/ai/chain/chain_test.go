package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/gogogo1024/cultura/internal/conf"
)

func TestConfigFromDefaults(t *testing.T) {
	cfg := ConfigFrom(conf.AIConfig{Provider: " OpenAI ", OpenAIBaseURL: "https://proxy/v1/", VectorDim: 64})
	if cfg.Provider != ProviderOpenAI || cfg.BaseURL != "https://proxy/v1" || cfg.Dim != 64 {
		t.Fatalf("unexpected %+v", cfg)
	}
	if cfg.ChatModel != defaultChatModel || cfg.EmbedModel != defaultEmbedModel {
		t.Fatalf("model defaults missing %+v", cfg)
	}
	if ConfigFrom(conf.AIConfig{}).Provider != ProviderHash {
		t.Fatalf("empty provider should select hash embeddings")
	}
}

func TestNewEmbedderDisabledWithoutDim(t *testing.T) {
	if NewEmbedder(Config{Provider: ProviderHash}) != nil {
		t.Fatalf("zero dim should disable embeddings")
	}
}

func TestOpenAIWithoutKeyFallsBackToHash(t *testing.T) {
	e := NewEmbedder(Config{Provider: ProviderOpenAI, Dim: 16})
	if e == nil || e.Provider() != ProviderHash || e.Dim() != 16 {
		t.Fatalf("expected hash fallback, got %#v", e)
	}
}

func TestHashEmbedderDeterministic(t *testing.T) {
	e := NewEmbedder(ConfigFrom(conf.AIConfig{VectorDim: 8}))
	v1, err := e.Embed(context.Background(), []string{"salsa night"})
	if err != nil {
		t.Fatalf("embed err: %v", err)
	}
	v2, _ := e.Embed(context.Background(), []string{"salsa night"})
	if len(v1) != 1 || len(v1[0]) != 8 {
		t.Fatalf("unexpected dims")
	}
	for i := range v1[0] {
		if v1[0][i] != v2[0][i] {
			t.Fatalf("non-deterministic component %d", i)
		}
	}
	if _, err := e.Embed(context.Background(), nil); !errors.Is(err, errNoTexts) {
		t.Fatalf("expected errNoTexts, got %v", err)
	}
}

func TestNewCompleterRequiresKey(t *testing.T) {
	for _, cfg := range []Config{{Provider: ProviderHash, APIKey: "k"}, {Provider: ProviderOpenAI}} {
		if _, err := NewCompleter(cfg); !errors.Is(err, ErrNotConfigured) {
			t.Fatalf("%+v: expected ErrNotConfigured, got %v", cfg, err)
		}
	}
}

func TestBuildMessagesSkipsEmptySystem(t *testing.T) {
	msgs := buildMessages("", "hi")
	if len(msgs) != 1 || msgs[0].Role != schema.User {
		t.Fatalf("unexpected %+v", msgs)
	}
	msgs = buildMessages("Only discuss local events.", "hi")
	if len(msgs) != 2 || msgs[0].Role != schema.System || msgs[1].Content != "hi" {
		t.Fatalf("unexpected %+v", msgs)
	}
}
