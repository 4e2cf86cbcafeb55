package chain

import (
	"context"
	"os"
	"testing"
	"time"
)

// Live checks run only with OPENAI_API_KEY; transport errors skip.

func liveConfig(t *testing.T) Config {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		t.Skip("OPENAI_API_KEY not set; skipping live OpenAI tests")
	}
	cfg := Config{Provider: ProviderOpenAI, APIKey: key, BaseURL: os.Getenv("OPENAI_BASE_URL"), Dim: 64}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.ChatModel, cfg.EmbedModel = defaultChatModel, defaultEmbedModel
	return cfg
}

func TestOpenAILiveEmbedding(t *testing.T) {
	cfg := liveConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	e := NewEmbedder(cfg)
	if e.Provider() != ProviderOpenAI {
		t.Skip("embedder construction fell back to hash")
	}
	vecs, err := e.Embed(ctx, []string{"community jazz workshop"})
	if err != nil {
		t.Skipf("skip due to live embedding error: %v", err)
	}
	if len(vecs) != 1 || len(vecs[0]) != 64 {
		t.Fatalf("unexpected embedding shape: %d", len(vecs))
	}
}

func TestOpenAILiveCompletion(t *testing.T) {
	cfg := liveConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()
	c, err := NewCompleter(cfg)
	if err != nil {
		t.Skipf("completer: %v", err)
	}
	reply, err := c.Complete(ctx, "Answer in one word.", "Say 'pong'")
	if err != nil {
		t.Skipf("skip due to live chat error: %v", err)
	}
	if reply == "" {
		t.Fatalf("empty reply")
	}
}
