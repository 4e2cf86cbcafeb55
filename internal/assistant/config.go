package assistant

import (
	"time"

	"github.com/gogogo1024/cultura/internal/conf"
)

// Config describes the remote assistant backend.
type Config struct {
	APIKey  string
	BaseURL string
	// Static ids skip creation when set.
	AssistantID  string
	ThreadID     string
	ChatThreadID string

	Name            string
	SystemPrompt    string
	ChatGuardPrompt string

	EmbeddingProvider  string
	EmbeddingModelName string
	EmbeddingDims      int

	Timeout time.Duration
}

// ConfigFrom maps the loaded runtime configuration.
func ConfigFrom(c conf.AssistantConfig) Config {
	return Config{
		APIKey:             c.APIKey,
		BaseURL:            c.BaseURL,
		AssistantID:        c.AssistantID,
		ThreadID:           c.ThreadID,
		ChatThreadID:       c.ChatThreadID,
		Name:               c.Name,
		SystemPrompt:       c.SystemPrompt,
		ChatGuardPrompt:    c.ChatGuardPrompt,
		EmbeddingProvider:  c.EmbeddingProvider,
		EmbeddingModelName: c.EmbeddingModelName,
		EmbeddingDims:      c.EmbeddingDims,
		Timeout:            time.Duration(c.TimeoutSeconds) * time.Second,
	}
}

// Enabled reports whether both credentials and endpoint are present.
func (c Config) Enabled() bool {
	return c.APIKey != "" && c.BaseURL != ""
}

func (c Config) assistantPayload() map[string]any {
	p := map[string]any{
		"name":          c.Name,
		"system_prompt": c.SystemPrompt,
	}
	if c.EmbeddingProvider != "" {
		p["embedding_provider"] = c.EmbeddingProvider
	}
	if c.EmbeddingModelName != "" {
		p["embedding_model_name"] = c.EmbeddingModelName
	}
	if c.EmbeddingDims > 0 {
		p["embedding_dims"] = c.EmbeddingDims
	}
	return p
}
