package chain

import (
	"strings"

	"github.com/gogogo1024/cultura/internal/conf"
)

const (
	ProviderHash   = "mock"
	ProviderOpenAI = "openai"

	defaultEmbedModel = "text-embedding-3-small"
	defaultChatModel  = "gpt-4o-mini"
	defaultBaseURL    = "https://api.openai.com/v1"
)

// Config selects the embedding and completion providers.
type Config struct {
	Provider   string
	APIKey     string
	BaseURL    string
	ChatModel  string
	EmbedModel string
	// Dim is the vector size of the local event index; zero disables it.
	Dim int
}

// ConfigFrom maps the loaded runtime config, filling model defaults.
func ConfigFrom(c conf.AIConfig) Config {
	cfg := Config{
		Provider:   strings.ToLower(strings.TrimSpace(c.Provider)),
		APIKey:     strings.TrimSpace(c.OpenAIKey),
		BaseURL:    strings.TrimRight(c.OpenAIBaseURL, "/"),
		ChatModel:  c.OpenAIChatModel,
		EmbedModel: c.OpenAIEmbedModel,
		Dim:        c.VectorDim,
	}
	if cfg.Provider == "" {
		cfg.Provider = ProviderHash
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = defaultEmbedModel
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = defaultChatModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return cfg
}

func (c Config) openAI() bool { return c.Provider == ProviderOpenAI && c.APIKey != "" }
