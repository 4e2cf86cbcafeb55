package conf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("BACKBOARD_SYSTEM_PROMPT", "")
	t.Setenv("BACKBOARD_CHAT_GUARD_PROMPT", "")
	t.Setenv("BACKBOARD_ASSISTANT_NAME", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("HTTP_ADDR", "")
	cfg := FromEnv()
	if cfg.Server.Address != ":8080" || cfg.Store.Backend != "memory" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Assistant.Name != DefaultAssistantName || cfg.Assistant.SystemPrompt != DefaultSystemPrompt {
		t.Fatalf("assistant defaults %+v", cfg.Assistant)
	}
	if cfg.Assistant.ChatGuardPrompt != DefaultSystemPrompt {
		t.Fatalf("guard prompt should default to system prompt, got %q", cfg.Assistant.ChatGuardPrompt)
	}
}

func TestBackboardEnvOverrides(t *testing.T) {
	t.Setenv("BACKBOARD_API_KEY", "k")
	t.Setenv("BACKBOARD_BASE_URL", "https://bb.example/api/")
	t.Setenv("BACKBOARD_EMBEDDING_DIMS", "1536")
	t.Setenv("BACKBOARD_CHAT_GUARD_PROMPT", "be nice")
	t.Setenv("ES_ADDRS", "http://a:9200, ,http://b:9200")
	cfg := FromEnv()
	if cfg.Assistant.BaseURL != "https://bb.example/api" {
		t.Fatalf("trailing slash not trimmed: %q", cfg.Assistant.BaseURL)
	}
	if cfg.Assistant.EmbeddingDims != 1536 || cfg.Assistant.ChatGuardPrompt != "be nice" {
		t.Fatalf("overrides not applied %+v", cfg.Assistant)
	}
	if len(cfg.Store.ESAddrs) != 2 {
		t.Fatalf("es addrs %v", cfg.Store.ESAddrs)
	}
}

func TestParseFileThenEnvWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.yaml")
	body := "server:\n  address: \":9000\"\nstore:\n  backend: es\nassistant:\n  name: From File\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := new(Config)
	if err := parseFile(path, cfg); err != nil {
		t.Fatalf("parse: %v", err)
	}
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("BACKBOARD_ASSISTANT_NAME", "")
	applyEnv(cfg)
	postProcess(cfg)
	if cfg.Server.Address != ":9000" || cfg.Store.Backend != "postgres" || cfg.Assistant.Name != "From File" {
		t.Fatalf("unexpected merge %+v", cfg)
	}
}
