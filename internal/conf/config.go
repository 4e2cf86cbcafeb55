package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAssistantName = "Cultura RAG"
	DefaultSystemPrompt  = "Answer only using the uploaded documents. If the answer is not in the documents, say you don't have that information yet."
)

// Config is the aggregated runtime configuration of the gateway and CLI.
// Sources, lowest precedence first: defaults, conf/<env>/conf.yaml, .env, process env.
type Config struct {
	Env       string          `yaml:"-"`
	Server    ServerConfig    `yaml:"server"`
	Registry  RegistryConfig  `yaml:"registry"`
	Store     StoreConfig     `yaml:"store"`
	Assistant AssistantConfig `yaml:"assistant"`
	AI        AIConfig        `yaml:"ai"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	// RawPath records the loaded file path for diagnostics.
	RawPath string `yaml:"-"`
}

type ServerConfig struct {
	Address      string `yaml:"address"`
	LogLevel     string `yaml:"log_level"`
	LogFile      string `yaml:"log_file"`
	PromAddr     string `yaml:"prom_addr"`
	MetricsAddr  string `yaml:"metrics_addr"`
	OtelEndpoint string `yaml:"otel_endpoint"`
}

type RegistryConfig struct {
	RegistryAddress []string `yaml:"registry_address"`
}

type StoreConfig struct {
	// Backend is one of memory (default), postgres, es.
	Backend     string   `yaml:"backend"`
	PostgresDSN string   `yaml:"postgres_dsn"`
	ESAddrs     []string `yaml:"es_addrs"`
	ESIndex     string   `yaml:"es_index"`
	ESUsername  string   `yaml:"es_username"`
	ESPassword  string   `yaml:"es_password"`
}

type AssistantConfig struct {
	// Provider is backboard (default) or openai.
	Provider           string `yaml:"provider"`
	APIKey             string `yaml:"api_key"`
	BaseURL            string `yaml:"base_url"`
	AssistantID        string `yaml:"assistant_id"`
	ThreadID           string `yaml:"thread_id"`
	ChatThreadID       string `yaml:"chat_thread_id"`
	Name               string `yaml:"name"`
	SystemPrompt       string `yaml:"system_prompt"`
	ChatGuardPrompt    string `yaml:"chat_guard_prompt"`
	EmbeddingProvider  string `yaml:"embedding_provider"`
	EmbeddingModelName string `yaml:"embedding_model_name"`
	EmbeddingDims      int    `yaml:"embedding_dims"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
}

type AIConfig struct {
	Provider         string `yaml:"provider"`
	OpenAIKey        string `yaml:"openai_key"`
	OpenAIBaseURL    string `yaml:"openai_base_url"`
	OpenAIChatModel  string `yaml:"openai_chat_model"`
	OpenAIEmbedModel string `yaml:"openai_embed_model"`
	VectorDim        int    `yaml:"vector_dim"`
}

type AuthConfig struct {
	SupabaseURL     string `yaml:"supabase_url"`
	SupabaseAnonKey string `yaml:"supabase_anon_key"`
}

type StorageConfig struct {
	Bucket        string `yaml:"bucket"`
	Endpoint      string `yaml:"endpoint"`
	Region        string `yaml:"region"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	PublicBaseURL string `yaml:"public_base_url"`
	PathStyle     bool   `yaml:"path_style"`
}

var (
	loaded    *Config
	loadOnce  sync.Once
	loadError error
)

// Load returns the process-wide configuration, loading it on first use.
// File lookup:
//  1. explicit CONF_FILE
//  2. conf/<GO_ENV>/conf.yaml (GO_ENV defaults to dev)
//  3. no file: defaults plus environment
func Load() (*Config, error) {
	loadOnce.Do(func() {
		loaded, loadError = loadInternal()
	})
	return loaded, loadError
}

func loadInternal() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()
	cfg := new(Config)
	env := envValue()
	if explicit := os.Getenv("CONF_FILE"); explicit != "" {
		if err := parseFile(explicit, cfg); err != nil {
			return nil, fmt.Errorf("load explicit CONF_FILE failed: %w", err)
		}
		cfg.RawPath = explicit
	} else {
		candidate := filepath.Join("conf", env, "conf.yaml")
		if err := parseFile(candidate, cfg); err == nil {
			cfg.RawPath = candidate
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	cfg.Env = env
	applyEnv(cfg)
	postProcess(cfg)
	return cfg, nil
}

// FromEnv builds a configuration from defaults and environment only.
func FromEnv() *Config {
	cfg := new(Config)
	cfg.Env = envValue()
	applyEnv(cfg)
	postProcess(cfg)
	return cfg
}

func envValue() string {
	if v := os.Getenv("GO_ENV"); v != "" {
		return v
	}
	return "dev"
}

func parseFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, cfg)
}

// applyEnv overlays environment variables. Names follow the deployment
// conventions of the hosted app (BACKBOARD_*, SUPABASE_*, IBM_COS_*).
func applyEnv(c *Config) {
	setStr(&c.Server.Address, "HTTP_ADDR")
	setStr(&c.Server.LogLevel, "LOG_LEVEL")
	setStr(&c.Server.LogFile, "LOG_FILE")
	setStr(&c.Server.PromAddr, "PROM_ADDR")
	setStr(&c.Server.MetricsAddr, "METRICS_ADDR")
	setStr(&c.Server.OtelEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	if v := os.Getenv("CONSUL_ADDR"); v != "" {
		c.Registry.RegistryAddress = splitList(v)
	}

	setStr(&c.Store.Backend, "STORE_BACKEND")
	setStr(&c.Store.PostgresDSN, "DATABASE_URL")
	if v := os.Getenv("ES_ADDRS"); v != "" {
		c.Store.ESAddrs = splitList(v)
	}
	setStr(&c.Store.ESIndex, "ES_INDEX")
	setStr(&c.Store.ESUsername, "ES_USERNAME")
	setStr(&c.Store.ESPassword, "ES_PASSWORD")

	setStr(&c.Assistant.Provider, "ASSISTANT_PROVIDER")
	setStr(&c.Assistant.APIKey, "BACKBOARD_API_KEY")
	setStr(&c.Assistant.BaseURL, "BACKBOARD_BASE_URL")
	setStr(&c.Assistant.AssistantID, "BACKBOARD_ASSISTANT_ID")
	setStr(&c.Assistant.ThreadID, "BACKBOARD_THREAD_ID")
	setStr(&c.Assistant.ChatThreadID, "BACKBOARD_CHAT_THREAD_ID")
	setStr(&c.Assistant.Name, "BACKBOARD_ASSISTANT_NAME")
	setStr(&c.Assistant.SystemPrompt, "BACKBOARD_SYSTEM_PROMPT")
	setStr(&c.Assistant.ChatGuardPrompt, "BACKBOARD_CHAT_GUARD_PROMPT")
	setStr(&c.Assistant.EmbeddingProvider, "BACKBOARD_EMBEDDING_PROVIDER")
	setStr(&c.Assistant.EmbeddingModelName, "BACKBOARD_EMBEDDING_MODEL_NAME")
	setInt(&c.Assistant.EmbeddingDims, "BACKBOARD_EMBEDDING_DIMS")
	setInt(&c.Assistant.TimeoutSeconds, "BACKBOARD_TIMEOUT_SECONDS")

	setStr(&c.AI.Provider, "AI_PROVIDER")
	setStr(&c.AI.OpenAIKey, "OPENAI_API_KEY")
	setStr(&c.AI.OpenAIBaseURL, "OPENAI_BASE_URL")
	setStr(&c.AI.OpenAIChatModel, "OPENAI_CHAT_MODEL")
	setStr(&c.AI.OpenAIEmbedModel, "OPENAI_EMBED_MODEL")
	setInt(&c.AI.VectorDim, "VECTOR_DIM")

	setStr(&c.Auth.SupabaseURL, "SUPABASE_URL")
	setStr(&c.Auth.SupabaseAnonKey, "SUPABASE_ANON_KEY")

	setStr(&c.Storage.Bucket, "IBM_COS_BUCKET")
	setStr(&c.Storage.Endpoint, "IBM_COS_ENDPOINT")
	setStr(&c.Storage.Region, "IBM_COS_REGION")
	setStr(&c.Storage.AccessKey, "IBM_COS_ACCESS_KEY_ID")
	setStr(&c.Storage.SecretKey, "IBM_COS_SECRET_ACCESS_KEY")
	setStr(&c.Storage.PublicBaseURL, "IBM_COS_PUBLIC_BASE_URL")
	if v := os.Getenv("IBM_COS_PATH_STYLE"); v != "" {
		c.Storage.PathStyle = strings.EqualFold(v, "true") || v == "1"
	}
}

// postProcess applies defaults for anything still unset.
func postProcess(c *Config) {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "memory"
	}
	if c.Store.ESIndex == "" {
		c.Store.ESIndex = "cultura_organizations"
	}
	if c.Assistant.Provider == "" {
		c.Assistant.Provider = "backboard"
	}
	c.Assistant.BaseURL = strings.TrimRight(c.Assistant.BaseURL, "/")
	if c.Assistant.Name == "" {
		c.Assistant.Name = DefaultAssistantName
	}
	if c.Assistant.SystemPrompt == "" {
		c.Assistant.SystemPrompt = DefaultSystemPrompt
	}
	if c.Assistant.ChatGuardPrompt == "" {
		c.Assistant.ChatGuardPrompt = c.Assistant.SystemPrompt
	}
	if c.Assistant.TimeoutSeconds <= 0 {
		c.Assistant.TimeoutSeconds = 30
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "mock"
	}
	if c.AI.VectorDim <= 0 {
		c.AI.VectorDim = 256
	}
	if c.Storage.Region == "" {
		c.Storage.Region = "us-south"
	}
	c.Storage.PublicBaseURL = strings.TrimRight(c.Storage.PublicBaseURL, "/")
}

// ESAddressesOrDefault returns configured ES addresses or a local default.
func (c *Config) ESAddressesOrDefault() []string {
	if len(c.Store.ESAddrs) > 0 {
		return c.Store.ESAddrs
	}
	return []string{"http://localhost:9200"}
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
