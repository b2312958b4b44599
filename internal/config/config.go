package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Retrieval backends.
const (
	BackendQdrant  = "qdrant"
	BackendChromem = "chromem"
)

// Planner providers.
const (
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// TopK is the number of evidence chunks retrieved and rendered per turn.
const TopK = 6

type Config struct {
	Port     int
	LogLevel string
	APIKey   string
	DBPath   string
	// Public hostname used in the startup log line.
	ExternalHostname string

	// Embedding
	OllamaBaseURL  string
	EmbeddingModel string
	EmbeddingDim   int

	// Retrieval
	RetrievalBackend string
	QdrantURL        string
	QdrantCollection string
	ChromemDir       string

	// Planner
	PlannerProvider  string
	PlannerModel     string
	PlannerMaxTokens int
	AnthropicAPIKey  string
	OpenAIAPIKey     string
	UpstreamTimeout  time.Duration

	// Ingestion
	IngestTimeout time.Duration
	IngestToIndex bool
	NATSURL       string
	NATSSubject   string
}

var defaults = map[string]any{
	"port":                     4000,
	"log_level":                "info",
	"api_key":                  "",
	"db_path":                  "./data/agent.db",
	"render_external_hostname": "",
	"ollama_base_url":          "http://localhost:11434",
	"embedding_model":          "nomic-embed-text",
	"embedding_dim":            768,
	"retrieval_backend":        BackendQdrant,
	"qdrant_url":               "http://localhost:6333",
	"qdrant_collection":        "agent_evidence",
	"chromem_dir":              "./data/vectors",
	"planner_provider":         ProviderOllama,
	"planner_model":            "qwen2.5:7b",
	"planner_max_tokens":       600,
	"anthropic_api_key":        "",
	"openai_api_key":           "",
	"upstream_timeout":         "30s",
	"ingest_timeout":           "30s",
	"ingest_to_index":          true,
	"nats_url":                 "",
	"nats_subject":             "agent.chat.turns",
}

// Load reads configuration from the environment, a .env file in the working
// directory, and the optional YAML file named by AGENT_CONFIG. Environment
// variables win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return LoadFrom(viper.New())
}

// LoadFrom resolves configuration through v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	if err := v.BindEnv("agent_config"); err != nil {
		return nil, fmt.Errorf("bind AGENT_CONFIG: %w", err)
	}
	if path := v.GetString("agent_config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Port:             v.GetInt("port"),
		LogLevel:         strings.ToLower(v.GetString("log_level")),
		APIKey:           v.GetString("api_key"),
		DBPath:           v.GetString("db_path"),
		ExternalHostname: v.GetString("render_external_hostname"),
		OllamaBaseURL:    v.GetString("ollama_base_url"),
		EmbeddingModel:   v.GetString("embedding_model"),
		EmbeddingDim:     v.GetInt("embedding_dim"),
		RetrievalBackend: strings.ToLower(v.GetString("retrieval_backend")),
		QdrantURL:        v.GetString("qdrant_url"),
		QdrantCollection: v.GetString("qdrant_collection"),
		ChromemDir:       v.GetString("chromem_dir"),
		PlannerProvider:  strings.ToLower(v.GetString("planner_provider")),
		PlannerModel:     v.GetString("planner_model"),
		PlannerMaxTokens: v.GetInt("planner_max_tokens"),
		AnthropicAPIKey:  v.GetString("anthropic_api_key"),
		OpenAIAPIKey:     v.GetString("openai_api_key"),
		UpstreamTimeout:  v.GetDuration("upstream_timeout"),
		IngestTimeout:    v.GetDuration("ingest_timeout"),
		IngestToIndex:    v.GetBool("ingest_to_index"),
		NATSURL:          v.GetString("nats_url"),
		NATSSubject:      v.GetString("nats_subject"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	if c.OllamaBaseURL == "" {
		return fmt.Errorf("OLLAMA_BASE_URL must not be empty")
	}
	if c.EmbeddingDim < 1 {
		return fmt.Errorf("EMBEDDING_DIM must be positive, got %d", c.EmbeddingDim)
	}

	switch c.RetrievalBackend {
	case BackendQdrant:
		if c.QdrantURL == "" {
			return fmt.Errorf("QDRANT_URL must not be empty for the qdrant backend")
		}
		if c.QdrantCollection == "" {
			return fmt.Errorf("QDRANT_COLLECTION must not be empty")
		}
	case BackendChromem:
	default:
		return fmt.Errorf("RETRIEVAL_BACKEND must be %q or %q, got %q", BackendQdrant, BackendChromem, c.RetrievalBackend)
	}

	switch c.PlannerProvider {
	case ProviderOllama:
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic planner")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai planner")
		}
	default:
		return fmt.Errorf("PLANNER_PROVIDER must be one of ollama, anthropic, openai, got %q", c.PlannerProvider)
	}
	if c.PlannerModel == "" {
		return fmt.Errorf("PLANNER_MODEL must not be empty")
	}
	if c.PlannerMaxTokens < 1 {
		return fmt.Errorf("PLANNER_MAX_TOKENS must be positive, got %d", c.PlannerMaxTokens)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", c.UpstreamTimeout)
	}
	if c.IngestTimeout <= 0 {
		return fmt.Errorf("INGEST_TIMEOUT must be positive, got %s", c.IngestTimeout)
	}
	return nil
}

// PublicURL is the address printed at startup.
func (c *Config) PublicURL() string {
	if c.ExternalHostname != "" {
		return "https://" + c.ExternalHostname
	}
	return fmt.Sprintf("http://localhost:%d", c.Port)
}
