package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Provider names accepted in llm.provider.
const (
	ProviderVertexREST = "vertex_rest"
	ProviderVertexSDK  = "vertex_sdk"
	ProviderOllama     = "ollama"
)

// Config is built once at start-up and passed by value or pointer to every component.
// Only LoadConfig reads the environment.
type Config struct {
	Server     ServerConfig
	Logger     LoggerConfig
	Redis      RedisConfig
	LLM        LLMConfig
	Extraction ExtractionConfig
	Generation GenerationConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type LoggerConfig struct {
	Env   string
	Level string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type LLMConfig struct {
	Provider        string
	APIKey          string
	ProjectID       string
	Location        string
	Model           string
	Endpoint        string
	OllamaServerURL string

	Temperature             float64
	MaxOutputTokens         int
	MetadataTemperature     float64
	MetadataMaxOutputTokens int

	// Timeout bounds one generation call. Zero keeps the transport default.
	Timeout time.Duration
}

type ExtractionConfig struct {
	DocumentAIProjectID   string
	DocumentAILocation    string
	DocumentAIProcessorID string
	// DocumentAILayoutParser marks the processor as a Layout Parser, which also reads DOCX.
	DocumentAILayoutParser bool
}

type GenerationConfig struct {
	MaxAttempts            int
	RetryDelay             time.Duration
	MaxSourceChars         int
	MetadataMaxSourceChars int
	MinExtractedChars      int
	EnforceCardinality     bool
	DraftLockTTL           time.Duration
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8090,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Minute,
			BodyLimit:    25 * 1024 * 1024,
		},
		Logger: LoggerConfig{Env: "development", Level: "info"},
		LLM: LLMConfig{
			Provider:                ProviderVertexREST,
			Location:                "us-central1",
			Model:                   "gemini-2.0-flash",
			OllamaServerURL:         "http://localhost:11434",
			Temperature:             0.7,
			MaxOutputTokens:         65536,
			MetadataTemperature:     0.3,
			MetadataMaxOutputTokens: 2048,
		},
		Extraction: ExtractionConfig{DocumentAILocation: "us"},
		Generation: GenerationConfig{
			MaxAttempts:            3,
			RetryDelay:             time.Second,
			MaxSourceChars:         500000,
			MetadataMaxSourceChars: 50000,
			MinExtractedChars:      50,
			EnforceCardinality:     true,
			DraftLockTTL:           10 * time.Minute,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.body_limit", d.Server.BodyLimit)
	v.SetDefault("logger.env", d.Logger.Env)
	v.SetDefault("logger.level", d.Logger.Level)
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.project_id", "")
	v.SetDefault("llm.location", d.LLM.Location)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.endpoint", "")
	v.SetDefault("llm.ollama_server_url", d.LLM.OllamaServerURL)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.max_output_tokens", d.LLM.MaxOutputTokens)
	v.SetDefault("llm.metadata_temperature", d.LLM.MetadataTemperature)
	v.SetDefault("llm.metadata_max_output_tokens", d.LLM.MetadataMaxOutputTokens)
	v.SetDefault("llm.timeout", time.Duration(0))
	v.SetDefault("extraction.documentai_project_id", "")
	v.SetDefault("extraction.documentai_location", d.Extraction.DocumentAILocation)
	v.SetDefault("extraction.documentai_processor_id", "")
	v.SetDefault("extraction.documentai_layout_parser", false)
	v.SetDefault("generation.max_attempts", d.Generation.MaxAttempts)
	v.SetDefault("generation.retry_delay", d.Generation.RetryDelay)
	v.SetDefault("generation.max_source_chars", d.Generation.MaxSourceChars)
	v.SetDefault("generation.metadata_max_source_chars", d.Generation.MetadataMaxSourceChars)
	v.SetDefault("generation.min_extracted_chars", d.Generation.MinExtractedChars)
	v.SetDefault("generation.enforce_cardinality", d.Generation.EnforceCardinality)
	v.SetDefault("generation.draft_lock_ttl", d.Generation.DraftLockTTL)
}

// LoadConfig reads .env (if present), then configs/config.yaml (if present), then the
// environment. Keys map to env vars by upper-casing and replacing "." with "_"
// (llm.api_key -> LLM_API_KEY).
func LoadConfig(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./configs", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			BodyLimit:    v.GetInt("server.body_limit"),
		},
		Logger: LoggerConfig{
			Env:   v.GetString("logger.env"),
			Level: v.GetString("logger.level"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		LLM: LLMConfig{
			Provider:                v.GetString("llm.provider"),
			APIKey:                  v.GetString("llm.api_key"),
			ProjectID:               v.GetString("llm.project_id"),
			Location:                v.GetString("llm.location"),
			Model:                   v.GetString("llm.model"),
			Endpoint:                v.GetString("llm.endpoint"),
			OllamaServerURL:         v.GetString("llm.ollama_server_url"),
			Temperature:             v.GetFloat64("llm.temperature"),
			MaxOutputTokens:         v.GetInt("llm.max_output_tokens"),
			MetadataTemperature:     v.GetFloat64("llm.metadata_temperature"),
			MetadataMaxOutputTokens: v.GetInt("llm.metadata_max_output_tokens"),
			Timeout:                 v.GetDuration("llm.timeout"),
		},
		Extraction: ExtractionConfig{
			DocumentAIProjectID:    v.GetString("extraction.documentai_project_id"),
			DocumentAILocation:     v.GetString("extraction.documentai_location"),
			DocumentAIProcessorID:  v.GetString("extraction.documentai_processor_id"),
			DocumentAILayoutParser: v.GetBool("extraction.documentai_layout_parser"),
		},
		Generation: GenerationConfig{
			MaxAttempts:            v.GetInt("generation.max_attempts"),
			RetryDelay:             v.GetDuration("generation.retry_delay"),
			MaxSourceChars:         v.GetInt("generation.max_source_chars"),
			MetadataMaxSourceChars: v.GetInt("generation.metadata_max_source_chars"),
			MinExtractedChars:      v.GetInt("generation.min_extracted_chars"),
			EnforceCardinality:     v.GetBool("generation.enforce_cardinality"),
			DraftLockTTL:           v.GetDuration("generation.draft_lock_ttl"),
		},
	}

	// Well-known Google Cloud variable names win when the app-specific ones are unset.
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v.GetString("GOOGLE_CLOUD_API_KEY")
	}
	if cfg.LLM.ProjectID == "" {
		cfg.LLM.ProjectID = v.GetString("GOOGLE_CLOUD_PROJECT")
	}
	if cfg.Extraction.DocumentAIProjectID == "" {
		cfg.Extraction.DocumentAIProjectID = cfg.LLM.ProjectID
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with. A missing API key is not
// rejected here: it is reported per request as a CONFIG_ERROR.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderVertexREST, ProviderVertexSDK, ProviderOllama:
	default:
		return fmt.Errorf("unsupported llm.provider %q", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model must be set")
	}
	if c.Generation.MaxAttempts < 1 {
		return fmt.Errorf("generation.max_attempts must be at least 1")
	}
	if c.Generation.RetryDelay < 0 {
		return fmt.Errorf("generation.retry_delay must not be negative")
	}
	if c.Generation.MaxSourceChars < 1 || c.Generation.MetadataMaxSourceChars < 1 {
		return fmt.Errorf("generation source character budgets must be positive")
	}
	return nil
}
