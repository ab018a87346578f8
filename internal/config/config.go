// Package config loads winemesh settings from the environment, an optional
// .env file and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/hupe1980/winemesh/internal/database"
	"github.com/hupe1980/winemesh/logging"
	"github.com/hupe1980/winemesh/model/provider"
)

// ErrMissingAPIKey is returned when the selected provider has no key.
var ErrMissingAPIKey = errors.New("missing api key for llm provider")

// Keys read from the environment. Viper upper-cases them for lookup.
const (
	KeyProvider     = "llm_provider"
	KeyBaseURL      = "llm_base_url"
	KeyGroqKey      = "groq_api_key"
	KeyOpenAIKey    = "openai_api_key"
	KeyAnthropicKey = "anthropic_api_key"
	KeyGeminiKey    = "gemini_api_key"
	KeyTriageModel  = "triage_model"
	KeySummaryModel = "summary_model"
	KeySQLGenModel  = "sqlgen_model"
	KeyJWTSecret    = "jwt_secret"
	KeyDatabase     = "database"
	KeyDBUser       = "db_user"
	KeyDBPassword   = "db_password"
	KeyDBHost       = "db_host"
	KeyDBPort       = "db_port"
	KeyDBSSLMode    = "db_sslmode"
	KeyHTTPAddr     = "http_addr"
	KeyCORSOrigins  = "cors_origins"
	KeyLogLevel     = "log_level"
	KeyLogFormat    = "log_format"
	KeyLogFile      = "log_file"
	KeyChunkPolicy  = "chunk_policy"
	KeyChunkSize    = "chunk_size"
	KeyShutdown     = "shutdown_timeout"
)

// Config is the fully resolved application configuration.
type Config struct {
	Provider provider.Config

	TriageModel  string
	SummaryModel string
	SQLGenModel  string

	JWTSecret string
	Database  database.Config

	HTTPAddr        string
	CORSOrigins     []string
	ShutdownTimeout time.Duration

	Log logging.Config

	ChunkPolicy string
	ChunkSize   int
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyProvider, provider.Groq)
	v.SetDefault(KeyTriageModel, "llama-3.1-70b-versatile")
	v.SetDefault(KeySummaryModel, "llama-3.1-8b-instant")
	v.SetDefault(KeySQLGenModel, "mixtral-8x7b-32768")
	v.SetDefault(KeyDBSSLMode, "require")
	v.SetDefault(KeyHTTPAddr, ":8000")
	v.SetDefault(KeyCORSOrigins, "https://www.mywine.info,https://mywine.info")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, string(logging.FormatJSON))
	v.SetDefault(KeyChunkPolicy, "turn")
	v.SetDefault(KeyChunkSize, 80)
	v.SetDefault(KeyShutdown, "10s")
}

// Load reads .env files (missing files are ignored), then the environment,
// into v and resolves a Config. Flags bound to v take precedence.
func Load(v *viper.Viper, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	SetDefaults(v)
	v.AutomaticEnv()

	level, err := logging.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return nil, err
	}

	dbCfg := database.DefaultConfig()
	dbCfg.Name = v.GetString(KeyDatabase)
	dbCfg.User = v.GetString(KeyDBUser)
	dbCfg.Password = v.GetString(KeyDBPassword)
	dbCfg.Host = v.GetString(KeyDBHost)
	dbCfg.Port = v.GetString(KeyDBPort)
	dbCfg.SSLMode = v.GetString(KeyDBSSLMode)

	logCfg := logging.DefaultConfig()
	logCfg.Level = level
	logCfg.Format = logging.Format(strings.ToLower(v.GetString(KeyLogFormat)))
	logCfg.File = v.GetString(KeyLogFile)

	name := strings.ToLower(v.GetString(KeyProvider))
	cfg := &Config{
		Provider: provider.Config{
			Name:    name,
			APIKey:  apiKey(v, name),
			BaseURL: v.GetString(KeyBaseURL),
		},
		TriageModel:     v.GetString(KeyTriageModel),
		SummaryModel:    v.GetString(KeySummaryModel),
		SQLGenModel:     v.GetString(KeySQLGenModel),
		JWTSecret:       v.GetString(KeyJWTSecret),
		Database:        dbCfg,
		HTTPAddr:        v.GetString(KeyHTTPAddr),
		CORSOrigins:     splitList(v.GetString(KeyCORSOrigins)),
		ShutdownTimeout: v.GetDuration(KeyShutdown),
		Log:             logCfg,
		ChunkPolicy:     strings.ToLower(v.GetString(KeyChunkPolicy)),
		ChunkSize:       v.GetInt(KeyChunkSize),
	}
	return cfg, nil
}

func apiKey(v *viper.Viper, name string) string {
	switch name {
	case provider.OpenAI:
		return v.GetString(KeyOpenAIKey)
	case provider.Anthropic:
		return v.GetString(KeyAnthropicKey)
	case provider.Google:
		return v.GetString(KeyGeminiKey)
	default:
		return v.GetString(KeyGroqKey)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the settings required to serve requests.
func (c *Config) Validate() error {
	if c.Provider.Name != provider.Mock && c.Provider.APIKey == "" {
		return fmt.Errorf("%w %q", ErrMissingAPIKey, c.Provider.Name)
	}
	switch c.ChunkPolicy {
	case "turn", "fixed", "whole":
	default:
		return fmt.Errorf("unknown chunk policy %q (turn, fixed or whole)", c.ChunkPolicy)
	}
	switch c.Log.Format {
	case logging.FormatJSON, logging.FormatText, logging.FormatConsole:
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// DatabaseEnabled reports whether database settings are complete.
func (c *Config) DatabaseEnabled() bool { return len(c.Database.Missing()) == 0 }
