// Package config loads service settings from defaults, an optional config
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "SMARTTRANSLATE"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Translate  TranslateConfig  `mapstructure:"translate"`
	Glossary   GlossaryConfig   `mapstructure:"glossary"`
	Store      StoreConfig      `mapstructure:"store"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Summarizer SummarizerConfig `mapstructure:"summarizer"`
	TTS        TTSConfig        `mapstructure:"tts"`
	Extract    ExtractConfig    `mapstructure:"extract"`
	Upload     UploadConfig     `mapstructure:"upload"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type TranslateConfig struct {
	Provider string        `mapstructure:"provider"`
	APIURL   string        `mapstructure:"api_url"`
	Timeout  time.Duration `mapstructure:"timeout"`

	// Google Cloud Translation
	Credentials string `mapstructure:"credentials"`
	ProjectID   string `mapstructure:"project_id"`

	MyMemoryEmail string `mapstructure:"mymemory_email"`
}

type GlossaryConfig struct {
	Cache       string `mapstructure:"cache"`
	RedisURL    string `mapstructure:"redis_url"`
	RedisTTL    int    `mapstructure:"redis_ttl"`
	// MemoryTTL expires in-process entries, in seconds; 0 keeps them.
	MemoryTTL   int    `mapstructure:"memory_ttl"`
	MaxTokens   int    `mapstructure:"max_tokens"`
	Concurrency int    `mapstructure:"concurrency"`
}

type StoreConfig struct {
	Backend    string `mapstructure:"backend"`
	SQLitePath string `mapstructure:"sqlite_path"`
	MongoURI   string `mapstructure:"mongo_uri"`
	MongoDB    string `mapstructure:"mongo_db"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type SummarizerConfig struct {
	Provider      string `mapstructure:"provider"`
	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIModel   string `mapstructure:"openai_model"`
	OpenAIBaseURL string `mapstructure:"openai_base_url"`
}

type TTSConfig struct {
	APIURL      string `mapstructure:"api_url"`
	DefaultLang string `mapstructure:"default_lang"`
}

type ExtractConfig struct {
	Python     string        `mapstructure:"python"`
	ScriptsDir string        `mapstructure:"scripts_dir"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")

	v.SetDefault("translate.provider", "gtx")
	v.SetDefault("translate.api_url", "https://translate.googleapis.com/translate_a/single")
	v.SetDefault("translate.timeout", 15*time.Second)

	v.SetDefault("glossary.cache", "memory")
	v.SetDefault("glossary.redis_url", "redis://localhost:6379/0")
	v.SetDefault("glossary.redis_ttl", 0)
	v.SetDefault("glossary.memory_ttl", 0)
	v.SetDefault("glossary.max_tokens", 300)
	v.SetDefault("glossary.concurrency", 8)

	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("store.sqlite_path", "./data/smarttranslate.db")
	v.SetDefault("store.mongo_uri", "mongodb://127.0.0.1:27017")
	v.SetDefault("store.mongo_db", "smart-translator")

	v.SetDefault("auth.jwt_secret", "dev-secret")
	v.SetDefault("auth.token_ttl", 7*24*time.Hour)

	v.SetDefault("summarizer.provider", "extractive")
	v.SetDefault("summarizer.openai_model", "gpt-4o-mini")

	v.SetDefault("tts.api_url", "https://translate.google.com/translate_tts")
	v.SetDefault("tts.default_lang", "ta")

	v.SetDefault("extract.python", "python")
	v.SetDefault("extract.scripts_dir", ".")
	v.SetDefault("extract.timeout", 2*time.Minute)

	v.SetDefault("upload.max_bytes", 20<<20)
}

// legacyEnv lists environment variable names understood by earlier
// deployments, checked after the prefixed name.
var legacyEnv = map[string]string{
	"translate.api_url":         "TRANSLATE_API_URL",
	"auth.jwt_secret":           "JWT_SECRET",
	"store.mongo_uri":           "MONGO_URI",
	"store.mongo_db":            "MONGO_DB",
	"summarizer.openai_api_key": "OPENAI_API_KEY",
}

// New returns a viper instance with defaults and environment bindings applied.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, legacy)
	}
	_ = v.BindEnv("port", "PORT")

	return v
}

// Load reads the config file (if any) into v and decodes the result. An
// empty path searches for smarttranslate.yaml in the working directory and
// tolerates its absence.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("smarttranslate")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// PORT is honoured for platforms that inject it, unless the address was
	// pinned explicitly through the prefixed variable.
	if port := v.GetString("port"); port != "" {
		if _, pinned := os.LookupEnv(envPrefix + "_SERVER_ADDR"); !pinned {
			cfg.Server.Addr = ":" + port
		}
	}

	return cfg, cfg.Validate()
}

// Validate rejects unusable combinations.
func (c *Config) Validate() error {
	switch c.Translate.Provider {
	case "gtx", "google", "mymemory":
	default:
		return fmt.Errorf("unknown translate.provider %q", c.Translate.Provider)
	}
	switch c.Store.Backend {
	case "sqlite", "mongo":
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}
	switch c.Glossary.Cache {
	case "memory", "redis", "sqlite":
	default:
		return fmt.Errorf("unknown glossary.cache %q", c.Glossary.Cache)
	}
	switch c.Summarizer.Provider {
	case "extractive":
	case "openai":
		if c.Summarizer.OpenAIAPIKey == "" {
			return fmt.Errorf("summarizer.openai_api_key is required for the openai summarizer")
		}
	default:
		return fmt.Errorf("unknown summarizer.provider %q", c.Summarizer.Provider)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty")
	}
	if c.Glossary.MaxTokens <= 0 {
		return fmt.Errorf("glossary.max_tokens must be positive")
	}
	if c.Glossary.MemoryTTL < 0 {
		return fmt.Errorf("glossary.memory_ttl must not be negative")
	}
	return nil
}
