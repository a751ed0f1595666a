package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port              int           `yaml:"port"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`     // must exceed the worst-case transcription poll
	MaxConcurrentRuns int           `yaml:"max_concurrent_runs"` // pipeline runs admitted at once
	MaxUploadBytes    int64         `yaml:"max_upload_bytes"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL           string `yaml:"url"`
	Password      string `yaml:"password"`
	DB            int    `yaml:"db"`
	RatePerMinute int    `yaml:"rate_per_minute"` // interview submissions per client per minute; 0 disables
}

type StoreConfig struct {
	Region       string `yaml:"region"`
	Bucket       string `yaml:"bucket"`
	Endpoint     string `yaml:"endpoint"`       // S3-compatible endpoint; derived from region when empty
	PublicHost   string `yaml:"public_host"`    // host used in returned object URLs
	AccessKeyEnv string `yaml:"access_key_env"` // env var holding the access key id
	SecretKeyEnv string `yaml:"secret_key_env"` // env var holding the secret key
}

type DashScopeConfig struct {
	APIKeyEnv     string        `yaml:"api_key_env"`
	BaseURL       string        `yaml:"base_url"`
	ChatBaseURL   string        `yaml:"chat_base_url"` // OpenAI-compatible endpoint
	ASRModel      string        `yaml:"asr_model"`
	ChatModel     string        `yaml:"chat_model"`
	TTSModel      string        `yaml:"tts_model"`
	Voice         string        `yaml:"voice"`
	LanguageHints []string      `yaml:"language_hints"`
	PollAttempts  int           `yaml:"poll_attempts"`
	PollInterval  time.Duration `yaml:"poll_interval"`
}

type StagingConfig struct {
	Dir               string        `yaml:"dir"`
	AllowedExtensions []string      `yaml:"allowed_extensions"`
	SweepInterval     time.Duration `yaml:"sweep_interval"` // janitor period; 0 disables
	MaxAge            time.Duration `yaml:"max_age"`        // orphaned file cutoff
}

type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key"` // 16/24/32 bytes; empty stores transcripts in plaintext
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Store     StoreConfig     `yaml:"store"`
	DashScope DashScopeConfig `yaml:"dashscope"`
	Staging   StagingConfig   `yaml:"staging"`
	Security  SecurityConfig  `yaml:"security"`
	Language  string          `yaml:"language"` // locale for user-facing strings

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Store.Bucket == "" {
		return nil, errors.New("store.bucket is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 90 * time.Second
	}
	if cfg.Server.MaxConcurrentRuns <= 0 {
		cfg.Server.MaxConcurrentRuns = 8
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		cfg.Server.MaxUploadBytes = 20 << 20
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Language == "" {
		cfg.Language = "zh"
	}
	if cfg.Store.Region == "" {
		cfg.Store.Region = "cn-shanghai"
	}
	if cfg.Store.Endpoint == "" {
		cfg.Store.Endpoint = fmt.Sprintf("https://oss-%s.aliyuncs.com", cfg.Store.Region)
	}
	if cfg.Store.PublicHost == "" {
		cfg.Store.PublicHost = fmt.Sprintf("oss-%s.aliyuncs.com", cfg.Store.Region)
	}
	if cfg.Store.AccessKeyEnv == "" {
		cfg.Store.AccessKeyEnv = "OSS_ACCESS_KEY_ID"
	}
	if cfg.Store.SecretKeyEnv == "" {
		cfg.Store.SecretKeyEnv = "OSS_ACCESS_KEY_SECRET"
	}
	if cfg.DashScope.APIKeyEnv == "" {
		cfg.DashScope.APIKeyEnv = "DASHSCOPE_API_KEY"
	}
	if cfg.DashScope.BaseURL == "" {
		cfg.DashScope.BaseURL = "https://dashscope.aliyuncs.com"
	}
	if cfg.DashScope.ChatBaseURL == "" {
		cfg.DashScope.ChatBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	}
	if cfg.DashScope.ASRModel == "" {
		cfg.DashScope.ASRModel = "paraformer-v2"
	}
	if cfg.DashScope.ChatModel == "" {
		cfg.DashScope.ChatModel = "qwen-plus"
	}
	if cfg.DashScope.TTSModel == "" {
		cfg.DashScope.TTSModel = "cosyvoice-v1"
	}
	if cfg.DashScope.Voice == "" {
		cfg.DashScope.Voice = "loongbella"
	}
	if len(cfg.DashScope.LanguageHints) == 0 {
		cfg.DashScope.LanguageHints = []string{"zh", "en"}
	}
	if cfg.DashScope.PollAttempts <= 0 {
		cfg.DashScope.PollAttempts = 30
	}
	if cfg.DashScope.PollInterval <= 0 {
		cfg.DashScope.PollInterval = time.Second
	}
	if cfg.Staging.Dir == "" {
		cfg.Staging.Dir = "data/voice"
	}
	if len(cfg.Staging.AllowedExtensions) == 0 {
		cfg.Staging.AllowedExtensions = []string{"wav", "mp3", "webm"}
	}
	if cfg.Staging.MaxAge <= 0 {
		cfg.Staging.MaxAge = time.Hour
	}
}
