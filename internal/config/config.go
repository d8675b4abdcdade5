package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Database
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	// Auth
	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Resumable streams (empty disables resume)
	RedisURL string `mapstructure:"REDIS_URL"`

	// LLM (OpenAI-compatible, OpenRouter by default)
	LLMAPIKey         string `mapstructure:"LLM_API_KEY"`
	LLMBaseURL        string `mapstructure:"LLM_BASE_URL"`
	LLMChatModel      string `mapstructure:"LLM_CHAT_MODEL"`
	LLMReasoningModel string `mapstructure:"LLM_REASONING_MODEL"`
	LLMTitleModel     string `mapstructure:"LLM_TITLE_MODEL"`

	// Speech-to-text
	GroqAPIKey         string `mapstructure:"GROQ_API_KEY"`
	GroqBaseURL        string `mapstructure:"GROQ_BASE_URL"`
	TranscriptionModel string `mapstructure:"TRANSCRIPTION_MODEL"`

	// Web Push
	VAPIDPublicKey  string `mapstructure:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `mapstructure:"VAPID_PRIVATE_KEY"`
	VAPIDSubject    string `mapstructure:"VAPID_SUBJECT"`

	// Reminder delivery queue (empty delivers inline)
	RabbitURL         string `mapstructure:"RABBITMQ_URL"`
	RabbitQueue       string `mapstructure:"RABBITMQ_QUEUE"`
	WorkerConcurrency int    `mapstructure:"WORKER_CONCURRENCY"`
	CronSecret        string `mapstructure:"CRON_SECRET"`

	// Chat
	ChatMaxDurationSeconds int `mapstructure:"CHAT_MAX_DURATION"`
	ChatMaxSteps           int `mapstructure:"CHAT_MAX_STEPS"`
	SmoothStreamDelayMs    int `mapstructure:"SMOOTH_STREAM_DELAY_MS"`

	// Reminders
	ReminderIntervalSeconds int `mapstructure:"REMINDER_INTERVAL"`
}

var keys = []string{
	"PORT", "ENV",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
	"JWT_SECRET", "REDIS_URL",
	"LLM_API_KEY", "LLM_BASE_URL", "LLM_CHAT_MODEL", "LLM_REASONING_MODEL", "LLM_TITLE_MODEL",
	"GROQ_API_KEY", "GROQ_BASE_URL", "TRANSCRIPTION_MODEL",
	"VAPID_PUBLIC_KEY", "VAPID_PRIVATE_KEY", "VAPID_SUBJECT",
	"RABBITMQ_URL", "RABBITMQ_QUEUE", "WORKER_CONCURRENCY", "CRON_SECRET",
	"CHAT_MAX_DURATION", "CHAT_MAX_STEPS", "SMOOTH_STREAM_DELAY_MS",
	"REMINDER_INTERVAL",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8097")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "medassist_db")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("LLM_BASE_URL", "https://openrouter.ai/api/v1")
	v.SetDefault("LLM_CHAT_MODEL", "google/gemini-2.5-flash-preview")
	v.SetDefault("LLM_REASONING_MODEL", "google/gemini-2.5-flash-preview:thinking")
	v.SetDefault("LLM_TITLE_MODEL", "google/gemini-2.5-flash-preview")
	v.SetDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1")
	v.SetDefault("TRANSCRIPTION_MODEL", "distil-whisper-large-v3-en")
	v.SetDefault("VAPID_SUBJECT", "mailto:support@medassist.local")
	v.SetDefault("RABBITMQ_QUEUE", "medication_reminders")
	v.SetDefault("WORKER_CONCURRENCY", 2)
	v.SetDefault("CHAT_MAX_DURATION", 60)
	v.SetDefault("CHAT_MAX_STEPS", 5)
	v.SetDefault("SMOOTH_STREAM_DELAY_MS", 10)
	v.SetDefault("REMINDER_INTERVAL", 60)

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.ChatMaxSteps < 1 {
		return fmt.Errorf("CHAT_MAX_STEPS must be positive, got %d", c.ChatMaxSteps)
	}
	if c.WorkerConcurrency < 1 || c.WorkerConcurrency > 50 {
		return fmt.Errorf("WORKER_CONCURRENCY must be between 1 and 50, got %d", c.WorkerConcurrency)
	}
	return nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func (c *Config) ChatMaxDuration() time.Duration {
	return time.Duration(c.ChatMaxDurationSeconds) * time.Second
}

func (c *Config) SmoothStreamDelay() time.Duration {
	return time.Duration(c.SmoothStreamDelayMs) * time.Millisecond
}

func (c *Config) ReminderInterval() time.Duration {
	return time.Duration(c.ReminderIntervalSeconds) * time.Second
}

func (c *Config) ResumableStreams() bool { return c.RedisURL != "" }

func (c *Config) PushEnabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}
