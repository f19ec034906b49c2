package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/docextract/constants"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Source     SourceConfig
	LLM        LLMConfig
	Extraction ExtractionConfig
	LogLevel   slog.Level
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr          string
	GRPCAddr          string // empty disables the gRPC health endpoint
	MaxInFlight       int64
	ExtractTimeout    time.Duration
	ReadHeaderTimeout time.Duration
	MaxBodyBytes      int64
	RateLimitEvery    time.Duration // 0 disables per-client rate limiting
	RateLimitBurst    int
}

// SourceConfig controls how source documents are fetched and rasterised
type SourceConfig struct {
	FetchTimeout time.Duration
	MaxBytes     int64
	MaxPixels    int64  // largest accepted image source, width*height
	PDFRenderer  string // binary name or absolute path of pdftoppm
	PDFDPI       int
	PDFMaxPages  int // 0 = no limit
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Provider      string // "openai" | "gemini"
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	GeminiAPIKey  string
	GeminiModel   string
	Temperature   float32
	TopP          float32
	MaxTokens     int
	Timeout       time.Duration
}

// ExtractionConfig holds the orientation-correction policy
type ExtractionConfig struct {
	MaxOrientationRetries int
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is read first when present; real env vars win.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			HTTPAddr:          getEnv("HTTP_ADDR", ":8000"),
			GRPCAddr:          os.Getenv("GRPC_ADDR"),
			MaxInFlight:       getEnvAsInt64("SERVER_MAX_IN_FLIGHT", 8),
			ExtractTimeout:    getEnvAsDuration("EXTRACT_TIMEOUT", 3*time.Minute),
			ReadHeaderTimeout: getEnvAsDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
			MaxBodyBytes:      getEnvAsInt64("SERVER_MAX_BODY_BYTES", 64<<10),
			RateLimitEvery:    getEnvAsDuration("SERVER_RATE_LIMIT_EVERY", 0),
			RateLimitBurst:    getEnvAsInt("SERVER_RATE_LIMIT_BURST", 20),
		},
		Source: SourceConfig{
			FetchTimeout: getEnvAsDuration("SOURCE_FETCH_TIMEOUT", 60*time.Second),
			MaxBytes:     getEnvAsInt64("SOURCE_MAX_BYTES", 25<<20),
			MaxPixels:    getEnvAsInt64("SOURCE_MAX_PIXELS", 40_000_000),
			PDFRenderer:  getEnv("PDF_RENDERER", "pdftoppm"),
			PDFDPI:       getEnvAsInt("PDF_DPI", 200),
			PDFMaxPages:  getEnvAsInt("PDF_MAX_PAGES", 0),
		},
		LLM: LLMConfig{
			Provider:      strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4.1"),
			GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
			GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Temperature:   getEnvAsFloat32("LLM_TEMPERATURE", 0.0),
			TopP:          getEnvAsFloat32("LLM_TOP_P", 0.5),
			MaxTokens:     getEnvAsInt("LLM_MAX_TOKENS", 2048),
			Timeout:       getEnvAsDuration("LLM_TIMEOUT", 90*time.Second),
		},
		Extraction: ExtractionConfig{
			MaxOrientationRetries: getEnvAsInt("MAX_ORIENTATION_RETRIES", constants.MaxOrientationRetries),
		},
		LogLevel: getEnvAsLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	if value := os.Getenv(key); value != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(value)); err == nil {
			return lvl
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return NewAppError(CodeConfig, "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Server.MaxInFlight <= 0 {
		return NewAppError(CodeConfig, "SERVER_MAX_IN_FLIGHT must be positive", ErrInvalidInput)
	}
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.OpenAIAPIKey == "" {
			return NewAppError(CodeConfig, "OPENAI_API_KEY is required", ErrInvalidInput)
		}
	case "gemini":
		if c.LLM.GeminiAPIKey == "" {
			return NewAppError(CodeConfig, "GEMINI_API_KEY is required", ErrInvalidInput)
		}
	default:
		return NewAppError(CodeConfig, "LLM_PROVIDER must be one of: openai | gemini", ErrInvalidInput)
	}
	if c.Server.ExtractTimeout < 0 {
		return NewAppError(CodeConfig, "EXTRACT_TIMEOUT must not be negative", ErrInvalidInput)
	}
	if c.Server.RateLimitEvery > 0 && c.Server.RateLimitBurst <= 0 {
		return NewAppError(CodeConfig, "SERVER_RATE_LIMIT_BURST must be positive when rate limiting is on", ErrInvalidInput)
	}
	if c.Extraction.MaxOrientationRetries < 0 {
		return NewAppError(CodeConfig, "MAX_ORIENTATION_RETRIES must not be negative", ErrInvalidInput)
	}
	if c.Source.PDFDPI <= 0 {
		return NewAppError(CodeConfig, "PDF_DPI must be positive", ErrInvalidInput)
	}
	return nil
}
