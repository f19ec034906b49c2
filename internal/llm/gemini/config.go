package gemini

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Config for the Gemini client.
type Config struct {
	APIKey      string
	Model       string // e.g. "gemini-2.5-flash"
	Temperature float32
	TopP        float32
	MaxTokens   int32
}

type Client struct {
	cfg Config
	cl  *genai.Client
	log *slog.Logger
}

// NewClient dials the Gemini API once; the client is safe for concurrent use.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.TopP <= 0 || cfg.TopP > 1 {
		cfg.TopP = 0.5
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if logger == nil {
		logger = slog.Default()
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, cl: cl, log: logger}, nil
}

func (c *Client) Close() error {
	return c.cl.Close()
}
