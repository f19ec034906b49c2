package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/core/preprocess"
	"github.com/joseph-ayodele/docextract/internal/llm"
	"github.com/joseph-ayodele/docextract/internal/llm/gemini"
	"github.com/joseph-ayodele/docextract/internal/llm/openai"
)

// NewExtractor builds the model client selected by cfg.LLM.Provider.
// The returned close func releases provider resources; it is never nil.
func NewExtractor(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (llm.Extractor, func() error, error) {
	switch cfg.Provider {
	case "openai":
		c := openai.NewClient(openai.Config{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		}, logger)
		return c, func() error { return nil }, nil
	case "gemini":
		c, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
			MaxTokens:   int32(cfg.MaxTokens),
		}, logger)
		if err != nil {
			return nil, nil, common.WrapError(err, "create gemini client")
		}
		return c, c.Close, nil
	default:
		return nil, nil, common.NewAppError(common.CodeConfig,
			fmt.Sprintf("unknown LLM provider %q", cfg.Provider), common.ErrInvalidInput)
	}
}

// Build wires the normalizer, rotator and model client into a Processor.
func Build(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*Processor, func() error, error) {
	extractor, closeFn, err := NewExtractor(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, nil, err
	}
	normalizer := preprocess.NewNormalizer(preprocess.Config{
		FetchTimeout: cfg.Source.FetchTimeout,
		MaxBytes:     cfg.Source.MaxBytes,
		MaxPixels:    cfg.Source.MaxPixels,
		PDFRenderer:  cfg.Source.PDFRenderer,
		DPI:          cfg.Source.PDFDPI,
		MaxPages:     cfg.Source.PDFMaxPages,
	}, logger)

	proc := NewProcessor(logger, normalizer, preprocess.Rotator{}, extractor, cfg.Extraction.MaxOrientationRetries)
	return proc, closeFn, nil
}
