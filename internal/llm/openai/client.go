package openai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/llm"
)

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
			Refusal *string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Extract implements llm.Extractor with a single vision chat/completions call
// constrained by a strict json_schema response format.
func (c *Client) Extract(ctx context.Context, req llm.ExtractRequest) (llm.ExtractionResult, []byte, error) {
	log := common.LoggerFromContext(ctx, c.log)
	start := time.Now()

	log.Info("llm.extract.start",
		"provider", "openai",
		"model", c.cfg.Model,
		"doc_type", req.DocType,
		"schema", req.Schema.Name,
		"image_bytes", len(req.Image),
	)

	body := c.buildBody(req)
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, httpErr := llm.SendJSON(ctx, c.httpClient, endpoint, body, headers, log)
	if httpErr != nil {
		log.Error("llm.extract.http_error",
			"error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractionResult{}, raw, common.ExtractionFailure("openai request failed", httpErr)
	}

	var cc chatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		log.Error("llm.extract.decode_error", "error", err, "raw_bytes", len(raw))
		return llm.ExtractionResult{}, raw, common.ExtractionFailure("decode openai response", err)
	}
	if len(cc.Choices) == 0 {
		log.Error("llm.extract.no_choices", "raw", string(raw))
		return llm.ExtractionResult{}, raw, common.ExtractionFailure("no choices in openai response", nil)
	}
	choice := cc.Choices[0]
	if choice.Message.Refusal != nil && strings.TrimSpace(*choice.Message.Refusal) != "" {
		log.Warn("llm.extract.refused", "refusal", *choice.Message.Refusal)
		return llm.ExtractionResult{}, raw, common.ExtractionFailure("model refused", errors.New(*choice.Message.Refusal))
	}
	if choice.FinishReason == "length" {
		return llm.ExtractionResult{}, raw, common.ExtractionFailure("model output truncated", nil)
	}
	if choice.Message.Content == nil || strings.TrimSpace(*choice.Message.Content) == "" {
		return llm.ExtractionResult{}, raw, common.ExtractionFailure("empty model output", nil)
	}

	content := llm.StripCodeFences(*choice.Message.Content)
	out, cleaned, err := llm.DecodeResult(req.Schema, []byte(content))
	if err != nil {
		log.Error("llm.extract.schema_validation_failed",
			"error", err, "content", content,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractionResult{}, cleaned, err
	}

	log.Info("llm.extract.ok",
		"provider", "openai",
		"is_document", out.IsDocument,
		"orientation", out.Orientation,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, cleaned, nil
}

func (c *Client) buildBody(req llm.ExtractRequest) map[string]any {
	return map[string]any{
		"model":             c.cfg.Model,
		"temperature":       c.cfg.Temperature,
		"top_p":             c.cfg.TopP,
		"max_tokens":        c.cfg.MaxTokens,
		"frequency_penalty": 0,
		"presence_penalty":  0,
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   req.Schema.Name,
				"strict": true,
				"schema": req.Schema.JSONSchema(),
			},
		},
		"messages": []map[string]any{
			{"role": "system", "content": req.Instructions},
			{"role": "user", "content": []map[string]any{
				{"type": "text", "text": llm.UserPrompt},
				{"type": "image_url", "image_url": map[string]any{
					"url":    llm.DataURL(mimeOrPNG(req.MIMEType), req.Image),
					"detail": "high",
				}},
			}},
		},
	}
}

func mimeOrPNG(mt string) string {
	if mt == "" {
		return "image/png"
	}
	return mt
}

var _ llm.Extractor = (*Client)(nil)
