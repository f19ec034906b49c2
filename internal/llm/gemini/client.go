package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"

	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/llm"
)

// Extract implements llm.Extractor with one GenerateContent call per image.
func (c *Client) Extract(ctx context.Context, req llm.ExtractRequest) (llm.ExtractionResult, []byte, error) {
	log := common.LoggerFromContext(ctx, c.log)
	start := time.Now()

	log.Info("llm.extract.start",
		"provider", "gemini",
		"model", c.cfg.Model,
		"doc_type", req.DocType,
		"schema", req.Schema.Name,
		"image_bytes", len(req.Image),
	)

	m := c.cl.GenerativeModel(c.cfg.Model)
	m.SetTemperature(c.cfg.Temperature)
	m.SetTopP(c.cfg.TopP)
	m.SetMaxOutputTokens(c.cfg.MaxTokens)
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = ToGenaiSchema(req.Schema)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(req.Instructions)},
	}

	mimeType := req.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	resp, err := m.GenerateContent(ctx,
		genai.Text(llm.UserPrompt),
		genai.Blob{MIMEType: mimeType, Data: req.Image},
	)
	if err != nil {
		log.Error("llm.extract.http_error", "provider", "gemini", "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return llm.ExtractionResult{}, nil, common.ExtractionFailure("gemini request failed", err)
	}

	txt, err := responseText(resp)
	if err != nil {
		log.Warn("llm.extract.no_output", "provider", "gemini", "error", err)
		return llm.ExtractionResult{}, nil, common.ExtractionFailure("gemini returned no usable output", err)
	}

	out, cleaned, err := llm.DecodeResult(req.Schema, []byte(llm.StripCodeFences(txt)))
	if err != nil {
		log.Error("llm.extract.schema_validation_failed", "provider", "gemini", "error", err, "content", txt)
		return llm.ExtractionResult{}, cleaned, err
	}

	log.Info("llm.extract.ok",
		"provider", "gemini",
		"is_document", out.IsDocument,
		"orientation", out.Orientation,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, cleaned, nil
}

// responseText concatenates the text parts of the first candidate, rejecting
// blocked, truncated or empty answers.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("nil response")
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", errors.New("no candidates")
	}
	cand := resp.Candidates[0]
	switch cand.FinishReason {
	case genai.FinishReasonSafety, genai.FinishReasonRecitation:
		return "", fmt.Errorf("candidate refused: %s", cand.FinishReason)
	case genai.FinishReasonMaxTokens:
		return "", errors.New("output truncated")
	}
	if cand.Content == nil {
		return "", errors.New("empty candidate")
	}
	var b strings.Builder
	for _, p := range cand.Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", errors.New("empty text")
	}
	return b.String(), nil
}

// ToGenaiSchema converts a registry schema to Gemini's response schema.
// Gemini only supports string enums, so orientation is constrained by its
// description here and by local validation afterwards.
func ToGenaiSchema(s llm.Schema) *genai.Schema {
	props := make(map[string]*genai.Schema, len(s.Fields))
	for _, f := range s.Fields {
		props[f.Name] = &genai.Schema{
			Type:        genaiType(f.Type),
			Description: f.Description,
		}
	}
	return &genai.Schema{
		Type:        genai.TypeObject,
		Description: s.Description,
		Properties:  props,
		Required:    s.FieldNames(),
	}
}

func genaiType(t llm.FieldType) genai.Type {
	switch t {
	case llm.FieldBoolean:
		return genai.TypeBoolean
	case llm.FieldInteger:
		return genai.TypeInteger
	default:
		return genai.TypeString
	}
}

var _ llm.Extractor = (*Client)(nil)
