package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/docextract/internal/common"
)

func compileSchema(name string, schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	url := name + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateJSONAgainstSchema validates "data" against the compiled form of s.
func ValidateJSONAgainstSchema(s Schema, data []byte) error {
	compiled := s.compiled
	if compiled == nil {
		c, err := compileSchema(s.Name, s.JSONSchema())
		if err != nil {
			return err
		}
		compiled = c
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := compiled.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// DecodeResult turns raw model JSON into a trusted ExtractionResult.
// Anything that does not conform (including an orientation outside 0/90/180/270)
// is an extraction failure; nothing is coerced into range.
func DecodeResult(s Schema, raw []byte) (ExtractionResult, []byte, error) {
	cleaned, err := SanitizeFields(raw)
	if err != nil {
		return ExtractionResult{}, raw, common.ExtractionFailure("model returned malformed JSON", err)
	}
	if err := ValidateJSONAgainstSchema(s, cleaned); err != nil {
		return ExtractionResult{}, cleaned, common.ExtractionFailure("model output does not conform to schema", err)
	}
	var out ExtractionResult
	if err := json.Unmarshal(cleaned, &out); err != nil {
		return ExtractionResult{}, cleaned, common.ExtractionFailure("unmarshal fields", err)
	}
	return out, cleaned, nil
}
