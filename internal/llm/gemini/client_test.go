package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/llm"
)

func TestToGenaiSchema(t *testing.T) {
	s, _, err := llm.Lookup(constants.Ijazah)
	if err != nil {
		t.Fatal(err)
	}
	gs := ToGenaiSchema(s)

	if gs.Type != genai.TypeObject {
		t.Errorf("type = %v, want object", gs.Type)
	}
	if len(gs.Required) != len(s.Fields) {
		t.Errorf("required = %v, want all %d fields", gs.Required, len(s.Fields))
	}
	want := map[string]genai.Type{
		llm.FieldIsDocument:   genai.TypeBoolean,
		llm.FieldOrientation:  genai.TypeInteger,
		llm.FieldFullName:     genai.TypeString,
		llm.FieldDateOfBirth:  genai.TypeString,
		llm.FieldPlaceOfBirth: genai.TypeString,
	}
	if len(gs.Properties) != len(want) {
		t.Errorf("got %d properties, want %d", len(gs.Properties), len(want))
	}
	for name, typ := range want {
		p, ok := gs.Properties[name]
		if !ok {
			t.Errorf("missing property %s", name)
			continue
		}
		if p.Type != typ {
			t.Errorf("%s type = %v, want %v", name, p.Type, typ)
		}
	}
}

func TestResponseText(t *testing.T) {
	ok := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonStop,
			Content:      &genai.Content{Parts: []genai.Part{genai.Text(`{"is_document":`), genai.Text(`false}`)}},
		}},
	}
	got, err := responseText(ok)
	if err != nil {
		t.Fatalf("responseText failed: %v", err)
	}
	if got != `{"is_document":false}` {
		t.Errorf("text = %q", got)
	}

	failures := map[string]*genai.GenerateContentResponse{
		"nil":           nil,
		"no candidates": {},
		"blocked": {
			PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety},
			Candidates:     ok.Candidates,
		},
		"safety": {Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonSafety,
			Content:      &genai.Content{Parts: []genai.Part{genai.Text("{}")}},
		}}},
		"max tokens": {Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonMaxTokens,
			Content:      &genai.Content{Parts: []genai.Part{genai.Text(`{"is_doc`)}},
		}}},
		"empty": {Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonStop,
			Content:      &genai.Content{Parts: []genai.Part{genai.Text("   ")}},
		}}},
		"no content": {Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonStop}}},
	}
	for name, resp := range failures {
		t.Run(name, func(t *testing.T) {
			if _, err := responseText(resp); err == nil {
				t.Error("expected error")
			}
		})
	}
}
