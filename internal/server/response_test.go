package server

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/entity"
	"github.com/joseph-ayodele/docextract/internal/llm"
)

func TestToResponse(t *testing.T) {
	id, name, sex := "1234567890123456", "BUDI", "M"
	full := &llm.ExtractionResult{IsDocument: true, Orientation: 0, IDNumber: &id, FullName: &name, Sex: &sex}

	t.Run("success", func(t *testing.T) {
		r := ToResponse(entity.Outcome{Status: constants.OutcomeSuccess, Result: full})
		if !r.IsDocument || r.Orientation == nil || *r.Orientation != 0 {
			t.Errorf("unexpected flags %+v", r)
		}
		if r.IDNumber == nil || *r.IDNumber != id || r.Message != nil {
			t.Errorf("unexpected fields %+v", r)
		}
		if r.IDNumber == &id {
			t.Error("response must not alias the outcome's strings")
		}
	})

	t.Run("partial", func(t *testing.T) {
		stuck := *full
		stuck.Orientation = 90
		r := ToResponse(entity.Outcome{Status: constants.OutcomePartial, Result: &stuck, Message: constants.MsgOrientationExhausted})
		if !r.IsDocument || *r.Orientation != 90 || r.FullName == nil {
			t.Errorf("partial should carry fields, got %+v", r)
		}
		if r.Message == nil || *r.Message != constants.MsgOrientationExhausted {
			t.Errorf("message = %v", r.Message)
		}
	})

	t.Run("negatives", func(t *testing.T) {
		for _, o := range []entity.Outcome{
			{Status: constants.OutcomeNotDocument, Message: constants.MsgDocumentNotFound},
			{Status: constants.OutcomeFailed, Message: "LLM extraction failed: x", Err: errors.New("x")},
			{Status: constants.OutcomeNotDocument, Message: "Unsupported document type: sim"},
		} {
			r := ToResponse(o)
			if r.IsDocument || r.Orientation != nil || r.FullName != nil || r.IDNumber != nil {
				t.Errorf("%s: fields should be empty, got %+v", o.Status, r)
			}
			if r.Message == nil || *r.Message != o.Message {
				t.Errorf("%s: message = %v", o.Status, r.Message)
			}
		}
	})

	t.Run("zero value", func(t *testing.T) {
		b, err := json.Marshal(ToResponse(entity.Outcome{}))
		if err != nil {
			t.Fatal(err)
		}
		want := `{"is_document":false,"orientation":null,"id_number":null,"fullname":null,"date_of_birth":null,"place_of_birth":null,"sex":null,"nationality":null,"message":null}`
		if string(b) != want {
			t.Errorf("json = %s", b)
		}
	})
}
