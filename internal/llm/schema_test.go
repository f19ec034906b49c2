package llm

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/common"
)

func TestLookup_FieldSets(t *testing.T) {
	tests := []struct {
		kind constants.DocType
		want []string
	}{
		{constants.KTP, []string{"is_document", "orientation", "id_number", "fullname", "date_of_birth", "place_of_birth", "sex", "nationality"}},
		{constants.Passport, []string{"is_document", "orientation", "id_number", "fullname", "date_of_birth", "place_of_birth", "sex", "nationality"}},
		{constants.Ijazah, []string{"is_document", "orientation", "fullname", "date_of_birth", "place_of_birth"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			s, instructions, err := Lookup(tt.kind)
			if err != nil {
				t.Fatalf("Lookup(%s) failed: %v", tt.kind, err)
			}
			if got := s.FieldNames(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("fields = %v, want %v", got, tt.want)
			}
			if strings.TrimSpace(instructions) == "" {
				t.Error("expected non-empty instructions")
			}
		})
	}
}

func TestLookup_IjazahLacksIdentityFields(t *testing.T) {
	s, _, err := Lookup(constants.Ijazah)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{FieldIDNumber, FieldSex, FieldNationality} {
		if s.HasField(f) {
			t.Errorf("ijazah schema should not declare %s", f)
		}
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, _, err := Lookup(constants.DocType("drivers_license"))
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if !errors.Is(err, common.ErrUnsupportedDocumentKind) {
		t.Errorf("expected ErrUnsupportedDocumentKind, got %v", err)
	}
}

func TestSchema_JSONSchemaIsStrict(t *testing.T) {
	s, _, _ := Lookup(constants.KTP)
	js := s.JSONSchema()

	if js["additionalProperties"] != false {
		t.Errorf("additionalProperties = %v, want false", js["additionalProperties"])
	}
	required, ok := js["required"].([]string)
	if !ok || len(required) != len(s.Fields) {
		t.Fatalf("required = %v, want every field", js["required"])
	}
	props := js["properties"].(map[string]any)
	orientation := props[FieldOrientation].(map[string]any)
	if !reflect.DeepEqual(orientation["enum"], []int{0, 90, 180, 270}) {
		t.Errorf("orientation enum = %v", orientation["enum"])
	}
	if orientation["type"] != "integer" {
		t.Errorf("orientation type = %v", orientation["type"])
	}
}

func TestInstructions_KTPDescribesPhotoRule(t *testing.T) {
	_, instructions, _ := Lookup(constants.KTP)
	for _, want := range []string{"head photo on the right", "90 degrees", "YYYY-MM-DD", "WNI"} {
		if !strings.Contains(instructions, want) {
			t.Errorf("ktp instructions missing %q", want)
		}
	}
}
